package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/contacts-backend/internal/data/cache"
	domainagg "github.com/yungbote/contacts-backend/internal/domain/aggregates"
	"github.com/yungbote/contacts-backend/internal/domain/contacts"
)

// memStore is an in-memory contact store whose write sessions buffer their
// writes and apply them on Persist, mirroring a transactional session.
type memStore struct {
	mu        sync.Mutex
	contacts  map[uuid.UUID]contacts.Contact // addresses not populated
	addresses map[uuid.UUID]contacts.Address

	opened, released int
	persistErr       error
	readErr          error
	// afterRead runs once a GetContact has loaded its result, outside the lock.
	afterRead func()
}

func newMemStore() *memStore {
	return &memStore{
		contacts:  map[uuid.UUID]contacts.Contact{},
		addresses: map[uuid.UUID]contacts.Address{},
	}
}

func (m *memStore) OpenRead() contacts.ReadSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened++
	return &memSession{store: m}
}

func (m *memStore) OpenWrite() contacts.WriteSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened++
	return &memSession{store: m}
}

func (m *memStore) seed(c contacts.Contact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range c.Addresses {
		m.addresses[a.ID] = a
	}
	c.Addresses = nil
	m.contacts[c.ID] = c
}

func (m *memStore) load(id uuid.UUID) *contacts.Contact {
	c, ok := m.contacts[id]
	if !ok {
		return nil
	}
	c.Addresses = []contacts.Address{}
	for _, a := range m.sortedAddresses() {
		if a.ContactID == id {
			c.Addresses = append(c.Addresses, a)
		}
	}
	return &c
}

func (m *memStore) sortedAddresses() []contacts.Address {
	out := make([]contacts.Address, 0, len(m.addresses))
	for _, a := range m.addresses {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

type memSession struct {
	store    *memStore
	pending  []func()
	batches  int
	released bool
	done     bool
}

func (s *memSession) GetContact(ctx context.Context, id uuid.UUID) (*contacts.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeCanceled, "contacts.get", err)
	}
	s.store.mu.Lock()
	if s.store.readErr != nil {
		s.store.mu.Unlock()
		return nil, s.store.readErr
	}
	c := s.store.load(id)
	hook := s.store.afterRead
	s.store.mu.Unlock()
	if hook != nil {
		hook()
	}
	return c, nil
}

func (s *memSession) ListContacts(_ context.Context, skip, take int) ([]contacts.ContactSummary, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	all := make([]contacts.ContactSummary, 0, len(s.store.contacts))
	for _, c := range s.store.contacts {
		all = append(all, contacts.ContactSummary{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Email: c.Email, PhoneNumber: c.PhoneNumber})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastName < all[j].LastName })
	if skip >= len(all) {
		return nil, nil
	}
	end := skip + take
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

func (s *memSession) GetContactAddresses(_ context.Context, ids []uuid.UUID, contactID uuid.UUID) (*contacts.AddressSet, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	set := contacts.NewAddressSet()
	for _, a := range s.store.sortedAddresses() {
		if want[a.ID] || a.ContactID == contactID {
			set.Add(a)
		}
	}
	return set, nil
}

func (s *memSession) queue(fn func()) {
	s.batches = 1
	s.pending = append(s.pending, fn)
}

func (s *memSession) UpsertContact(_ context.Context, c contacts.Contact) error {
	c.Addresses = nil
	s.queue(func() { s.store.contacts[c.ID] = c })
	return nil
}

func (s *memSession) UpsertAddress(_ context.Context, a contacts.Address) error {
	s.queue(func() { s.store.addresses[a.ID] = a })
	return nil
}

func (s *memSession) RemoveAddress(_ context.Context, id uuid.UUID) error {
	s.queue(func() { delete(s.store.addresses, id) })
	return nil
}

func (s *memSession) DeleteContact(_ context.Context, id uuid.UUID) error {
	s.queue(func() {
		for aid, a := range s.store.addresses {
			if a.ContactID == id {
				delete(s.store.addresses, aid)
			}
		}
		delete(s.store.contacts, id)
	})
	return nil
}

func (s *memSession) Persist(context.Context) error {
	if s.done {
		return domainagg.NewError(domainagg.CodeUsage, "contacts.persist", "already persisted", nil)
	}
	if s.batches == 0 {
		return domainagg.NewError(domainagg.CodeUsage, "contacts.persist", "nothing to persist", nil)
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.store.persistErr != nil {
		return s.store.persistErr
	}
	for _, fn := range s.pending {
		fn()
	}
	s.done = true
	return nil
}

func (s *memSession) Release(context.Context) error {
	if s.released {
		return nil
	}
	s.released = true
	s.store.mu.Lock()
	s.store.released++
	s.store.mu.Unlock()
	return nil
}

// spyCache is a map-backed cache that records invalidations and versions
// entries the way the redis cache does.
type spyCache struct {
	entries     map[uuid.UUID]*contacts.Contact
	gens        map[uuid.UUID]int64
	hits        int
	invalidated []uuid.UUID
}

func newSpyCache() *spyCache {
	return &spyCache{entries: map[uuid.UUID]*contacts.Contact{}, gens: map[uuid.UUID]int64{}}
}

func (c *spyCache) Get(_ context.Context, id uuid.UUID) (cache.Lookup, error) {
	v, ok := c.entries[id]
	if ok {
		c.hits++
	}
	return cache.Lookup{Contact: v, Hit: ok, Version: c.gens[id]}, nil
}

func (c *spyCache) Set(_ context.Context, v *contacts.Contact, version int64) error {
	if c.gens[v.ID] != version {
		return nil
	}
	c.entries[v.ID] = v
	return nil
}

func (c *spyCache) Invalidate(_ context.Context, id uuid.UUID) error {
	delete(c.entries, id)
	c.gens[id]++
	c.invalidated = append(c.invalidated, id)
	return nil
}

func (c *spyCache) Close() error { return nil }
