package contacts

import "github.com/google/uuid"

// AddressSet is an id-keyed set of stored addresses that remembers insertion order,
// so leftovers are always visited deterministically.
type AddressSet struct {
	byID  map[uuid.UUID]Address
	order []uuid.UUID
}

func NewAddressSet(addresses ...Address) *AddressSet {
	s := &AddressSet{byID: make(map[uuid.UUID]Address, len(addresses))}
	for _, a := range addresses {
		s.Add(a)
	}
	return s
}

// Add inserts a; re-adding a known id replaces the value but keeps its position.
func (s *AddressSet) Add(a Address) {
	if s.byID == nil {
		s.byID = map[uuid.UUID]Address{}
	}
	if _, ok := s.byID[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.byID[a.ID] = a
}

func (s *AddressSet) Get(id uuid.UUID) (Address, bool) {
	if s == nil {
		return Address{}, false
	}
	a, ok := s.byID[id]
	return a, ok
}

// Remove deletes id and returns the removed address. The order slice is compacted lazily.
func (s *AddressSet) Remove(id uuid.UUID) (Address, bool) {
	if s == nil {
		return Address{}, false
	}
	a, ok := s.byID[id]
	if ok {
		delete(s.byID, id)
	}
	return a, ok
}

func (s *AddressSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byID)
}

// Remaining returns the addresses still present, in insertion order.
func (s *AddressSet) Remaining() []Address {
	if s == nil {
		return nil
	}
	out := make([]Address, 0, len(s.byID))
	seen := make(map[uuid.UUID]struct{}, len(s.byID))
	for _, id := range s.order {
		if _, dup := seen[id]; dup {
			continue
		}
		if a, ok := s.byID[id]; ok {
			seen[id] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
