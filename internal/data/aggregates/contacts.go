package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yungbote/contacts-backend/internal/data/session"
	"github.com/yungbote/contacts-backend/internal/data/sqlres"
	"github.com/yungbote/contacts-backend/internal/domain/contacts"
)

var (
	getContactSQL          = sqlres.MustGet(sqlres.GetContact)
	getContactsSQL         = sqlres.MustGet(sqlres.GetContacts)
	getContactAddressesSQL = sqlres.MustGet(sqlres.GetContactAddresses)
	upsertContactSQL       = sqlres.MustGet(sqlres.UpsertContact)
	upsertAddressSQL       = sqlres.MustGet(sqlres.UpsertAddress)
	deleteAddressSQL       = sqlres.MustGet(sqlres.DeleteAddress)
	deleteAddressesSQL     = sqlres.MustGet(sqlres.DeleteAddresses)
	deleteContactSQL       = sqlres.MustGet(sqlres.DeleteContact)
)

// ContactSessions opens contact sessions; it satisfies contacts.SessionFactory.
type ContactSessions struct {
	deps BaseDeps
}

var _ contacts.SessionFactory = (*ContactSessions)(nil)

func NewContactSessions(deps BaseDeps) *ContactSessions {
	return &ContactSessions{deps: deps.withDefaults()}
}

func (f *ContactSessions) OpenRead() contacts.ReadSession {
	return &ContactReader{s: f.deps.Sessions.Read(), hooks: f.deps.Hooks}
}

func (f *ContactSessions) OpenWrite() contacts.WriteSession {
	return &ContactWriter{s: f.deps.Sessions.Write(), hooks: f.deps.Hooks}
}

// ContactReader answers contact queries on a session without a transaction.
type ContactReader struct {
	s     session.ReadSession
	hooks Hooks
}

var _ contacts.ReadSession = (*ContactReader)(nil)

func (r *ContactReader) GetContact(ctx context.Context, id uuid.UUID) (*contacts.Contact, error) {
	start := time.Now()
	c, err := queryContact(ctx, r.s, id)
	if err = observe(r.hooks, "contacts.get", start, err); err != nil {
		return nil, err
	}
	return c, nil
}

// ListContacts returns one page of contacts ordered by name.
func (r *ContactReader) ListContacts(ctx context.Context, skip, take int) ([]contacts.ContactSummary, error) {
	start := time.Now()
	list, err := queryContacts(ctx, r.s, skip, take)
	if err = observe(r.hooks, "contacts.list", start, err); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ContactReader) Release(ctx context.Context) error {
	return MapError("contacts.release", r.s.Release(ctx))
}

// ContactWriter is the unit of work for one contact aggregate write.
type ContactWriter struct {
	s     session.WriteSession
	hooks Hooks
}

var _ contacts.WriteSession = (*ContactWriter)(nil)

func (w *ContactWriter) GetContact(ctx context.Context, id uuid.UUID) (*contacts.Contact, error) {
	start := time.Now()
	c, err := queryContact(ctx, w.s, id)
	if err = observe(w.hooks, "contacts.get_for_write", start, err); err != nil {
		return nil, err
	}
	return c, nil
}

func (w *ContactWriter) GetContactAddresses(ctx context.Context, addressIDs []uuid.UUID, contactID uuid.UUID) (*contacts.AddressSet, error) {
	start := time.Now()
	set, err := queryAddresses(ctx, w.s, addressIDs, contactID)
	if err = observe(w.hooks, "contacts.get_addresses", start, err); err != nil {
		return nil, err
	}
	return set, nil
}

func (w *ContactWriter) UpsertContact(ctx context.Context, c contacts.Contact) error {
	return w.enqueue(ctx, "contacts.upsert_contact", upsertContactSQL, c.ID, c.FirstName, c.LastName, c.Email, c.PhoneNumber)
}

func (w *ContactWriter) UpsertAddress(ctx context.Context, a contacts.Address) error {
	return w.enqueue(ctx, "contacts.upsert_address", upsertAddressSQL, a.ID, a.ContactID, a.Street, a.ZipCode, a.City)
}

func (w *ContactWriter) RemoveAddress(ctx context.Context, addressID uuid.UUID) error {
	return w.enqueue(ctx, "contacts.remove_address", deleteAddressSQL, addressID)
}

// DeleteContact sends its own batch immediately: the contact's addresses, then
// the contact. The deletes stay uncommitted until Persist.
func (w *ContactWriter) DeleteContact(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := func() error {
		b, err := w.s.NewBatch(ctx)
		if err != nil {
			return err
		}
		b.Enqueue(deleteAddressesSQL, id)
		b.Enqueue(deleteContactSQL, id)
		_, err = b.ExecuteAll(ctx)
		return err
	}()
	return observe(w.hooks, "contacts.delete", start, err)
}

// Persist sends the queued writes and commits them in one transaction.
func (w *ContactWriter) Persist(ctx context.Context) error {
	start := time.Now()
	return observe(w.hooks, "contacts.persist", start, w.s.Persist(ctx))
}

func (w *ContactWriter) Release(ctx context.Context) error {
	return MapError("contacts.release", w.s.Release(ctx))
}

func (w *ContactWriter) enqueue(ctx context.Context, op, sql string, args ...any) error {
	b, err := w.s.Batch(ctx)
	if err != nil {
		return MapError(op, err)
	}
	b.Enqueue(sql, args...)
	return nil
}

func queryContact(ctx context.Context, s session.ReadSession, id uuid.UUID) (*contacts.Contact, error) {
	cmd, err := s.Command(ctx, getContactSQL)
	if err != nil {
		return nil, err
	}
	rows, err := cmd.Query(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[contacts.ContactRow])
	if err != nil {
		return nil, err
	}
	return contacts.AssembleContact(records), nil
}

func queryContacts(ctx context.Context, s session.ReadSession, skip, take int) ([]contacts.ContactSummary, error) {
	cmd, err := s.Command(ctx, getContactsSQL)
	if err != nil {
		return nil, err
	}
	rows, err := cmd.Query(ctx, skip, take)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[contacts.ContactSummary])
}

func queryAddresses(ctx context.Context, s session.ReadSession, addressIDs []uuid.UUID, contactID uuid.UUID) (*contacts.AddressSet, error) {
	if addressIDs == nil {
		addressIDs = []uuid.UUID{}
	}
	cmd, err := s.Command(ctx, getContactAddressesSQL)
	if err != nil {
		return nil, err
	}
	rows, err := cmd.Query(ctx, addressIDs, contactID)
	if err != nil {
		return nil, err
	}
	addresses, err := pgx.CollectRows(rows, pgx.RowToStructByPos[contacts.Address])
	if err != nil {
		return nil, err
	}
	return contacts.NewAddressSet(addresses...), nil
}
