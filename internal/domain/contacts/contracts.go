package contacts

import (
	"context"

	"github.com/google/uuid"
)

// ReadSession is a per-request, read-only view of contact storage.
// Release must always be called; it is safe to call more than once.
type ReadSession interface {
	GetContact(ctx context.Context, id uuid.UUID) (*Contact, error)
	ListContacts(ctx context.Context, skip, take int) ([]ContactSummary, error)
	Release(ctx context.Context) error
}

// WriteSession is a per-request unit of work over one transaction. Writes are
// queued and only reach storage, atomically, on Persist. Releasing without
// Persist discards them.
type WriteSession interface {
	AddressWriter

	GetContact(ctx context.Context, id uuid.UUID) (*Contact, error)
	// GetContactAddresses returns the stored addresses whose id is in addressIDs
	// or whose contact is contactID, in storage order.
	GetContactAddresses(ctx context.Context, addressIDs []uuid.UUID, contactID uuid.UUID) (*AddressSet, error)
	UpsertContact(ctx context.Context, c Contact) error
	// DeleteContact removes the contact and its addresses inside the session's transaction.
	DeleteContact(ctx context.Context, id uuid.UUID) error

	Persist(ctx context.Context) error
	Release(ctx context.Context) error
}

// SessionFactory opens a fresh session per logical operation.
type SessionFactory interface {
	OpenRead() ReadSession
	OpenWrite() WriteSession
}
