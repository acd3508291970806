package contacts

import "github.com/google/uuid"

// Contact is the aggregate root. Addresses are owned by the contact and keep
// the order in which they were supplied or read.
type Contact struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       *string   `json:"email"`
	PhoneNumber *string   `json:"phoneNumber"`
	Addresses   []Address `json:"addresses"`
}

// Address is a child of exactly one Contact; ContactID must equal the owner's ID.
type Address struct {
	ID        uuid.UUID `json:"id"`
	ContactID uuid.UUID `json:"contactId"`
	Street    string    `json:"street"`
	ZipCode   string    `json:"zipCode"`
	City      string    `json:"city"`
}

// ContactSummary is the list projection of a contact, without addresses.
type ContactSummary struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       *string   `json:"email"`
	PhoneNumber *string   `json:"phoneNumber"`
}

// AddressIDs returns the ids of c's addresses in order.
func (c Contact) AddressIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Addresses))
	for i, a := range c.Addresses {
		ids[i] = a.ID
	}
	return ids
}

// CheckOwnership reports the first address whose ContactID does not match c.ID.
func (c Contact) CheckOwnership() error {
	for i, a := range c.Addresses {
		if a.ContactID != c.ID {
			return &OwnershipError{Index: i, AddressID: a.ID, ContactID: a.ContactID, OwnerID: c.ID}
		}
	}
	return nil
}
