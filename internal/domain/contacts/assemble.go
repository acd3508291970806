package contacts

import "github.com/google/uuid"

// ContactRow is one row of the contact/address left join. Address columns are
// nil when the contact has no addresses.
type ContactRow struct {
	ContactID   uuid.UUID
	FirstName   string
	LastName    string
	Email       *string
	PhoneNumber *string
	AddressID   uuid.NullUUID
	Street      *string
	ZipCode     *string
	City        *string
}

// AssembleContact folds the joined rows of a single contact into the aggregate.
// Rows must belong to one contact and be ordered by address; no rows means the
// contact does not exist and nil is returned.
func AssembleContact(rows []ContactRow) *Contact {
	if len(rows) == 0 {
		return nil
	}
	first := rows[0]
	c := &Contact{
		ID:          first.ContactID,
		FirstName:   first.FirstName,
		LastName:    first.LastName,
		Email:       first.Email,
		PhoneNumber: first.PhoneNumber,
		Addresses:   []Address{},
	}
	if !first.AddressID.Valid {
		return c
	}
	c.Addresses = make([]Address, len(rows))
	for i, r := range rows {
		c.Addresses[i] = Address{
			ID:        r.AddressID.UUID,
			ContactID: r.ContactID,
			Street:    deref(r.Street),
			ZipCode:   deref(r.ZipCode),
			City:      deref(r.City),
		}
	}
	return c
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
