package contacts

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

const (
	msgAddressIDTaken    = "There already is an address for another contact with the same ID"
	msgAddressIDRepeated = "The same address ID must not appear more than once"
)

// FieldErrors maps a field path such as "addresses[2].id" to its messages.
// A nil or empty FieldErrors means no problems were found.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) FieldErrors {
	if fe == nil {
		fe = FieldErrors{}
	}
	fe[field] = append(fe[field], msg)
	return fe
}

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// Fields returns the field paths in sorted order.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for k := range fe {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func addressField(index int, name string) string {
	return fmt.Sprintf("addresses[%d].%s", index, name)
}

// OwnershipError is a data-integrity violation: an address attached to a contact
// carries a different parent id.
type OwnershipError struct {
	Index     int
	AddressID uuid.UUID
	ContactID uuid.UUID
	OwnerID   uuid.UUID
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("address %s at index %d belongs to contact %s, not %s", e.AddressID, e.Index, e.ContactID, e.OwnerID)
}
