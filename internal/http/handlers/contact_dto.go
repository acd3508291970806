package handlers

import (
	"github.com/google/uuid"

	"github.com/yungbote/contacts-backend/internal/domain/contacts"
)

// ContactDetailDTO is both the PUT body and the GET/DELETE response.
type ContactDetailDTO struct {
	ID          uuid.UUID    `json:"id" validate:"required"`
	FirstName   string       `json:"firstName" validate:"required,max=255"`
	LastName    string       `json:"lastName" validate:"required,max=255"`
	Email       *string      `json:"email" validate:"omitempty,max=255,email"`
	PhoneNumber *string      `json:"phoneNumber" validate:"omitempty,max=20"`
	Addresses   []AddressDTO `json:"addresses" validate:"required,dive"`
}

type AddressDTO struct {
	ID      uuid.UUID `json:"id" validate:"required"`
	Street  string    `json:"street" validate:"required,max=255"`
	ZipCode string    `json:"zipCode" validate:"required,max=20"`
	City    string    `json:"city" validate:"required,max=255"`
}

type pagingQuery struct {
	Skip int `form:"skip" validate:"gte=0"`
	Take int `form:"take" validate:"gte=1,lte=100"`
}

func (d ContactDetailDTO) toDomain() contacts.Contact {
	c := contacts.Contact{
		ID:          d.ID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		PhoneNumber: d.PhoneNumber,
		Addresses:   make([]contacts.Address, len(d.Addresses)),
	}
	for i, a := range d.Addresses {
		c.Addresses[i] = contacts.Address{
			ID:        a.ID,
			ContactID: d.ID,
			Street:    a.Street,
			ZipCode:   a.ZipCode,
			City:      a.City,
		}
	}
	return c
}

func contactDetailFromDomain(c *contacts.Contact) ContactDetailDTO {
	out := ContactDetailDTO{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Addresses:   make([]AddressDTO, len(c.Addresses)),
	}
	for i, a := range c.Addresses {
		out.Addresses[i] = AddressDTO{ID: a.ID, Street: a.Street, ZipCode: a.ZipCode, City: a.City}
	}
	return out
}
