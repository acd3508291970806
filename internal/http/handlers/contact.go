package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/contacts-backend/internal/http/response"
	"github.com/yungbote/contacts-backend/internal/platform/apierr"
	"github.com/yungbote/contacts-backend/internal/services"
)

const (
	defaultSkip = 0
	defaultTake = 20
)

type ContactHandler struct {
	contacts services.ContactService
}

func NewContactHandler(contacts services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// GET /api/contacts?skip=&take=
func (h *ContactHandler) ListContacts(c *gin.Context) {
	q := pagingQuery{Skip: defaultSkip, Take: defaultTake}
	errs := map[string][]string{}
	q.Skip = queryInt(c, "skip", q.Skip, errs)
	q.Take = queryInt(c, "take", q.Take, errs)
	if len(errs) == 0 {
		errs = validateStruct(q)
	}
	if len(errs) > 0 {
		response.RespondValidation(c, errs)
		return
	}

	list, err := h.contacts.ListContacts(c.Request.Context(), q.Skip, q.Take)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, list)
}

// GET /api/contacts/:id
func (h *ContactHandler) GetContact(c *gin.Context) {
	id, ok := contactIDParam(c)
	if !ok {
		return
	}
	contact, err := h.contacts.GetContact(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if contact == nil {
		response.RespondErr(c, apierr.ContactNotFound(id))
		return
	}
	response.RespondOK(c, contactDetailFromDomain(contact))
}

// PUT /api/contacts
func (h *ContactHandler) UpsertContact(c *gin.Context) {
	var dto ContactDetailDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.RespondErr(c, apierr.InvalidBody(err))
		return
	}
	if errs := validateStruct(dto); len(errs) > 0 {
		response.RespondValidation(c, errs)
		return
	}

	fieldErrs, err := h.contacts.UpsertContact(c.Request.Context(), dto.toDomain())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if !fieldErrs.Empty() {
		response.RespondValidation(c, fieldErrs)
		return
	}
	response.RespondNoContent(c)
}

// DELETE /api/contacts/:id
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	id, ok := contactIDParam(c)
	if !ok {
		return
	}
	deleted, err := h.contacts.DeleteContact(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if deleted == nil {
		response.RespondErr(c, apierr.ContactNotFound(id))
		return
	}
	response.RespondOK(c, contactDetailFromDomain(deleted))
}

func contactIDParam(c *gin.Context) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondValidation(c, map[string][]string{"id": {"'id' is not a valid GUID."}})
		return uuid.Nil, false
	}
	if id == uuid.Nil {
		response.RespondValidation(c, map[string][]string{"id": {"'id' must not be empty."}})
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter, recording a field error
// when it is present but not a whole number.
func queryInt(c *gin.Context, name string, def int, errs map[string][]string) int {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			errs[name] = append(errs[name], fmt.Sprintf("'%s' is out of range.", name))
		} else {
			errs[name] = append(errs[name], fmt.Sprintf("'%s' must be a whole number.", name))
		}
		return def
	}
	return v
}
