package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/contacts-backend/internal/data/cache"
	domainagg "github.com/yungbote/contacts-backend/internal/domain/aggregates"
	"github.com/yungbote/contacts-backend/internal/domain/contacts"
	"github.com/yungbote/contacts-backend/internal/observability"
	"github.com/yungbote/contacts-backend/internal/platform/ctxutil"
	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

// ContactService is the use-case surface of the contact aggregate.
type ContactService interface {
	// GetContact returns nil when the contact does not exist.
	GetContact(ctx context.Context, id uuid.UUID) (*contacts.Contact, error)
	// UpsertContact creates or replaces the aggregate. Integrity problems come
	// back as FieldErrors with nothing persisted.
	UpsertContact(ctx context.Context, c contacts.Contact) (contacts.FieldErrors, error)
	// DeleteContact returns the deleted aggregate, or nil when it did not exist.
	DeleteContact(ctx context.Context, id uuid.UUID) (*contacts.Contact, error)
	ListContacts(ctx context.Context, skip, take int) ([]contacts.ContactSummary, error)
}

type contactService struct {
	log      *logger.Logger
	sessions contacts.SessionFactory
	cache    cache.ContactCache
	tracer   trace.Tracer
}

func NewContactService(log *logger.Logger, sessions contacts.SessionFactory, contactCache cache.ContactCache) ContactService {
	if contactCache == nil {
		contactCache = cache.Noop()
	}
	return &contactService{
		log:      log.With("service", "ContactService"),
		sessions: sessions,
		cache:    contactCache,
		tracer:   observability.Tracer(),
	}
}

func (s *contactService) GetContact(ctx context.Context, id uuid.UUID) (*contacts.Contact, error) {
	ctx, span := s.tracer.Start(ctx, "ContactService.GetContact", trace.WithAttributes(attribute.String("contact.id", id.String())))
	defer span.End()

	lookup, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger(ctx).Warn("contact cache read failed", "contact_id", id.String(), "error", err)
	} else if lookup.Hit {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return lookup.Contact, nil
	}

	rs := s.sessions.OpenRead()
	defer s.release(ctx, rs)

	c, err := rs.GetContact(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "get contact", err)
	}
	if c != nil {
		// Set skips the fill when a write invalidated the contact after the lookup.
		if err := s.cache.Set(ctx, c, lookup.Version); err != nil {
			s.logger(ctx).Warn("contact cache write failed", "contact_id", id.String(), "error", err)
		}
	}
	return c, nil
}

func (s *contactService) ListContacts(ctx context.Context, skip, take int) ([]contacts.ContactSummary, error) {
	ctx, span := s.tracer.Start(ctx, "ContactService.ListContacts", trace.WithAttributes(
		attribute.Int("page.skip", skip),
		attribute.Int("page.take", take),
	))
	defer span.End()

	rs := s.sessions.OpenRead()
	defer s.release(ctx, rs)

	list, err := rs.ListContacts(ctx, skip, take)
	if err != nil {
		return nil, s.fail(ctx, span, "list contacts", err)
	}
	if list == nil {
		list = []contacts.ContactSummary{}
	}
	return list, nil
}

func (s *contactService) UpsertContact(ctx context.Context, c contacts.Contact) (contacts.FieldErrors, error) {
	ctx, span := s.tracer.Start(ctx, "ContactService.UpsertContact", trace.WithAttributes(
		attribute.String("contact.id", c.ID.String()),
		attribute.Int("contact.addresses", len(c.Addresses)),
	))
	defer span.End()

	c = withOwner(c)
	if err := c.CheckOwnership(); err != nil {
		return nil, s.fail(ctx, span, "upsert contact", domainagg.NewError(domainagg.CodeValidation, "contacts.upsert", err.Error(), err))
	}

	ws := s.sessions.OpenWrite()
	defer s.release(ctx, ws)

	if err := ws.UpsertContact(ctx, c); err != nil {
		return nil, s.fail(ctx, span, "upsert contact", err)
	}
	existing, err := ws.GetContactAddresses(ctx, c.AddressIDs(), c.ID)
	if err != nil {
		return nil, s.fail(ctx, span, "upsert contact", err)
	}
	plan, fieldErrs := contacts.PlanAddresses(c.ID, c.Addresses, existing)
	if err := plan.Apply(ctx, ws); err != nil {
		return nil, s.fail(ctx, span, "upsert contact", err)
	}
	if !fieldErrs.Empty() {
		span.SetAttributes(attribute.Int("contact.field_errors", len(fieldErrs)))
		s.logger(ctx).Info("Contact upsert rejected", "contact_id", c.ID.String(), "fields", fieldErrs.Fields())
		return fieldErrs, nil
	}
	if err := ws.Persist(ctx); err != nil {
		return nil, s.fail(ctx, span, "upsert contact", err)
	}
	s.invalidate(ctx, c.ID)

	s.logger(ctx).Info("Contact upserted",
		"contact_id", c.ID.String(),
		"last_name", c.LastName,
		"addresses_inserted", plan.Count(contacts.OpInsert),
		"addresses_updated", plan.Count(contacts.OpUpdate),
		"addresses_deleted", plan.Count(contacts.OpDelete),
	)
	return nil, nil
}

func (s *contactService) DeleteContact(ctx context.Context, id uuid.UUID) (*contacts.Contact, error) {
	ctx, span := s.tracer.Start(ctx, "ContactService.DeleteContact", trace.WithAttributes(attribute.String("contact.id", id.String())))
	defer span.End()

	ws := s.sessions.OpenWrite()
	defer s.release(ctx, ws)

	c, err := ws.GetContact(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "delete contact", err)
	}
	if c == nil {
		return nil, nil
	}
	if err := ws.DeleteContact(ctx, id); err != nil {
		return nil, s.fail(ctx, span, "delete contact", err)
	}
	if err := ws.Persist(ctx); err != nil {
		return nil, s.fail(ctx, span, "delete contact", err)
	}
	s.invalidate(ctx, id)

	s.logger(ctx).Info("Contact deleted",
		"contact_id", id.String(),
		"last_name", c.LastName,
		"addresses_deleted", len(c.Addresses),
	)
	return c, nil
}

// withOwner fills in the parent id of addresses that were supplied without one.
func withOwner(c contacts.Contact) contacts.Contact {
	if len(c.Addresses) == 0 {
		return c
	}
	addrs := make([]contacts.Address, len(c.Addresses))
	copy(addrs, c.Addresses)
	for i := range addrs {
		if addrs[i].ContactID == uuid.Nil {
			addrs[i].ContactID = c.ID
		}
	}
	c.Addresses = addrs
	return c
}

type releaser interface {
	Release(ctx context.Context) error
}

func (s *contactService) release(ctx context.Context, r releaser) {
	if err := r.Release(ctx); err != nil {
		s.logger(ctx).Warn("session release failed", "error", err)
	}
}

func (s *contactService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), id); err != nil {
		s.logger(ctx).Warn("contact cache invalidation failed", "contact_id", id.String(), "error", err)
	}
}

// fail records err on the span and logs it at a level matching its cause.
// Cancellation is expected and only logged at debug.
func (s *contactService) fail(ctx context.Context, span trace.Span, action string, err error) error {
	log := s.logger(ctx)
	code := domainagg.CodeOf(err)
	switch {
	case code == domainagg.CodeCanceled || errors.Is(err, context.Canceled):
		log.Debug("contact operation canceled", "action", action)
		span.SetStatus(codes.Unset, "canceled")
		return err
	case code == domainagg.CodeUsage || code == domainagg.CodeInternal || code == "":
		log.Error("contact operation failed", "action", action, "error", err)
	default:
		log.Warn("contact operation failed", "action", action, "code", string(code), "error", err)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, string(code))
	return err
}

func (s *contactService) logger(ctx context.Context) *logger.Logger {
	if fields := ctxutil.LogFields(ctx); len(fields) > 0 {
		return s.log.With(fields...)
	}
	return s.log
}
