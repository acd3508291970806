package aggregates_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yungbote/contacts-backend/internal/data/aggregates"
	"github.com/yungbote/contacts-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/contacts-backend/internal/data/session"
	domainagg "github.com/yungbote/contacts-backend/internal/domain/aggregates"
	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

// unavailableDB fails every acquire with the given postgres error.
type unavailableDB struct{ err error }

func (u unavailableDB) Acquire(context.Context) (session.Conn, error) { return nil, u.err }

func newContactSessions(err error, hooks aggregates.Hooks) *aggregates.ContactSessions {
	factory := session.NewFactory(unavailableDB{err: err}, logger.Nop(), session.FactoryConfig{})
	return aggregates.NewContactSessions(aggregates.BaseDeps{Sessions: factory, Hooks: hooks})
}

func TestContactReaderReportsRetryableFailures(t *testing.T) {
	hooks := &testutil.HooksRecorder{}
	sessions := newContactSessions(&pgconn.PgError{Code: "40001", Message: "could not serialize access"}, hooks)

	rs := sessions.OpenRead()
	defer rs.Release(context.Background())

	_, err := rs.GetContact(context.Background(), uuid.New())
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("want retryable error, got %v", err)
	}
	want := []string{"retry contacts.get", "operation contacts.get=retryable"}
	if diff := cmp.Diff(want, hooks.Trail()); diff != "" {
		t.Fatalf("signals mismatch (-want +got):\n%s", diff)
	}
}

func TestContactWriterReportsInternalFailures(t *testing.T) {
	hooks := &testutil.HooksRecorder{}
	sessions := newContactSessions(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), hooks)

	ws := sessions.OpenWrite()
	defer ws.Release(context.Background())

	_, err := ws.GetContactAddresses(context.Background(), []uuid.UUID{uuid.New()}, uuid.New())
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("want internal error, got %v", err)
	}
	want := []string{"operation contacts.get_addresses=internal"}
	if diff := cmp.Diff(want, hooks.Trail()); diff != "" {
		t.Fatalf("signals mismatch (-want +got):\n%s", diff)
	}
}
