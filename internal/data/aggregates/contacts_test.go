package aggregates

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yungbote/contacts-backend/internal/data/session"
	domainagg "github.com/yungbote/contacts-backend/internal/domain/aggregates"
	"github.com/yungbote/contacts-backend/internal/domain/contacts"
)

func newSessions(db *fakeDB, hooks Hooks) *ContactSessions {
	return NewContactSessions(BaseDeps{
		Sessions: session.NewFactory(db, nil, session.FactoryConfig{}),
		Hooks:    hooks,
	})
}

func batchSQL(stmts []sentStatement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.SQL
	}
	return out
}

func TestWriterQueuesWritesUntilPersist(t *testing.T) {
	db := newFakeDB()
	hooks := &spyHooks{}
	w := newSessions(db, hooks).OpenWrite()
	ctx := context.Background()

	email := "ada@example.com"
	contactID := uuid.New()
	addrID := uuid.New()
	staleID := uuid.New()

	if err := w.UpsertContact(ctx, contacts.Contact{ID: contactID, FirstName: "Ada", LastName: "Lovelace", Email: &email}); err != nil {
		t.Fatalf("UpsertContact: %v", err)
	}
	if err := w.UpsertAddress(ctx, contacts.Address{ID: addrID, ContactID: contactID, Street: "1 Main", ZipCode: "1000", City: "Town"}); err != nil {
		t.Fatalf("UpsertAddress: %v", err)
	}
	if err := w.RemoveAddress(ctx, staleID); err != nil {
		t.Fatalf("RemoveAddress: %v", err)
	}
	if len(db.batches) != 0 {
		t.Fatalf("writes must not reach storage before Persist, sent %d batches", len(db.batches))
	}

	if err := w.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := w.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}

	if diff := cmp.Diff([]string{"acquire", "begin", "batch(3)", "commit", "release"}, db.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{upsertContactSQL, upsertAddressSQL, deleteAddressSQL}, batchSQL(db.batches[0])); diff != "" {
		t.Fatalf("batch (-want +got):\n%s", diff)
	}
	if got := db.batches[0][0].Args; len(got) != 5 || got[0] != contactID || got[3] != &email {
		t.Fatalf("contact args: %+v", got)
	}
	if got := db.batches[0][2].Args; len(got) != 1 || got[0] != staleID {
		t.Fatalf("remove args: %+v", got)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Name != "contacts.persist" || hooks.Operations[0].Status != "success" {
		t.Fatalf("hooks: %+v", hooks.Operations)
	}
}

func TestWriterAppliesReconciliationPlanInOrder(t *testing.T) {
	db := newFakeDB()
	w := newSessions(db, nil).OpenWrite()
	ctx := context.Background()

	contactID := uuid.New()
	kept := contacts.Address{ID: uuid.New(), ContactID: contactID, Street: "Old", ZipCode: "1", City: "A"}
	dropped := contacts.Address{ID: uuid.New(), ContactID: contactID, Street: "Gone", ZipCode: "2", City: "B"}
	added := contacts.Address{ID: uuid.New(), Street: "New", ZipCode: "3", City: "C"}
	kept.Street = "Renamed"

	plan, fieldErrs := contacts.PlanAddresses(contactID, []contacts.Address{kept, added}, contacts.NewAddressSet(
		contacts.Address{ID: kept.ID, ContactID: contactID, Street: "Old", ZipCode: "1", City: "A"},
		dropped,
	))
	if !fieldErrs.Empty() {
		t.Fatalf("unexpected field errors: %v", fieldErrs)
	}
	if err := plan.Apply(ctx, w); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := w.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	sent := db.batches[0]
	if diff := cmp.Diff([]string{upsertAddressSQL, upsertAddressSQL, deleteAddressSQL}, batchSQL(sent)); diff != "" {
		t.Fatalf("batch (-want +got):\n%s", diff)
	}
	if sent[0].Args[0] != kept.ID || sent[0].Args[2] != "Renamed" {
		t.Fatalf("update args: %+v", sent[0].Args)
	}
	if sent[1].Args[0] != added.ID || sent[1].Args[1] != contactID {
		t.Fatalf("insert must carry the owning contact id: %+v", sent[1].Args)
	}
	if sent[2].Args[0] != dropped.ID {
		t.Fatalf("delete args: %+v", sent[2].Args)
	}
}

func TestWriterDeleteContactSendsOwnBatch(t *testing.T) {
	db := newFakeDB()
	w := newSessions(db, nil).OpenWrite()
	ctx := context.Background()
	id := uuid.New()

	if err := w.DeleteContact(ctx, id); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}
	if len(db.batches) != 1 {
		t.Fatalf("delete must execute immediately, batches=%d", len(db.batches))
	}
	if diff := cmp.Diff([]string{deleteAddressesSQL, deleteContactSQL}, batchSQL(db.batches[0])); diff != "" {
		t.Fatalf("batch (-want +got):\n%s", diff)
	}
	for _, stmt := range db.batches[0] {
		if len(stmt.Args) != 1 || stmt.Args[0] != id {
			t.Fatalf("args: %+v", stmt.Args)
		}
	}
	if err := w.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if diff := cmp.Diff([]string{"acquire", "begin", "batch(2)", "commit"}, db.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestWriterPersistWithoutWritesIsUsageError(t *testing.T) {
	db := newFakeDB()
	hooks := &spyHooks{}
	w := newSessions(db, hooks).OpenWrite()

	err := w.Persist(context.Background())
	if !domainagg.IsCode(err, domainagg.CodeUsage) {
		t.Fatalf("want usage code, got %q (%v)", domainagg.CodeOf(err), err)
	}
	if len(db.events) != 0 {
		t.Fatalf("no storage I/O expected, got %v", db.events)
	}
	if hooks.Operations[0].Status != string(domainagg.CodeUsage) {
		t.Fatalf("hook status: %+v", hooks.Operations)
	}
}

func TestWriterReleaseWithoutPersistRollsBack(t *testing.T) {
	db := newFakeDB()
	w := newSessions(db, nil).OpenWrite()
	ctx := context.Background()

	if err := w.UpsertContact(ctx, contacts.Contact{ID: uuid.New(), FirstName: "A", LastName: "B"}); err != nil {
		t.Fatalf("UpsertContact: %v", err)
	}
	if err := w.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := w.Release(ctx); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if diff := cmp.Diff([]string{"acquire", "begin", "rollback", "release"}, db.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestWriterPersistMapsUniqueViolation(t *testing.T) {
	db := newFakeDB()
	db.failStmt = 1
	db.failErr = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	hooks := &spyHooks{}
	w := newSessions(db, hooks).OpenWrite()
	ctx := context.Background()

	contactID := uuid.New()
	_ = w.UpsertContact(ctx, contacts.Contact{ID: contactID, FirstName: "A", LastName: "B"})
	_ = w.UpsertAddress(ctx, contacts.Address{ID: uuid.New(), ContactID: contactID})

	err := w.Persist(ctx)
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("want conflict, got %q (%v)", domainagg.CodeOf(err), err)
	}
	if len(hooks.Conflicts) != 1 {
		t.Fatalf("conflict hook not raised: %+v", hooks)
	}
	if err := w.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if diff := cmp.Diff([]string{"acquire", "begin", "batch(2)", "rollback", "release"}, db.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestReaderCancelledContext(t *testing.T) {
	db := newFakeDB()
	hooks := &spyHooks{}
	r := newSessions(db, hooks).OpenRead()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.GetContact(ctx, uuid.New())
	if !domainagg.IsCode(err, domainagg.CodeCanceled) {
		t.Fatalf("want canceled, got %q (%v)", domainagg.CodeOf(err), err)
	}
	if err := r.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if len(db.events) != 0 {
		t.Fatalf("no connection should have been opened: %v", db.events)
	}
}
