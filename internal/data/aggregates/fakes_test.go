package aggregates

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yungbote/contacts-backend/internal/data/session"
)

type sentStatement struct {
	SQL  string
	Args []any
}

// fakeDB is a session.Connector that records batches and transaction calls.
type fakeDB struct {
	events  []string
	batches [][]sentStatement
	// failStmt fails the statement at that index of every batch (-1 disables).
	failStmt int
	failErr  error
}

func newFakeDB() *fakeDB { return &fakeDB{failStmt: -1} }

func (f *fakeDB) Acquire(ctx context.Context) (session.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.events = append(f.events, "acquire")
	return &fakeDBConn{db: f}, nil
}

type fakeDBConn struct{ db *fakeDB }

func (c *fakeDBConn) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected exec")
}

func (c *fakeDBConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (c *fakeDBConn) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (c *fakeDBConn) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	return c.db.send(b)
}

func (c *fakeDBConn) BeginTx(context.Context, pgx.TxOptions) (session.Tx, error) {
	c.db.events = append(c.db.events, "begin")
	return &fakeDBTx{fakeDBConn: c}, nil
}

func (c *fakeDBConn) Release() {
	c.db.events = append(c.db.events, "release")
}

type fakeDBTx struct{ *fakeDBConn }

func (t *fakeDBTx) Commit(context.Context) error {
	t.db.events = append(t.db.events, "commit")
	return nil
}

func (t *fakeDBTx) Rollback(context.Context) error {
	t.db.events = append(t.db.events, "rollback")
	return nil
}

func (f *fakeDB) send(b *pgx.Batch) pgx.BatchResults {
	sent := make([]sentStatement, 0, b.Len())
	for _, qq := range b.QueuedQueries {
		sent = append(sent, sentStatement{SQL: qq.SQL, Args: qq.Arguments})
	}
	f.batches = append(f.batches, sent)
	f.events = append(f.events, fmt.Sprintf("batch(%d)", len(sent)))
	return &fakeDBResults{db: f}
}

type fakeDBResults struct {
	db  *fakeDB
	pos int
}

func (r *fakeDBResults) Exec() (pgconn.CommandTag, error) {
	i := r.pos
	r.pos++
	if i == r.db.failStmt {
		return pgconn.CommandTag{}, r.db.failErr
	}
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func (r *fakeDBResults) Query() (pgx.Rows, error) { return nil, errors.New("unexpected query") }
func (r *fakeDBResults) QueryRow() pgx.Row        { return nil }
func (r *fakeDBResults) Close() error             { return nil }
