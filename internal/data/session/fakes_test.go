package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// journal records every storage interaction in order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakeConnector struct {
	j          *journal
	acquireErr error
	// gate, when set, blocks Acquire until closed; acquiring is closed on entry.
	gate      chan struct{}
	acquiring chan struct{}

	beginErr    error
	commitErr   error
	rollbackErr error
	// execErrAt fails the batch statement with that index (-1 disables).
	execErrAt int
	closeErr  error

	rollbackCtxErr error
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{j: &journal{}, execErrAt: -1}
}

func (f *fakeConnector) Acquire(ctx context.Context) (Conn, error) {
	if f.gate != nil {
		close(f.acquiring)
		<-f.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	f.j.add("acquire")
	return &fakeConn{f: f}, nil
}

type fakeConn struct {
	f *fakeConnector
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.f.j.add("conn.exec %s", sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (c *fakeConn) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	c.f.j.add("conn.query %s", sql)
	return nil, errors.New("not implemented")
}

func (c *fakeConn) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	c.f.j.add("conn.queryrow %s", sql)
	return nil
}

func (c *fakeConn) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	return c.f.sendBatch("conn", b)
}

func (c *fakeConn) BeginTx(_ context.Context, opts pgx.TxOptions) (Tx, error) {
	if c.f.beginErr != nil {
		return nil, c.f.beginErr
	}
	c.f.j.add("begin %s", opts.IsoLevel)
	return &fakeTx{f: c.f}, nil
}

func (c *fakeConn) Release() {
	c.f.j.add("release")
}

type fakeTx struct {
	f *fakeConnector
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.f.j.add("tx.exec %s", sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (t *fakeTx) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	t.f.j.add("tx.query %s", sql)
	return nil, errors.New("not implemented")
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	t.f.j.add("tx.queryrow %s", sql)
	return nil
}

func (t *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	return t.f.sendBatch("tx", b)
}

func (t *fakeTx) Commit(context.Context) error {
	if t.f.commitErr != nil {
		return t.f.commitErr
	}
	t.f.j.add("commit")
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.f.rollbackCtxErr = ctx.Err()
	t.f.j.add("rollback")
	return t.f.rollbackErr
}

func (f *fakeConnector) sendBatch(on string, b *pgx.Batch) pgx.BatchResults {
	sqls := make([]string, 0, b.Len())
	for _, qq := range b.QueuedQueries {
		sqls = append(sqls, qq.SQL)
	}
	f.j.add("%s.batch [%s]", on, strings.Join(sqls, "; "))
	return &fakeBatchResults{f: f, n: b.Len()}
}

type fakeBatchResults struct {
	f      *fakeConnector
	n, pos int
	closed bool
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	i := r.pos
	r.pos++
	if i == r.f.execErrAt {
		return pgconn.CommandTag{}, errors.New("duplicate key")
	}
	return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", i+1)), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }
func (r *fakeBatchResults) QueryRow() pgx.Row        { return nil }

func (r *fakeBatchResults) Close() error {
	r.closed = true
	r.f.j.add("batch.close")
	return r.f.closeErr
}
