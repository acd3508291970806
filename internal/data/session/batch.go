package session

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Batch accumulates parameterized statements and sends them in one round trip.
// Statements run in the order they were queued.
type Batch struct {
	q        Querier
	b        pgx.Batch
	executed bool
	// onFail is told about a failed execution so the owning session refuses to commit.
	onFail func(error)
}

func newBatch(q Querier, onFail func(error)) *Batch {
	return &Batch{q: q, onFail: onFail}
}

// Enqueue appends a statement without executing it.
func (b *Batch) Enqueue(sql string, args ...any) {
	b.b.Queue(sql, args...)
}

func (b *Batch) Len() int { return b.b.Len() }

// Executed reports whether ExecuteAll has already sent the batch.
func (b *Batch) Executed() bool { return b.executed }

// Statements exposes the queued SQL in order.
func (b *Batch) Statements() []string {
	out := make([]string, len(b.b.QueuedQueries))
	for i, qq := range b.b.QueuedQueries {
		out[i] = qq.SQL
	}
	return out
}

// ExecuteAll sends every queued statement and returns the affected row count of each.
// The first failing statement fails the whole call; inside a transaction nothing
// from the batch becomes visible.
func (b *Batch) ExecuteAll(ctx context.Context) (affected []int64, err error) {
	if b.executed {
		return nil, ErrBatchExecuted
	}
	b.executed = true
	defer func() {
		if err != nil && b.onFail != nil {
			b.onFail(err)
		}
	}()
	n := b.b.Len()
	if n == 0 {
		return []int64{}, nil
	}

	results := b.q.SendBatch(ctx, &b.b)
	defer func() {
		if cerr := results.Close(); cerr != nil && err == nil {
			affected, err = nil, fmt.Errorf("session: close batch results: %w", cerr)
		}
	}()

	affected = make([]int64, 0, n)
	for i := 0; i < n; i++ {
		tag, execErr := results.Exec()
		if execErr != nil {
			return nil, &StatementError{Index: i, SQL: b.b.QueuedQueries[i].SQL, Err: execErr}
		}
		affected = append(affected, tag.RowsAffected())
	}
	return affected, nil
}
