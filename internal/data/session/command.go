package session

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Command is a statement bound to its session's connection, and to the
// transaction when the session runs one.
type Command struct {
	SQL string
	q   Querier
}

// Exec runs the statement and returns the number of affected rows.
func (c *Command) Exec(ctx context.Context, args ...any) (int64, error) {
	tag, err := c.q.Exec(ctx, c.SQL, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Query returns a forward-only row sequence; the caller must close it.
func (c *Command) Query(ctx context.Context, args ...any) (pgx.Rows, error) {
	return c.q.Query(ctx, c.SQL, args...)
}

func (c *Command) QueryRow(ctx context.Context, args ...any) pgx.Row {
	return c.q.QueryRow(ctx, c.SQL, args...)
}
