package session

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the statement surface shared by a connection and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is one logical connection owned by a session.
type Conn interface {
	Querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error)
	Release()
}

// Connector hands out connections; pooling is its concern, not the session's.
type Connector interface {
	Acquire(ctx context.Context) (Conn, error)
}

type poolConnector struct {
	pool *pgxpool.Pool
}

// NewPoolConnector adapts a pgx pool to Connector.
func NewPoolConnector(pool *pgxpool.Pool) Connector {
	return &poolConnector{pool: pool}
}

func (p *poolConnector) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &poolConn{Conn: c}, nil
}

type poolConn struct {
	*pgxpool.Conn
}

func (c *poolConn) BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error) {
	tx, err := c.Conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
