package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

const defaultReleaseTimeout = 5 * time.Second

// ReadSession is the read-only capability: statements and ad-hoc batches, but no commit.
type ReadSession interface {
	Command(ctx context.Context, sql string) (*Command, error)
	NewBatch(ctx context.Context) (*Batch, error)
	Release(ctx context.Context) error
	Close() error
}

// WriteSession adds the session's live batch and the ability to commit.
type WriteSession interface {
	ReadSession
	Batch(ctx context.Context) (*Batch, error)
	Persist(ctx context.Context) error
}

var (
	_ ReadSession  = (*Session)(nil)
	_ WriteSession = (*Session)(nil)
)

type Options struct {
	Mode Mode
	// TxOptions begins a transaction on first use when set. Read sessions normally leave it nil.
	TxOptions *pgx.TxOptions
	// ReleaseTimeout bounds rollback during Release. Defaults to 5s.
	ReleaseTimeout time.Duration
}

// Session is the single concrete unit of work behind ReadSession and WriteSession.
type Session struct {
	connector Connector
	log       *logger.Logger
	opts      Options

	state atomic.Int32

	// mu guards the conn/tx handoff between initialization and Release.
	mu   sync.Mutex
	conn Conn
	tx   Tx

	live    *Batch
	batches int
	// failed holds the first batch execution error; the session never commits after it.
	failed error
}

func New(connector Connector, log *logger.Logger, opts Options) *Session {
	if log == nil {
		log = logger.Nop()
	}
	if opts.ReleaseTimeout <= 0 {
		opts.ReleaseTimeout = defaultReleaseTimeout
	}
	return &Session{
		connector: connector,
		log:       log.With("session_mode", opts.Mode.String()),
		opts:      opts,
	}
}

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) Mode() Mode { return s.opts.Mode }

// Command returns a statement handle, opening the connection and transaction if needed.
func (s *Session) Command(ctx context.Context, sql string) (*Command, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	return &Command{SQL: sql, q: s.executor()}, nil
}

// NewBatch returns a fresh, empty batch bound to the session.
func (s *Session) NewBatch(ctx context.Context) (*Batch, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	s.batches++
	return newBatch(s.executor(), s.recordFailure), nil
}

// Batch returns the session's live batch, creating it on first call.
// Persist executes it before committing.
func (s *Session) Batch(ctx context.Context) (*Batch, error) {
	if s.live != nil && s.State() == StateReady {
		return s.live, nil
	}
	b, err := s.NewBatch(ctx)
	if err != nil {
		return nil, err
	}
	s.live = b
	return b, nil
}

// Persist sends the pending live batch and commits the transaction.
//
// Sessions without a transaction have nothing to commit and return nil. A write
// session that never created a batch returns ErrNothingToPersist without any I/O.
// Once any batch of the session has failed, Persist keeps returning that failure
// and never commits.
func (s *Session) Persist(ctx context.Context) error {
	switch s.State() {
	case StateReleased:
		return ErrSessionReleased
	case StateCommitted:
		return ErrAlreadyPersisted
	case StateInitializing:
		return ErrConcurrentUse
	}
	if s.opts.Mode == ModeWrite && s.batches == 0 {
		return ErrNothingToPersist
	}
	if s.failed != nil {
		return s.failed
	}
	if s.live != nil && !s.live.Executed() && s.live.Len() > 0 {
		if _, err := s.live.ExecuteAll(ctx); err != nil {
			return err
		}
	}
	_, tx := s.handles()
	if tx == nil {
		return nil
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("session: commit: %w", err)
	}
	s.state.Store(int32(StateCommitted))
	return nil
}

// Release rolls back an uncommitted transaction and returns the connection.
// The connection is returned even when rollback fails; both failures are
// reported together. Calling Release again is a no-op.
//
// Cleanup does not inherit ctx cancellation, so an aborted request still
// rolls back within ReleaseTimeout.
func (s *Session) Release(ctx context.Context) error {
	prev := State(s.state.Swap(int32(StateReleased)))
	if prev == StateReleased {
		return nil
	}
	s.live = nil
	conn, tx := s.detach()
	if conn == nil {
		// Initialization still in flight owns whatever it acquires.
		return nil
	}
	err := s.cleanup(ctx, conn, tx, prev != StateCommitted)
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.log.Debug("session released after cancellation", "cause", ctxErr)
	}
	return err
}

// Close releases the session with a background context.
func (s *Session) Close() error {
	return s.Release(context.Background())
}

func (s *Session) ensureReady(ctx context.Context) error {
	switch s.State() {
	case StateReady:
		return nil
	case StateCommitted:
		return ErrAlreadyPersisted
	case StateReleased:
		return ErrSessionReleased
	}
	if !s.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		return ErrConcurrentUse
	}
	if err := s.initialize(ctx); err != nil {
		if !s.state.CompareAndSwap(int32(StateInitializing), int32(StateUninitialized)) {
			s.discard(ctx)
		}
		return err
	}
	if !s.state.CompareAndSwap(int32(StateInitializing), int32(StateReady)) {
		s.discard(ctx)
		return ErrSessionReleased
	}
	return nil
}

// discard cleans up what initialization acquired after Release already ran.
func (s *Session) discard(ctx context.Context) {
	conn, tx := s.detach()
	if conn == nil {
		return
	}
	_ = s.cleanup(ctx, conn, tx, true)
}

func (s *Session) cleanup(ctx context.Context, conn Conn, tx Tx, rollback bool) error {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ReleaseTimeout)
	defer cancel()
	defer conn.Release()

	var errs []error
	if tx != nil && rollback {
		if rbErr := tx.Rollback(cleanupCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			errs = append(errs, fmt.Errorf("session: rollback: %w", rbErr))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		s.log.Warn("session release failed", "error", err)
	}
	return err
}

func (s *Session) handles() (Conn, Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn, s.tx
}

func (s *Session) detach() (Conn, Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, tx := s.conn, s.tx
	s.conn, s.tx = nil, nil
	return conn, tx
}

func (s *Session) recordFailure(err error) {
	if s.failed == nil {
		s.failed = err
	}
}

// initialize publishes conn and tx together so a concurrent Release sees both or neither.
func (s *Session) initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, tx := s.handles()
	if conn == nil {
		c, err := s.connector.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("session: open connection: %w", err)
		}
		conn = c
	}
	var beginErr error
	if s.opts.TxOptions != nil && tx == nil {
		tx, beginErr = conn.BeginTx(ctx, *s.opts.TxOptions)
		if beginErr != nil {
			tx = nil
			beginErr = fmt.Errorf("session: begin transaction: %w", beginErr)
		}
	}
	s.mu.Lock()
	s.conn, s.tx = conn, tx
	s.mu.Unlock()
	return beginErr
}

func (s *Session) executor() Querier {
	conn, tx := s.handles()
	if tx != nil {
		return tx
	}
	return conn
}
