package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinic-api/internal/shared"
)

// txKey carries the active transaction through context.Context.
type txKey struct{}

// ErrNestedTx is returned when WithinTx is called from inside an already
// running unit of work. A single top-level unit of work spans one logical
// request including all dependent writes.
var ErrNestedTx = errors.New("pg: nested unit of work")

// Querier is the query surface shared by the pool and a transaction, so
// repositories run the same code inside and outside a unit of work.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// TxRunner executes a function inside one database transaction: the unit of
// work of a logical request.
//
// Lifecycle contract:
//   - a failed begin surfaces as a DatabaseConnectionError domain error;
//   - on a nil return from fn the transaction commits; on any error it rolls
//     back and the original error propagates unchanged; the runner never
//     swallows or recategorizes failures;
//   - a failure during commit (e.g. a constraint checked at commit time)
//     still triggers rollback before the commit error propagates;
//   - the connection is released exactly once whichever exit path is taken;
//   - commit and rollback run on a cancellation-immune context, so a client
//     disconnect cannot interrupt a commit once it has started.
type TxRunner struct {
	Pool *pgxpool.Pool
}

// NewTxRunner creates a TxRunner over the given pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{Pool: pool}
}

// WithinTx runs fn inside a transaction with default options.
// The transaction is reachable inside fn via Tx(ctx) or GetQuerier(ctx).
func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.WithinTxOptions(ctx, pgx.TxOptions{}, fn)
}

// WithinTxOptions runs fn inside a transaction with the given options.
func (r *TxRunner) WithinTxOptions(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := Tx(ctx); ok {
		return ErrNestedTx
	}

	tx, err := r.Pool.BeginTx(ctx, opts)
	if err != nil {
		return shared.E(shared.DatabaseConnectionError).WithCause(err)
	}

	// Terminal phases must survive request cancellation: once a commit is
	// initiated it runs to completion, and a rollback after a failed fn must
	// not be skipped because the client went away.
	endCtx := context.WithoutCancel(ctx)

	// Release is exactly once: Rollback after a successful Commit is a no-op
	// (pgx reports ErrTxClosed, ignored here), and it is what returns the
	// connection to the pool on every other path, including a panic in fn.
	defer func() { _ = tx.Rollback(endCtx) }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(endCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, rbErr)
		}
		return err
	}

	if err := tx.Commit(endCtx); err != nil {
		// Deferred rollback cleans up before the commit error reaches the
		// caller, preserving the attempt-commit → rollback → propagate order.
		return err
	}
	return nil
}

// Tx extracts the active transaction from the context. The second return
// value reports whether a unit of work is running.
func Tx(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// GetQuerier returns the active transaction when a unit of work is running,
// the pool otherwise.
func (r *TxRunner) GetQuerier(ctx context.Context) Querier {
	if tx, ok := Tx(ctx); ok {
		return tx
	}
	return r.Pool
}
