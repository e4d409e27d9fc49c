package pg

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTx satisfies pgx.Tx for context plumbing tests; calling any method
// panics.
type stubTx struct {
	pgx.Tx
}

func TestTxFromContext(t *testing.T) {
	_, ok := Tx(context.Background())
	assert.False(t, ok)

	ctx := context.WithValue(context.Background(), txKey{}, stubTx{})
	got, ok := Tx(ctx)
	assert.True(t, ok)
	assert.Equal(t, stubTx{}, got)
}

func TestGetQuerierPrefersTransaction(t *testing.T) {
	r := &TxRunner{}

	assert.Equal(t, Querier(r.Pool), r.GetQuerier(context.Background()))

	ctx := context.WithValue(context.Background(), txKey{}, stubTx{})
	assert.Equal(t, stubTx{}, r.GetQuerier(ctx))
}

func TestWithinTxRejectsNesting(t *testing.T) {
	r := &TxRunner{}
	ctx := context.WithValue(context.Background(), txKey{}, stubTx{})

	err := r.WithinTx(ctx, func(context.Context) error {
		t.Fatal("must not run inside a running unit of work")
		return nil
	})
	assert.ErrorIs(t, err, ErrNestedTx)
}

// testPool connects to the database named by TEST_DATABASE_URL, skipping
// the test when none is configured.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func setupCounterTable(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tx_test_counters (
			id  int PRIMARY KEY,
			n   int NOT NULL DEFAULT 0,
			cap int NOT NULL DEFAULT 10,
			CHECK (n >= 0 AND n <= cap)
		)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO tx_test_counters (id, n) VALUES (1, 0)
		ON CONFLICT (id) DO UPDATE SET n = 0`)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DROP TABLE IF EXISTS tx_test_counters`)
	})
}

func counterValue(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()
	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT n FROM tx_test_counters WHERE id = 1`).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestWithinTxCommits(t *testing.T) {
	pool := testPool(t)
	setupCounterTable(t, pool)
	r := NewTxRunner(pool)

	err := r.WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := r.GetQuerier(ctx).Exec(ctx,
			`UPDATE tx_test_counters SET n = n + 1 WHERE id = 1`)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, counterValue(t, pool))
}

// A failure after a successful write must leave no trace of the write.
func TestWithinTxRollsBackOnError(t *testing.T) {
	pool := testPool(t)
	setupCounterTable(t, pool)
	r := NewTxRunner(pool)

	boom := errors.New("validation failed after the write")
	err := r.WithinTx(context.Background(), func(ctx context.Context) error {
		if _, err := r.GetQuerier(ctx).Exec(ctx,
			`UPDATE tx_test_counters SET n = n + 1 WHERE id = 1`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, counterValue(t, pool))
}

func TestWithinTxReadsOwnWrites(t *testing.T) {
	pool := testPool(t)
	setupCounterTable(t, pool)
	r := NewTxRunner(pool)

	err := r.WithinTx(context.Background(), func(ctx context.Context) error {
		q := r.GetQuerier(ctx)
		if _, err := q.Exec(ctx,
			`UPDATE tx_test_counters SET n = n + 1 WHERE id = 1`); err != nil {
			return err
		}
		var n int
		if err := q.QueryRow(ctx,
			`SELECT n FROM tx_test_counters WHERE id = 1`).Scan(&n); err != nil {
			return err
		}
		assert.Equal(t, 1, n)
		return nil
	})
	require.NoError(t, err)
}

// Cancelling the request context after the callback returns must not stop
// the commit.
func TestWithinTxCommitSurvivesCancellation(t *testing.T) {
	pool := testPool(t)
	setupCounterTable(t, pool)
	r := NewTxRunner(pool)

	ctx, cancel := context.WithCancel(context.Background())
	err := r.WithinTx(ctx, func(ctx context.Context) error {
		_, err := r.GetQuerier(ctx).Exec(ctx,
			`UPDATE tx_test_counters SET n = n + 1 WHERE id = 1`)
		cancel()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, counterValue(t, pool))
}

// Two concurrent conditional increments against a cap of 1: exactly one
// commits, and the constraint-checked counter never exceeds the cap.
func TestWithinTxConditionalUpdateSerializes(t *testing.T) {
	pool := testPool(t)
	setupCounterTable(t, pool)
	_, err := pool.Exec(context.Background(),
		`UPDATE tx_test_counters SET cap = 1 WHERE id = 1`)
	require.NoError(t, err)
	r := NewTxRunner(pool)

	increment := func() (bool, error) {
		var won bool
		err := r.WithinTx(context.Background(), func(ctx context.Context) error {
			tag, err := r.GetQuerier(ctx).Exec(ctx,
				`UPDATE tx_test_counters SET n = n + 1 WHERE id = 1 AND n < cap`)
			if err != nil {
				return err
			}
			won = tag.RowsAffected() == 1
			return nil
		})
		return won, err
	}

	type result struct {
		won bool
		err error
	}
	results := make(chan result, 2)
	for range 2 {
		go func() {
			won, err := increment()
			results <- result{won, err}
		}()
	}

	var wins int
	for range 2 {
		res := <-results
		require.NoError(t, res.err)
		if res.won {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, counterValue(t, pool))
}
