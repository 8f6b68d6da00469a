package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConnector hands out a single stubConn without a real database so the
// transaction wrapper can be exercised against scripted failures.
type stubConnector struct {
	conn *stubConn
}

func (c *stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c *stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, errors.New("not supported") }

type stubConn struct {
	beginErr error
	tx       *stubTx
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *stubConn) Close() error                        { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return c.tx, nil
}

type stubTx struct {
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *stubTx) Commit() error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *stubTx) Rollback() error {
	t.rolledBack = true
	return nil
}

func newStubDB(conn *stubConn) *sql.DB {
	return sql.OpenDB(&stubConnector{conn: conn})
}

func TestRunInTransactionCommits(t *testing.T) {
	t.Parallel()

	tx := &stubTx{}
	db := newStubDB(&stubConn{tx: tx})
	defer func() { _ = db.Close() }()

	var ran bool
	err := RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
		ran = true
		return nil
	})
	require.NoError(t, err)

	assert.True(t, ran)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestRunInTransactionRollsBackOnError(t *testing.T) {
	t.Parallel()

	tx := &stubTx{}
	db := newStubDB(&stubConn{tx: tx})
	defer func() { _ = db.Close() }()

	cause := errors.New("write failed")
	err := RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
		return cause
	})

	// The caller's error comes back unwrapped.
	assert.ErrorIs(t, err, cause)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestRunInTransactionWrapsBeginFailure(t *testing.T) {
	t.Parallel()

	db := newStubDB(&stubConn{beginErr: errors.New("no connection")})
	defer func() { _ = db.Close() }()

	err := RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
		t.Error("fn must not run when begin fails")
		return nil
	})

	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestRunInTransactionWrapsCommitFailure(t *testing.T) {
	t.Parallel()

	tx := &stubTx{commitErr: errors.New("connection reset")}
	db := newStubDB(&stubConn{tx: tx})
	defer func() { _ = db.Close() }()

	err := RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
		return nil
	})

	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.Contains(t, err.Error(), "commit")
}
