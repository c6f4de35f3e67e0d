package postgres

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeDriver is a minimal database/sql/driver.Driver that records every
// statement executed against it, so Sink.Write and EnsureTableExists
// can be exercised without a real Postgres connection — the corpus
// carries no SQL-mocking library, and database/sql's driver interface
// is exactly what the standard library itself uses for this in its own
// tests.
type fakeDriver struct {
	mu    sync.Mutex
	execs []string
	args  [][]driver.Value
}

func (d *fakeDriver) Open(name string) (driver.Conn, error) {
	return &fakeConn{d: d}, nil
}

type fakeConn struct{ d *fakeDriver }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return &fakeStmt{conn: c, query: query}, nil
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return nil, driver.ErrSkip }

type fakeStmt struct {
	conn  *fakeConn
	query string
}

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }
func (s *fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.conn.d.mu.Lock()
	defer s.conn.d.mu.Unlock()
	s.conn.d.execs = append(s.conn.d.execs, s.query)
	s.conn.d.args = append(s.conn.d.args, args)
	return driver.RowsAffected(1), nil
}
func (s *fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	return nil, driver.ErrSkip
}

var fakeDriverSeq atomic.Uint64

func newFakeDB(t *testing.T) (*sql.DB, *fakeDriver) {
	t.Helper()
	d := &fakeDriver{}
	name := fmt.Sprintf("fakepostgres-%d", fakeDriverSeq.Add(1))
	sql.Register(name, d)

	db, err := sql.Open(name, "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, d
}

func TestEnsureTableExistsIssuesCreateTable(t *testing.T) {
	db, d := newFakeDB(t)

	require.NoError(t, EnsureTableExists(db))

	d.mu.Lock()
	defer d.mu.Unlock()
	require.Len(t, d.execs, 1)
	require.Contains(t, d.execs[0], "CREATE TABLE IF NOT EXISTS engine_log")
}

func TestSinkWriteInsertsChannelAndLine(t *testing.T) {
	db, d := newFakeDB(t)
	sink := NewSink(db, "out")

	require.NoError(t, sink.Write("2,5,100.00"))

	d.mu.Lock()
	defer d.mu.Unlock()
	require.Len(t, d.execs, 1)
	require.Contains(t, d.execs[0], "INSERT INTO engine_log")
	require.Equal(t, "out", d.args[0][0])
	require.Equal(t, "2,5,100.00", d.args[0][1])
}
