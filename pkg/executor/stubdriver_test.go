package executor

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubDriver serves canned result sets keyed by DSN, so executor
// success paths run without a server. Exec statements always succeed;
// unknown queries fail loudly.
type stubDriver struct {
	mu       sync.Mutex
	datasets map[string]map[string]stubRows
	opens    map[string]int
}

type stubRows struct {
	cols []string
	vals [][]driver.Value
}

var stub = &stubDriver{
	datasets: make(map[string]map[string]stubRows),
	opens:    make(map[string]int),
}

func init() {
	sql.Register("studiostub", stub)
}

func (d *stubDriver) set(dsn string, results map[string]stubRows) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.datasets[dsn] = results
	d.opens[dsn] = 0
}

func (d *stubDriver) openCount(dsn string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens[dsn]
}

func (d *stubDriver) Open(dsn string) (driver.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens[dsn]++
	return &stubConn{results: d.datasets[dsn]}, nil
}

type stubConn struct {
	results map[string]stubRows
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements not supported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *stubConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return driver.RowsAffected(0), nil
}

func (c *stubConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	rs, ok := c.results[query]
	if !ok {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	return &stubRowsIter{rows: rs}, nil
}

type stubRowsIter struct {
	rows stubRows
	idx  int
}

func (r *stubRowsIter) Columns() []string { return r.rows.cols }
func (r *stubRowsIter) Close() error      { return nil }

func (r *stubRowsIter) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows.vals) {
		return io.EOF
	}
	copy(dest, r.rows.vals[r.idx])
	r.idx++
	return nil
}

// stubPool registers a canned dataset under the test's name and opens a
// pool against it.
func stubPool(t *testing.T, results map[string]stubRows) *sql.DB {
	t.Helper()
	stub.set(t.Name(), results)
	db, err := sql.Open("studiostub", t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
