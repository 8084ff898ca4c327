package registry

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgrid/studio/pkg/appdir"
	"github.com/workgrid/studio/pkg/audit"
	"github.com/workgrid/studio/pkg/config"
	"github.com/workgrid/studio/pkg/domain"
)

func newTestRegistry(t *testing.T) (*Registry, *audit.Logger) {
	t.Helper()
	t.Setenv(appdir.EnvOverride, t.TempDir())
	auditLog := audit.New()
	cfg := config.DefaultConfig().Connection
	cfg.ConnectTimeout = time.Second
	return New(cfg, auditLog), auditLog
}

// lazyPool opens a pool without touching the network (database/sql
// connects lazily), good enough to exercise registry bookkeeping.
func lazyPool(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	return db
}

func TestResolveBeforeConnect(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Resolve("p1")
	require.Error(t, err)
	var notConnected *domain.ErrNotConnected
	require.ErrorAs(t, err, &notConnected)
	assert.Equal(t, "Not connected. Please connect first.", err.Error())
}

func TestConnectFailureRegistersNothing(t *testing.T) {
	r, auditLog := newTestRegistry(t)

	// Port 1 on loopback refuses immediately.
	_, err := r.Connect(context.Background(), domain.ConnectParams{
		ProfileID: "p1",
		Host:      "127.0.0.1",
		Port:      1,
		User:      "root",
		Password:  "secret",
	})
	require.Error(t, err)
	var connFailed *domain.ErrConnectionFailed
	require.ErrorAs(t, err, &connFailed)
	assert.Contains(t, err.Error(), "root@127.0.0.1:1")

	_, err = r.Resolve("p1")
	var notConnected *domain.ErrNotConnected
	require.ErrorAs(t, err, &notConnected)

	errLog, err := auditLog.Read("p1", audit.StreamError)
	require.NoError(t, err)
	assert.Contains(t, errLog, "Connection failed to root@127.0.0.1:1")
}

func TestRegisterReplacesPreviousPool(t *testing.T) {
	r, _ := newTestRegistry(t)

	first := lazyPool(t, "root@tcp(127.0.0.1:3306)/")
	second := lazyPool(t, "root@tcp(127.0.0.1:3307)/")

	r.register("p1", first)
	got, err := r.Resolve("p1")
	require.NoError(t, err)
	assert.Same(t, first, got)

	r.register("p1", second)
	got, err = r.Resolve("p1")
	require.NoError(t, err)
	assert.Same(t, second, got)

	// The retired pool closes asynchronously; a closed pool rejects use.
	assert.Eventually(t, func() bool {
		return first.Ping() != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	r, auditLog := newTestRegistry(t)

	r.register("p1", lazyPool(t, "root@tcp(127.0.0.1:3306)/"))

	assert.Equal(t, "Disconnected", r.Disconnect("p1"))
	assert.Equal(t, "Disconnected", r.Disconnect("p1"))

	_, err := r.Resolve("p1")
	var notConnected *domain.ErrNotConnected
	require.ErrorAs(t, err, &notConnected)

	queryLog, err := auditLog.Read("p1", audit.StreamQuery)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(queryLog, "INFO: Disconnect"))
}

func TestProfilesAreIndependent(t *testing.T) {
	r, _ := newTestRegistry(t)

	a := lazyPool(t, "root@tcp(127.0.0.1:3306)/a")
	b := lazyPool(t, "root@tcp(127.0.0.1:3306)/b")
	r.register("p1", a)
	r.register("p2", b)

	r.Disconnect("p1")

	got, err := r.Resolve("p2")
	require.NoError(t, err)
	assert.Same(t, b, got)
}

func TestBuildDSN(t *testing.T) {
	cfg := config.ConnectionConfig{ConnectTimeout: 5 * time.Second}

	dsn := BuildDSN(domain.ConnectParams{
		Host: "db.internal", Port: 3307, User: "app", Password: "s3cr3t", Database: "inventory", SSL: true,
	}, cfg)
	assert.Contains(t, dsn, "app:s3cr3t@tcp(db.internal:3307)/inventory")
	assert.Contains(t, dsn, "tls=true")
	assert.Contains(t, dsn, "timeout=5s")

	// Empty database means no default schema
	dsn = BuildDSN(domain.ConnectParams{Host: "h", Port: 3306, User: "u"}, cfg)
	assert.Contains(t, dsn, "@tcp(h:3306)/?")
}
