// Package registry owns the profile → connection pool mapping. At most
// one pool is registered per profile; connecting again under the same
// profile atomically retires the previous pool.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/workgrid/studio/pkg/audit"
	"github.com/workgrid/studio/pkg/config"
	"github.com/workgrid/studio/pkg/domain"
)

// Registry maps profile identifiers to open pools. The mutex guards the
// map only, never a network round trip.
type Registry struct {
	mu    sync.Mutex
	pools map[string]*sql.DB

	cfg   config.ConnectionConfig
	audit *audit.Logger
}

// New creates an empty registry.
func New(cfg config.ConnectionConfig, auditLog *audit.Logger) *Registry {
	return &Registry{
		pools: make(map[string]*sql.DB),
		cfg:   cfg,
		audit: auditLog,
	}
}

// BuildDSN assembles the driver DSN for a profile.
func BuildDSN(params domain.ConnectParams, cfg config.ConnectionConfig) string {
	dsnCfg := mysqldriver.NewConfig()
	dsnCfg.User = params.User
	dsnCfg.Passwd = params.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", params.Host, params.Port)
	dsnCfg.AllowNativePasswords = true
	if params.Database != "" {
		dsnCfg.DBName = params.Database
	}
	if cfg.ConnectTimeout > 0 {
		dsnCfg.Timeout = cfg.ConnectTimeout
	}
	if params.SSL {
		dsnCfg.TLSConfig = "true"
	} else {
		dsnCfg.TLSConfig = "false"
	}
	return dsnCfg.FormatDSN()
}

// Connect validates reachability and credentials with a trial
// connection, then registers the pool, replacing (and releasing) any
// previous pool for the profile. On failure nothing is registered.
func (r *Registry) Connect(ctx context.Context, params domain.ConnectParams) (string, error) {
	pid := params.ProfileID
	target := fmt.Sprintf("%s@%s:%d", params.User, params.Host, params.Port)
	r.audit.Info(pid, fmt.Sprintf("Connecting to %s ...", target))

	db, err := sql.Open("mysql", BuildDSN(params, r.cfg))
	if err != nil {
		connErr := domain.NewErrConnectionFailed(target, err.Error())
		r.audit.Error(pid, connErr.Error())
		return "", connErr
	}

	db.SetMaxOpenConns(r.cfg.MaxOpen)
	db.SetMaxIdleConns(r.cfg.MaxIdle)
	db.SetConnMaxLifetime(r.cfg.Lifetime)
	db.SetConnMaxIdleTime(r.cfg.IdleTimeout)

	pingCtx := ctx
	if r.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, r.cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		connErr := domain.NewErrConnectionFailed(target, err.Error())
		r.audit.Error(pid, connErr.Error())
		return "", connErr
	}

	r.register(pid, db)
	r.audit.Info(pid, "Connected to "+target)
	return "Connected to " + target, nil
}

// register inserts the pool, retiring a previous one for the same
// profile. The old pool is closed off the caller's path; in-flight
// queries on it finish first (database/sql drains on Close).
func (r *Registry) register(profileID string, db *sql.DB) {
	r.mu.Lock()
	old := r.pools[profileID]
	r.pools[profileID] = db
	r.mu.Unlock()

	if old != nil {
		go func() { _ = old.Close() }()
	}
}

// Disconnect removes and releases the profile's pool. Disconnecting a
// profile that has no pool succeeds as a no-op.
func (r *Registry) Disconnect(profileID string) string {
	r.audit.Info(profileID, "Disconnecting...")

	r.mu.Lock()
	db := r.pools[profileID]
	delete(r.pools, profileID)
	r.mu.Unlock()

	if db != nil {
		_ = db.Close()
	}

	r.audit.Info(profileID, "Disconnected")
	return "Disconnected"
}

// Resolve returns the profile's pool, or ErrNotConnected when none is
// registered. Callers surface the error verbatim so the UI can prompt
// for a connection.
func (r *Registry) Resolve(profileID string) (*sql.DB, error) {
	r.mu.Lock()
	db := r.pools[profileID]
	r.mu.Unlock()

	if db == nil {
		return nil, domain.NewErrNotConnected(profileID)
	}
	return db, nil
}
