// Package executor runs every query command through one uniform
// pipeline: resolve the profile's pool, acquire a single connection,
// run the statement(s), log the outcome, and shape the rows.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/workgrid/studio/pkg/audit"
	"github.com/workgrid/studio/pkg/domain"
	"github.com/workgrid/studio/pkg/security"
)

// PoolResolver yields the pool registered for a profile.
type PoolResolver interface {
	Resolve(profileID string) (*sql.DB, error)
}

// Executor executes commands against registered profile pools.
type Executor struct {
	pools PoolResolver
	audit *audit.Logger
}

// New creates an executor on top of a pool resolver.
func New(pools PoolResolver, auditLog *audit.Logger) *Executor {
	return &Executor{pools: pools, audit: auditLog}
}

// acquire resolves the profile's pool and checks out one connection.
// Both failure modes are logged and surfaced: NotConnected verbatim,
// acquisition failures as a connection error.
func (e *Executor) acquire(ctx context.Context, profileID string) (*sql.Conn, error) {
	db, err := e.pools.Resolve(profileID)
	if err != nil {
		e.audit.Error(profileID, err.Error())
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		connErr := domain.NewErrConnectionFailed("", err.Error())
		e.audit.Error(profileID, connErr.Error())
		return nil, connErr
	}
	return conn, nil
}

// queryFailed wraps a driver error with the failing statement and logs it.
func (e *Executor) queryFailed(profileID, query string, err error) error {
	qErr := domain.NewErrQueryFailed(query, err.Error())
	e.audit.Error(profileID, qErr.Error())
	return qErr
}

// ListDatabases returns the database names visible to the profile.
func (e *Executor) ListDatabases(ctx context.Context, profileID string) ([]string, error) {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	const query = "SHOW DATABASES"
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, e.queryFailed(profileID, query, err)
	}
	defer rows.Close()

	var databases []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, e.queryFailed(profileID, query, err)
		}
		databases = append(databases, name)
	}
	if err := rows.Err(); err != nil {
		return nil, e.queryFailed(profileID, query, err)
	}

	e.audit.QueryResult(profileID, query, len(databases))
	return databases, nil
}

// ListTables selects the schema and lists its tables. Both statements
// run on the same borrowed connection: USE changes session state, so a
// different pooled connection would list the wrong schema.
func (e *Executor) ListTables(ctx context.Context, profileID, database string) ([]string, error) {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	useQuery := "USE " + security.QuoteIdentifier(database)
	if _, err := conn.ExecContext(ctx, useQuery); err != nil {
		return nil, e.queryFailed(profileID, useQuery, err)
	}
	e.audit.Query(profileID, useQuery)

	logName := fmt.Sprintf("SHOW TABLES FROM %s", security.QuoteIdentifier(database))
	rows, err := conn.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, e.queryFailed(profileID, logName, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, e.queryFailed(profileID, logName, err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, e.queryFailed(profileID, logName, err)
	}

	e.audit.QueryResult(profileID, logName, len(tables))
	return tables, nil
}

// ListColumns returns the column metadata of one table.
func (e *Executor) ListColumns(ctx context.Context, profileID, database, table string) ([]domain.ColumnInfo, error) {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	query := fmt.Sprintf("SHOW COLUMNS FROM %s.%s",
		security.QuoteIdentifier(database), security.QuoteIdentifier(table))
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, e.queryFailed(profileID, query, err)
	}
	defer rows.Close()

	var columns []domain.ColumnInfo
	for rows.Next() {
		var (
			field, colType, null, key, extra string
			defaultVal                       sql.NullString
		)
		if err := rows.Scan(&field, &colType, &null, &key, &defaultVal, &extra); err != nil {
			return nil, e.queryFailed(profileID, query, err)
		}
		col := domain.ColumnInfo{
			Name:     field,
			ColType:  colType,
			Nullable: NullableFromIndicator(null),
			Key:      key,
			Extra:    extra,
		}
		if defaultVal.Valid {
			v := defaultVal.String
			col.DefaultVal = &v
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, e.queryFailed(profileID, query, err)
	}

	e.audit.QueryResult(profileID, query, len(columns))
	return columns, nil
}

const databasesInfoQuery = `
SELECT
    s.SCHEMA_NAME,
    COALESCE(SUM(t.DATA_LENGTH + t.INDEX_LENGTH), 0) AS size_bytes,
    COALESCE(SUM(CASE WHEN t.TABLE_TYPE = 'BASE TABLE' THEN 1 ELSE 0 END), 0) AS tables_count,
    COALESCE(SUM(CASE WHEN t.TABLE_TYPE = 'VIEW' THEN 1 ELSE 0 END), 0) AS views_count,
    s.DEFAULT_COLLATION_NAME,
    DATE_FORMAT(MAX(t.UPDATE_TIME), '%Y-%m-%d %H:%i:%s') AS last_modified
FROM information_schema.SCHEMATA s
LEFT JOIN information_schema.TABLES t ON t.TABLE_SCHEMA = s.SCHEMA_NAME
GROUP BY s.SCHEMA_NAME, s.DEFAULT_COLLATION_NAME
ORDER BY s.SCHEMA_NAME`

// DatabasesInfo returns the per-schema summary used by the database
// overview panel.
func (e *Executor) DatabasesInfo(ctx context.Context, profileID string) ([]domain.DatabaseInfo, error) {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	const logName = "SELECT databases info FROM information_schema"
	rows, err := conn.QueryContext(ctx, databasesInfoQuery)
	if err != nil {
		return nil, e.queryFailed(profileID, logName, err)
	}
	defer rows.Close()

	var infos []domain.DatabaseInfo
	for rows.Next() {
		var (
			info         domain.DatabaseInfo
			lastModified sql.NullString
		)
		if err := rows.Scan(&info.Name, &info.SizeBytes, &info.Tables, &info.Views,
			&info.DefaultCollation, &lastModified); err != nil {
			return nil, e.queryFailed(profileID, logName, err)
		}
		if lastModified.Valid {
			v := lastModified.String
			info.LastModified = &v
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, e.queryFailed(profileID, logName, err)
	}

	e.audit.QueryResult(profileID, logName, len(infos))
	return infos, nil
}

const tablesInfoQuery = `
SELECT
    TABLE_NAME,
    TABLE_ROWS,
    (DATA_LENGTH + INDEX_LENGTH) AS size_bytes,
    DATE_FORMAT(CREATE_TIME, '%Y-%m-%d %H:%i:%s') AS created,
    DATE_FORMAT(UPDATE_TIME, '%Y-%m-%d %H:%i:%s') AS updated,
    ENGINE,
    TABLE_COMMENT,
    TABLE_TYPE
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = ?
ORDER BY TABLE_NAME`

// TablesInfo returns the per-table summary for one schema.
func (e *Executor) TablesInfo(ctx context.Context, profileID, database string) ([]domain.TableInfo, error) {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	logName := fmt.Sprintf("SELECT tables info FROM information_schema for %s", database)
	rows, err := conn.QueryContext(ctx, tablesInfoQuery, database)
	if err != nil {
		return nil, e.queryFailed(profileID, logName, err)
	}
	defer rows.Close()

	var infos []domain.TableInfo
	for rows.Next() {
		var (
			info                              domain.TableInfo
			tableRows, sizeBytes              sql.NullInt64
			created, updated, engine, comment sql.NullString
		)
		if err := rows.Scan(&info.Name, &tableRows, &sizeBytes, &created, &updated,
			&engine, &comment, &info.Type); err != nil {
			return nil, e.queryFailed(profileID, logName, err)
		}
		if tableRows.Valid {
			v := tableRows.Int64
			info.Rows = &v
		}
		if sizeBytes.Valid {
			v := sizeBytes.Int64
			info.SizeBytes = &v
		}
		if created.Valid {
			v := created.String
			info.Created = &v
		}
		if updated.Valid {
			v := updated.String
			info.Updated = &v
		}
		if engine.Valid {
			v := engine.String
			info.Engine = &v
		}
		if comment.Valid {
			v := comment.String
			info.Comment = &v
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, e.queryFailed(profileID, logName, err)
	}

	e.audit.QueryResult(profileID, logName, len(infos))
	return infos, nil
}

// Variables lists server variables, merging the session and global
// scopes into one record per name. The scope annotation comes from
// performance_schema on a best-effort basis: servers without it (or
// without the privilege) still produce a full merge, just without
// scope labels.
func (e *Executor) Variables(ctx context.Context, profileID string) ([]domain.VariableInfo, error) {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	scopes := make(map[string]string)
	if rows, err := conn.QueryContext(ctx,
		"SELECT VARIABLE_NAME, VARIABLE_SCOPE FROM performance_schema.variables_info"); err == nil {
		for rows.Next() {
			var name, scope string
			if err := rows.Scan(&name, &scope); err != nil {
				break
			}
			scopes[strings.ToLower(name)] = strings.ToUpper(scope)
		}
		rows.Close()
	}

	session, err := e.nameValueRows(ctx, conn, profileID, "SHOW SESSION VARIABLES")
	if err != nil {
		return nil, err
	}
	global, err := e.nameValueRows(ctx, conn, profileID, "SHOW GLOBAL VARIABLES")
	if err != nil {
		return nil, err
	}

	return MergeVariables(session, global, scopes), nil
}

// nameValueRows runs a two-column SHOW statement with the uniform
// logging treatment.
func (e *Executor) nameValueRows(ctx context.Context, conn *sql.Conn, profileID, query string) ([]NameValue, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, e.queryFailed(profileID, query, err)
	}
	defer rows.Close()

	var out []NameValue
	for rows.Next() {
		var nv NameValue
		if err := rows.Scan(&nv.Name, &nv.Value); err != nil {
			return nil, e.queryFailed(profileID, query, err)
		}
		out = append(out, nv)
	}
	if err := rows.Err(); err != nil {
		return nil, e.queryFailed(profileID, query, err)
	}

	e.audit.QueryResult(profileID, query, len(out))
	return out, nil
}

// SetVariable assigns a session or global variable. The name is
// validated before interpolation and the value textually escaped; this
// statement shape has no bound-parameter form.
func (e *Executor) SetVariable(ctx context.Context, profileID, scope, name, value string) error {
	if err := security.ValidateIdentifier(name); err != nil {
		// No server round trip happened, so only the audit streams see it.
		e.audit.Error(profileID, err.Error())
		return err
	}

	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return err
	}
	defer conn.Close()

	scopeStr := "SESSION"
	if strings.EqualFold(scope, "GLOBAL") {
		scopeStr = "GLOBAL"
	}

	query := fmt.Sprintf("SET %s %s = '%s'", scopeStr, name, security.EscapeValue(value))
	if _, err := conn.ExecContext(ctx, query); err != nil {
		return e.queryFailed(profileID, query, err)
	}

	e.audit.QueryResult(profileID, query, 0)
	return nil
}

// Status returns SHOW GLOBAL STATUS as (name, value) records.
func (e *Executor) Status(ctx context.Context, profileID string) ([]domain.StatusInfo, error) {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := e.nameValueRows(ctx, conn, profileID, "SHOW GLOBAL STATUS")
	if err != nil {
		return nil, err
	}

	infos := make([]domain.StatusInfo, 0, len(rows))
	for _, nv := range rows {
		infos = append(infos, domain.StatusInfo{Name: nv.Name, Value: nv.Value})
	}
	return infos, nil
}

// Processes lists server threads, busiest first.
func (e *Executor) Processes(ctx context.Context, profileID string) ([]domain.ProcessInfo, error) {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	const query = "SELECT ID, USER, HOST, DB, COMMAND, TIME, STATE, INFO FROM information_schema.PROCESSLIST ORDER BY TIME DESC"
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, e.queryFailed(profileID, query, err)
	}
	defer rows.Close()

	var infos []domain.ProcessInfo
	for rows.Next() {
		var (
			info                           domain.ProcessInfo
			user, host, db, command, state sql.NullString
			processTime                    sql.NullInt64
			processInfo                    sql.NullString
		)
		if err := rows.Scan(&info.ID, &user, &host, &db, &command, &processTime,
			&state, &processInfo); err != nil {
			return nil, e.queryFailed(profileID, query, err)
		}
		if user.Valid {
			v := user.String
			info.User = &v
		}
		if host.Valid {
			v := host.String
			info.Host = &v
		}
		if db.Valid {
			v := db.String
			info.DB = &v
		}
		if command.Valid {
			v := command.String
			info.Command = &v
		}
		if processTime.Valid {
			v := processTime.Int64
			info.Time = &v
		}
		if state.Valid {
			v := state.String
			info.State = &v
		}
		if processInfo.Valid {
			v := processInfo.String
			info.Info = &v
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, e.queryFailed(profileID, query, err)
	}

	e.audit.QueryResult(profileID, query, len(infos))
	return infos, nil
}

// KillProcess terminates one server thread.
func (e *Executor) KillProcess(ctx context.Context, profileID string, processID uint64) error {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return err
	}
	defer conn.Close()

	query := fmt.Sprintf("KILL %d", processID)
	if _, err := conn.ExecContext(ctx, query); err != nil {
		return e.queryFailed(profileID, query, err)
	}

	e.audit.QueryResult(profileID, query, 0)
	return nil
}

// ExecuteQuery runs one ad-hoc statement without returning rows.
func (e *Executor) ExecuteQuery(ctx context.Context, profileID, query string) error {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, query); err != nil {
		return e.queryFailed(profileID, query, err)
	}

	e.audit.Query(profileID, query)
	return nil
}

// Collations returns the available collation names and the effective
// default for new objects. Both listings are metadata for the UI: a
// failing sub-query degrades to an empty list or the literal default
// rather than failing the command.
func (e *Executor) Collations(ctx context.Context, profileID string) (*domain.CollationResponse, error) {
	conn, err := e.acquire(ctx, profileID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var collations []string
	if rows, err := conn.QueryContext(ctx, "SHOW COLLATION"); err == nil {
		collations = scanFirstColumn(rows)
		e.audit.QueryResult(profileID, "SHOW COLLATION", len(collations))
	}

	var charsetRows []CharsetRow
	if rows, err := conn.QueryContext(ctx, "SHOW CHARACTER SET WHERE Charset = 'utf8mb4'"); err == nil {
		charsetRows = scanCharsetRows(rows)
	}

	return &domain.CollationResponse{
		Collations:       collations,
		DefaultCollation: DefaultCollation(charsetRows),
	}, nil
}

// scanFirstColumn collects the first column of a result set as strings,
// skipping malformed rows.
func scanFirstColumn(rows *sql.Rows) []string {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil || len(cols) == 0 {
		return nil
	}

	var out []string
	for rows.Next() {
		values := make([]any, len(cols))
		var first sql.NullString
		values[0] = &first
		for i := 1; i < len(cols); i++ {
			values[i] = new(sql.RawBytes)
		}
		if err := rows.Scan(values...); err != nil {
			continue
		}
		if first.Valid {
			out = append(out, first.String)
		}
	}
	return out
}

// scanCharsetRows reads SHOW CHARACTER SET rows: charset is the first
// column, the default collation the third.
func scanCharsetRows(rows *sql.Rows) []CharsetRow {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil || len(cols) < 3 {
		return nil
	}

	var out []CharsetRow
	for rows.Next() {
		values := make([]any, len(cols))
		var charset, collation sql.NullString
		values[0] = &charset
		values[1] = new(sql.RawBytes)
		values[2] = &collation
		for i := 3; i < len(cols); i++ {
			values[i] = new(sql.RawBytes)
		}
		if err := rows.Scan(values...); err != nil {
			continue
		}
		out = append(out, CharsetRow{Charset: charset.String, DefaultCollation: collation.String})
	}
	return out
}
