package domain

// ConnectParams carries everything needed to open a pool for one profile.
type ConnectParams struct {
	ProfileID string `json:"profile_id"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	User      string `json:"user"`
	Password  string `json:"password"`
	Database  string `json:"database,omitempty"`
	SSL       bool   `json:"ssl"`
}

// ColumnInfo is one row of SHOW COLUMNS, shaped for the UI.
type ColumnInfo struct {
	Name       string  `json:"name"`
	ColType    string  `json:"col_type"`
	Nullable   bool    `json:"nullable"`
	Key        string  `json:"key"`
	DefaultVal *string `json:"default_val"`
	Extra      string  `json:"extra"`
}

// DatabaseInfo is the per-schema summary from information_schema.
type DatabaseInfo struct {
	Name             string  `json:"name"`
	SizeBytes        int64   `json:"size_bytes"`
	Tables           int64   `json:"tables"`
	Views            int64   `json:"views"`
	DefaultCollation string  `json:"default_collation"`
	LastModified     *string `json:"last_modified"`
}

// TableInfo is the per-table summary from information_schema.TABLES.
type TableInfo struct {
	Name      string  `json:"name"`
	Rows      *int64  `json:"rows"`
	SizeBytes *int64  `json:"size_bytes"`
	Created   *string `json:"created"`
	Updated   *string `json:"updated"`
	Engine    *string `json:"engine"`
	Comment   *string `json:"comment"`
	Type      string  `json:"type"`
}

// VariableInfo merges the session and global listings for one variable.
// Either value may be empty when the variable is absent from that scope.
type VariableInfo struct {
	Name         string  `json:"name"`
	SessionValue string  `json:"session_value"`
	GlobalValue  string  `json:"global_value"`
	Scope        *string `json:"scope"`
}

// StatusInfo is one row of SHOW GLOBAL STATUS.
type StatusInfo struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProcessInfo is one row of information_schema.PROCESSLIST.
type ProcessInfo struct {
	ID      uint64  `json:"id"`
	User    *string `json:"user"`
	Host    *string `json:"host"`
	DB      *string `json:"db"`
	Command *string `json:"command"`
	Time    *int64  `json:"time"`
	State   *string `json:"state"`
	Info    *string `json:"info"`
}

// CollationResponse carries the collation listing plus the effective
// default for new objects.
type CollationResponse struct {
	Collations       []string `json:"collations"`
	DefaultCollation string   `json:"default_collation"`
}
