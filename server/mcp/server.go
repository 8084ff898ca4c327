// Package mcp exposes the studio backend as an MCP tool server over
// streamable HTTP. Every backend command maps to exactly one tool.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workgrid/studio/pkg/audit"
	"github.com/workgrid/studio/pkg/config"
	"github.com/workgrid/studio/pkg/executor"
	"github.com/workgrid/studio/pkg/logger"
	"github.com/workgrid/studio/pkg/registry"
)

// Server is the MCP protocol server.
type Server struct {
	cfg      *config.Config
	registry *registry.Registry
	exec     *executor.Executor
	audit    *audit.Logger
}

// NewServer creates a new MCP server.
func NewServer(cfg *config.Config, reg *registry.Registry, exec *executor.Executor, auditLog *audit.Logger) *Server {
	return &Server{
		cfg:      cfg,
		registry: reg,
		exec:     exec,
		audit:    auditLog,
	}
}

// Start starts the MCP server (blocking).
func (s *Server) Start() error {
	addr := s.cfg.GetListenAddress()

	deps := &ToolDeps{
		Registry: s.registry,
		Exec:     s.exec,
		Audit:    s.audit,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"workgrid-studio",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
	registerTools(mcpSrv, deps)

	httpServer := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)

	logger.Info("starting MCP server", "addr", addr)
	return httpServer.Start(addr)
}

func registerTools(srv *mcpserver.MCPServer, deps *ToolDeps) {
	profileArg := mcp.WithString("profile_id",
		mcp.Description("The connection profile identifier"), mcp.Required())

	srv.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Open a connection pool for a profile, replacing any existing pool for that profile after a successful trial connection."),
		profileArg,
		mcp.WithString("host", mcp.Description("MySQL server host"), mcp.Required()),
		mcp.WithNumber("port", mcp.Description("MySQL server port (default 3306)")),
		mcp.WithString("user", mcp.Description("MySQL user name"), mcp.Required()),
		mcp.WithString("password", mcp.Description("MySQL password")),
		mcp.WithString("database", mcp.Description("Initial database (optional)")),
		mcp.WithBoolean("ssl", mcp.Description("Require TLS for the connection")),
	), deps.HandleConnect)

	srv.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Close and remove a profile's connection pool. Disconnecting an unknown profile is a no-op."),
		profileArg,
	), deps.HandleDisconnect)

	srv.AddTool(mcp.NewTool("list_databases",
		mcp.WithDescription("List the database names visible to a profile."),
		profileArg,
	), deps.HandleListDatabases)

	srv.AddTool(mcp.NewTool("list_tables",
		mcp.WithDescription("List the tables of one database."),
		profileArg,
		mcp.WithString("database", mcp.Description("The database name"), mcp.Required()),
	), deps.HandleListTables)

	srv.AddTool(mcp.NewTool("list_columns",
		mcp.WithDescription("List the columns of one table with type, nullability, key, default and extra attributes."),
		profileArg,
		mcp.WithString("database", mcp.Description("The database name"), mcp.Required()),
		mcp.WithString("table", mcp.Description("The table name"), mcp.Required()),
	), deps.HandleListColumns)

	srv.AddTool(mcp.NewTool("get_databases_info",
		mcp.WithDescription("Get per-database size, table/view counts, default collation and last-modified timestamp."),
		profileArg,
	), deps.HandleDatabasesInfo)

	srv.AddTool(mcp.NewTool("get_tables_info",
		mcp.WithDescription("Get per-table row estimate, size, timestamps, engine, comment and type for one database."),
		profileArg,
		mcp.WithString("database", mcp.Description("The database name"), mcp.Required()),
	), deps.HandleTablesInfo)

	srv.AddTool(mcp.NewTool("get_variables",
		mcp.WithDescription("Get server variables with session and global values merged into one record per variable."),
		profileArg,
	), deps.HandleVariables)

	srv.AddTool(mcp.NewTool("set_variable",
		mcp.WithDescription("Set a session or global server variable."),
		profileArg,
		mcp.WithString("name", mcp.Description("The variable name (letters, digits and underscores)"), mcp.Required()),
		mcp.WithString("value", mcp.Description("The value to assign")),
		mcp.WithString("scope", mcp.Description("SESSION (default) or GLOBAL")),
	), deps.HandleSetVariable)

	srv.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Get SHOW GLOBAL STATUS as name/value records."),
		profileArg,
	), deps.HandleStatus)

	srv.AddTool(mcp.NewTool("get_processes",
		mcp.WithDescription("List server threads, busiest first."),
		profileArg,
	), deps.HandleProcesses)

	srv.AddTool(mcp.NewTool("kill_process",
		mcp.WithDescription("Terminate one server thread by id."),
		profileArg,
		mcp.WithNumber("process_id", mcp.Description("The thread id to kill"), mcp.Required()),
	), deps.HandleKillProcess)

	srv.AddTool(mcp.NewTool("execute_query",
		mcp.WithDescription("Execute one ad-hoc SQL statement without returning rows."),
		profileArg,
		mcp.WithString("query", mcp.Description("The SQL statement to execute"), mcp.Required()),
	), deps.HandleExecuteQuery)

	srv.AddTool(mcp.NewTool("get_collations",
		mcp.WithDescription("Get the available collation names and the effective default collation for new objects."),
		profileArg,
	), deps.HandleCollations)

	srv.AddTool(mcp.NewTool("read_log",
		mcp.WithDescription("Read a profile's audit log stream."),
		profileArg,
		mcp.WithString("log_type", mcp.Description("'mysql' (default) or 'error'")),
	), deps.HandleReadLog)

	srv.AddTool(mcp.NewTool("clear_log",
		mcp.WithDescription("Clear a profile's audit log stream, or all streams."),
		profileArg,
		mcp.WithString("log_type", mcp.Description("'mysql' (default), 'error' or 'all'")),
	), deps.HandleClearLog)

	srv.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read a file from the application data directory. A missing file reads as empty."),
		mcp.WithString("filename", mcp.Description("The file name"), mcp.Required()),
	), deps.HandleReadFile)

	srv.AddTool(mcp.NewTool("write_file",
		mcp.WithDescription("Write a file into the application data directory."),
		mcp.WithString("filename", mcp.Description("The file name"), mcp.Required()),
		mcp.WithString("contents", mcp.Description("The file contents")),
	), deps.HandleWriteFile)

	srv.AddTool(mcp.NewTool("delete_file",
		mcp.WithDescription("Delete a file from the application data directory. Deleting a missing file is a no-op."),
		mcp.WithString("filename", mcp.Description("The file name"), mcp.Required()),
	), deps.HandleDeleteFile)

	srv.AddTool(mcp.NewTool("get_data_dir",
		mcp.WithDescription("Get the application data directory path, creating it if needed."),
	), deps.HandleDataDir)
}
