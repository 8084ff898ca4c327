package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/workgrid/studio/pkg/appdir"
	"github.com/workgrid/studio/pkg/audit"
	"github.com/workgrid/studio/pkg/domain"
	"github.com/workgrid/studio/pkg/executor"
	"github.com/workgrid/studio/pkg/logger"
	"github.com/workgrid/studio/pkg/registry"
)

// ToolDeps holds shared dependencies for MCP tool handlers.
type ToolDeps struct {
	Registry *registry.Registry
	Exec     *executor.Executor
	Audit    *audit.Logger
}

// logToolCall records one tool invocation on the operational log with a
// fresh trace id.
func (d *ToolDeps) logToolCall(tool, profileID string, start time.Time, err error) {
	traceID := uuid.NewString()
	if err != nil {
		logger.Error("tool call failed",
			"tool", tool, "profile_id", profileID, "trace_id", traceID,
			"duration_ms", time.Since(start).Milliseconds(), "error", err.Error())
		return
	}
	logger.Info("tool call",
		"tool", tool, "profile_id", profileID, "trace_id", traceID,
		"duration_ms", time.Since(start).Milliseconds())
}

// jsonResult marshals a structured response into a text content result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// HandleConnect opens (or replaces) a profile's pool.
func (d *ToolDeps) HandleConnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := domain.ConnectParams{
		ProfileID: request.GetString("profile_id", ""),
		Host:      request.GetString("host", ""),
		Port:      request.GetInt("port", 3306),
		User:      request.GetString("user", ""),
		Password:  request.GetString("password", ""),
		Database:  request.GetString("database", ""),
		SSL:       request.GetBool("ssl", false),
	}
	if params.ProfileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}
	if params.Host == "" {
		return mcp.NewToolResultError("host parameter is required"), nil
	}

	start := time.Now()
	message, err := d.Registry.Connect(ctx, params)
	d.logToolCall("connect", params.ProfileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(message), nil
}

// HandleDisconnect closes a profile's pool if one is registered.
func (d *ToolDeps) HandleDisconnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}

	start := time.Now()
	message := d.Registry.Disconnect(profileID)
	d.logToolCall("disconnect", profileID, start, nil)
	return mcp.NewToolResultText(message), nil
}

// HandleListDatabases lists database names for a profile.
func (d *ToolDeps) HandleListDatabases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}

	start := time.Now()
	databases, err := d.Exec.ListDatabases(ctx, profileID)
	d.logToolCall("list_databases", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(databases)
}

// HandleListTables lists the tables of one schema.
func (d *ToolDeps) HandleListTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	database := request.GetString("database", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}
	if database == "" {
		return mcp.NewToolResultError("database parameter is required"), nil
	}

	start := time.Now()
	tables, err := d.Exec.ListTables(ctx, profileID, database)
	d.logToolCall("list_tables", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tables)
}

// HandleListColumns returns the column metadata of one table.
func (d *ToolDeps) HandleListColumns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	database := request.GetString("database", "")
	table := request.GetString("table", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}
	if database == "" {
		return mcp.NewToolResultError("database parameter is required"), nil
	}
	if table == "" {
		return mcp.NewToolResultError("table parameter is required"), nil
	}

	start := time.Now()
	columns, err := d.Exec.ListColumns(ctx, profileID, database, table)
	d.logToolCall("list_columns", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(columns)
}

// HandleDatabasesInfo returns the per-schema overview.
func (d *ToolDeps) HandleDatabasesInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}

	start := time.Now()
	infos, err := d.Exec.DatabasesInfo(ctx, profileID)
	d.logToolCall("get_databases_info", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(infos)
}

// HandleTablesInfo returns the per-table overview for one schema.
func (d *ToolDeps) HandleTablesInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	database := request.GetString("database", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}
	if database == "" {
		return mcp.NewToolResultError("database parameter is required"), nil
	}

	start := time.Now()
	infos, err := d.Exec.TablesInfo(ctx, profileID, database)
	d.logToolCall("get_tables_info", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(infos)
}

// HandleVariables returns the merged session/global variable listing.
func (d *ToolDeps) HandleVariables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}

	start := time.Now()
	variables, err := d.Exec.Variables(ctx, profileID)
	d.logToolCall("get_variables", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(variables)
}

// HandleSetVariable assigns a session or global server variable.
func (d *ToolDeps) HandleSetVariable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	name := request.GetString("name", "")
	value := request.GetString("value", "")
	scope := request.GetString("scope", "SESSION")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	start := time.Now()
	err := d.Exec.SetVariable(ctx, profileID, scope, name, value)
	d.logToolCall("set_variable", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Variable %s set", name)), nil
}

// HandleStatus returns SHOW GLOBAL STATUS.
func (d *ToolDeps) HandleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}

	start := time.Now()
	status, err := d.Exec.Status(ctx, profileID)
	d.logToolCall("get_status", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(status)
}

// HandleProcesses lists server threads.
func (d *ToolDeps) HandleProcesses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}

	start := time.Now()
	processes, err := d.Exec.Processes(ctx, profileID)
	d.logToolCall("get_processes", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(processes)
}

// HandleKillProcess terminates one server thread.
func (d *ToolDeps) HandleKillProcess(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	processID := request.GetInt("process_id", 0)
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}
	if processID <= 0 {
		return mcp.NewToolResultError("process_id parameter is required"), nil
	}

	start := time.Now()
	err := d.Exec.KillProcess(ctx, profileID, uint64(processID))
	d.logToolCall("kill_process", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Process %d killed", processID)), nil
}

// HandleExecuteQuery runs one ad-hoc statement.
func (d *ToolDeps) HandleExecuteQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	query := request.GetString("query", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}
	if query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	start := time.Now()
	err := d.Exec.ExecuteQuery(ctx, profileID, query)
	d.logToolCall("execute_query", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Query executed"), nil
}

// HandleCollations returns the collation listing and effective default.
func (d *ToolDeps) HandleCollations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}

	start := time.Now()
	resp, err := d.Exec.Collations(ctx, profileID)
	d.logToolCall("get_collations", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(resp)
}

// HandleReadLog returns the contents of one audit stream.
func (d *ToolDeps) HandleReadLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	logType := request.GetString("log_type", "mysql")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}

	stream, err := audit.ParseStream(logType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start := time.Now()
	contents, err := d.Audit.Read(profileID, stream)
	d.logToolCall("read_log", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(contents), nil
}

// HandleClearLog truncates one audit stream, or both when log_type is
// "all".
func (d *ToolDeps) HandleClearLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileID := request.GetString("profile_id", "")
	logType := request.GetString("log_type", "mysql")
	if profileID == "" {
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}

	if logType == "all" {
		start := time.Now()
		err := d.Audit.ClearAll(profileID)
		d.logToolCall("clear_log", profileID, start, err)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Log cleared"), nil
	}

	stream, err := audit.ParseStream(logType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown log type %q: use 'mysql', 'error' or 'all'", logType)), nil
	}

	start := time.Now()
	err = d.Audit.Clear(profileID, stream)
	d.logToolCall("clear_log", profileID, start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Log cleared"), nil
}

// HandleReadFile reads one data file; an absent file reads as empty.
func (d *ToolDeps) HandleReadFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename := request.GetString("filename", "")
	if filename == "" {
		return mcp.NewToolResultError("filename parameter is required"), nil
	}

	start := time.Now()
	contents, err := appdir.ReadFile(filename)
	d.logToolCall("read_file", "", start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(contents), nil
}

// HandleWriteFile writes one data file, replacing any prior contents.
func (d *ToolDeps) HandleWriteFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename := request.GetString("filename", "")
	contents := request.GetString("contents", "")
	if filename == "" {
		return mcp.NewToolResultError("filename parameter is required"), nil
	}

	start := time.Now()
	err := appdir.WriteFile(filename, contents)
	d.logToolCall("write_file", "", start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("File written"), nil
}

// HandleDeleteFile removes one data file; deleting an absent file is a
// no-op.
func (d *ToolDeps) HandleDeleteFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename := request.GetString("filename", "")
	if filename == "" {
		return mcp.NewToolResultError("filename parameter is required"), nil
	}

	start := time.Now()
	err := appdir.DeleteFile(filename)
	d.logToolCall("delete_file", "", start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("File deleted"), nil
}

// HandleDataDir returns the application data directory, creating it on
// first use.
func (d *ToolDeps) HandleDataDir(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	base, err := appdir.Ensure()
	d.logToolCall("get_data_dir", "", start, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(base), nil
}
