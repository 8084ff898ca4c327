package main

import (
	"os"

	"github.com/workgrid/studio/pkg/appdir"
	"github.com/workgrid/studio/pkg/audit"
	"github.com/workgrid/studio/pkg/config"
	"github.com/workgrid/studio/pkg/executor"
	"github.com/workgrid/studio/pkg/logger"
	"github.com/workgrid/studio/pkg/registry"
	mcpserver "github.com/workgrid/studio/server/mcp"
)

func main() {
	cfg := config.LoadConfigOrDefault()

	logger.Init(cfg.Log.Level, cfg.Log.File)
	defer logger.Close()

	base, err := appdir.Ensure()
	if err != nil {
		logger.Error("create data directory", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded configuration",
		"addr", cfg.GetListenAddress(), "data_dir", base)

	auditLog := audit.New()
	reg := registry.New(cfg.Connection, auditLog)
	exec := executor.New(reg, auditLog)

	srv := mcpserver.NewServer(cfg, reg, exec, auditLog)
	if err := srv.Start(); err != nil {
		logger.Error("MCP server exited", "error", err)
		os.Exit(1)
	}
}
