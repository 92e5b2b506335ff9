package main

import (
	"context"
	"log/slog"
	"os"

	"motorent-bot/audit"
	"motorent-bot/bot"
	"motorent-bot/config"
	"motorent-bot/drive"
	"motorent-bot/logger"
	"motorent-bot/sheets"

	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger.Initialize(cfg.LogLevel, "text")

	ctx := context.Background()
	creds := []byte(cfg.GoogleCredentials)

	svc, err := sheets.NewService(ctx, creds)
	if err != nil {
		slog.Error("sheets service init failed", "error", err)
		os.Exit(1)
	}
	fleet := sheets.NewClient(svc, cfg.SpreadsheetID, cfg.FleetSheet)
	reports := sheets.NewReports(sheets.NewClient(svc, cfg.SpreadsheetID, cfg.ReportsSheet))
	repo := sheets.NewRepository(fleet, cfg.CacheTTL)

	driveClient, err := drive.NewClient(ctx, creds, cfg.RootFolderID, cfg.ContractsFolderID)
	if err != nil {
		slog.Error("drive client init failed", "error", err)
		os.Exit(1)
	}

	auditStore, err := audit.Open(cfg.AuditDBPath)
	if err != nil {
		slog.Error("audit store init failed", "error", err)
		os.Exit(1)
	}

	b, err := bot.New(cfg, repo, reports, driveClient, auditStore)
	if err != nil {
		slog.Error("bot init failed", "error", err)
		os.Exit(1)
	}

	// Daily overdue sweep at 09:00 local time.
	cr := cron.New()
	if _, err := cr.AddFunc("0 9 * * *", b.NotifyOverdue); err != nil {
		slog.Error("cron setup failed", "error", err)
		os.Exit(1)
	}
	cr.Start()

	slog.Info("bot started")
	b.Start()
}
