package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/wwpump/controller/internal/config"
	"github.com/wwpump/controller/internal/datadog"
	"github.com/wwpump/controller/internal/env"
	"github.com/wwpump/controller/internal/logging"
	"github.com/wwpump/controller/internal/notifications"
	"github.com/wwpump/controller/internal/orchestrator"
	"github.com/wwpump/controller/internal/sysmon"
	"github.com/wwpump/controller/db"

	"github.com/wwpump/controller/internal/api"
	"github.com/wwpump/controller/system/shutdown"
	"github.com/wwpump/controller/system/startup"
)

// installService is registered before config.Load() parses flags, since
// Load owns the single flag.Parse() call for the whole process.
var installService = flag.Bool("install-service", false, "Install and enable the systemd service, then exit")

func main() {
	cfg := config.Load()
	env.Cfg = &cfg
	logging.Init(cfg.LogLevel)

	log.Info().
		Str("timetable_file", cfg.TimetableFile).
		Int("api_port", cfg.APIPort).
		Msg("Starting wwpump recirculation controller")

	if cfg.SafeMode {
		log.Warn().Msg("SAFE MODE ENABLED — relay GPIO writes are disabled system-wide")
	}

	if *installService {
		execPath, err := os.Executable()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve executable path")
		}
		wd, err := os.Getwd()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve working directory")
		}
		if err := startup.EnsureServiceReady("/etc/systemd/system/wwpump-controller.service", execPath, "wwpump", wd); err != nil {
			log.Fatal().Err(err).Msg("Failed to install service")
		}
		return
	}

	if err := db.InitializeIfMissing(cfg.AuditDBPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audit database")
	}
	conn, err := db.Open(cfg.AuditDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open audit database")
	}
	defer conn.Close()

	datadog.InitMetrics()
	notifications.Init()

	backupLog := logging.NewBackupLog(cfg.BackupLogFile)

	orch, err := orchestrator.New(&cfg, backupLog)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build orchestrator")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go orch.Run(ctx)
	go orch.Observe(ctx, conn)
	go sysmon.Run(ctx)

	server := api.NewServer(orch.Clock, orch.PumpController, orch.Timetable)
	go func() {
		if err := server.Start(cfg.APIPort); err != nil {
			log.Error().Err(err).Msg("Diagnostics API server stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	<-sig
	log.Info().Msg("Shutdown signal received — exiting")
	cancel()

	shutdown.Shutdown(orch.Relay, orch.Timetable, cfg.TimetableFile)
}
