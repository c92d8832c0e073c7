package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/LockboxHQ/lockboxd/internal/config"
	"github.com/LockboxHQ/lockboxd/internal/core/application"
	"github.com/LockboxHQ/lockboxd/internal/infrastructure/db"
	restledger "github.com/LockboxHQ/lockboxd/internal/infrastructure/ledger/rest"
	scheduler "github.com/LockboxHQ/lockboxd/internal/infrastructure/scheduler/gocron"
	"github.com/LockboxHQ/lockboxd/internal/interface/rest"
	log "github.com/sirupsen/logrus"
)

// nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	log.Info("starting lockboxd...")

	dbSvc, err := db.NewService(db.ServiceConfig{
		DbType:   cfg.DbType,
		DbConfig: []any{cfg.Datadir, log.New()},
	})
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}

	buildInfo := application.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	ledgerSvc := restledger.NewService(cfg.LedgerURL)
	schedulerSvc := scheduler.NewScheduler()

	appSvc, err := application.NewService(
		buildInfo, cfg.OwnerId, cfg.VaultAccount, dbSvc, ledgerSvc, schedulerSvc,
	)
	if err != nil {
		log.WithError(err).Fatal(err)
	}

	if err := appSvc.SeedRelayers(context.Background(), cfg.Relayers); err != nil {
		log.WithError(err).Fatal("failed to seed relayers")
	}

	if err := appSvc.Start(cfg.FundingCheckInterval, cfg.FundingPendingThreshold); err != nil {
		log.WithError(err).Fatal("failed to start service")
	}

	svc, err := rest.NewService(rest.Config{Port: cfg.HTTPPort}, appSvc)
	if err != nil {
		log.Fatal(err)
	}

	log.RegisterExitHandler(func() {
		svc.Stop()
		appSvc.Stop()
	})

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		log.Fatal(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
}
