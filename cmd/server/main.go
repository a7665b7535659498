package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"matrixlead/internal/adapters/evaluators"
	httpadapter "matrixlead/internal/adapters/http"
	"matrixlead/internal/adapters/mail"
	pg "matrixlead/internal/adapters/postgres"
	"matrixlead/internal/config"
	"matrixlead/internal/observability"
	"matrixlead/internal/ports"
	"matrixlead/internal/services/dispatch"
	"matrixlead/internal/services/followup"
	"matrixlead/internal/services/leads"
	"matrixlead/internal/services/qualify"
	"matrixlead/internal/services/scoring"
	"matrixlead/internal/services/signals"
	"matrixlead/internal/workers/qualifyrunner"
)

func main() {
	cfg, err := config.Load()
	log := observability.InitLogger(observability.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Warn("configuration incomplete", "error", err)
	}
	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Wire repositories to services (ports)
	var _ ports.LeadRepository = db
	var _ ports.AuditLogRepository = db
	var _ ports.JobRepository = db

	evalClient := evaluators.NewClient(cfg.EvaluatorURL, log)
	collector := signals.New(evalClient, cfg.EvaluatorTimeout, log)
	engine := scoring.NewEngine()
	transport := mail.NewSMTP(cfg.SMTP, log)
	sender := followup.NewSender(transport, log)
	dispatcher := dispatch.New(db, db, sender, log)
	pipeline := qualify.New(db, collector, engine, dispatcher, log)
	leadSvc := leads.New(db, db, db, log)

	if cfg.QualifyWorkers > 0 {
		go qualifyrunner.Run(ctx, db, pipeline, cfg.QualifyWorkers, cfg.WorkerPoll, log)
		log.Info("qualification workers started", "count", cfg.QualifyWorkers)
	}

	srv := httpadapter.New(leadSvc, db, pipeline, log)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	log.Info("listening", "addr", cfg.ListenAddr, "env", cfg.Env)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
