package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	api "github.com/mind-engage/n2s-efficiency/internal/api/http"
	auth "github.com/mind-engage/n2s-efficiency/internal/auth/middleware"
	"github.com/mind-engage/n2s-efficiency/internal/config"
	"github.com/mind-engage/n2s-efficiency/internal/db"
	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
	"github.com/mind-engage/n2s-efficiency/internal/eventlog"
	"github.com/mind-engage/n2s-efficiency/internal/metrics"
	"github.com/mind-engage/n2s-efficiency/internal/scenario"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	// --- Model tables ---
	tables, err := loadTables(cfg.TablesPath)
	if err != nil {
		return err
	}
	engine := efficiency.NewEngine(tables)
	if issues, err := engine.Validate(efficiency.DefaultConfig()); err != nil || len(issues) > 0 {
		// Bucket weights are checked by Validate, not at load time.
		log.Warn("tables produce issues for the default config", "issues", issues, "error", err)
	}

	// --- Storage ---
	var (
		store  scenario.Store
		events eventlog.Recorder = eventlog.Discard{}
		repo   *eventlog.EventRepo
		dbh    *sql.DB
	)
	if cfg.DBDriver == config.DriverMemory {
		store = scenario.NewInMemoryStore()
	} else {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		dbh, err = db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			return err
		}
		defer dbh.Close()
		store = scenario.NewSQLStore(dbh)
		repo = eventlog.NewEventRepo(dbh, cfg.SiteID)
		events = repo
	}

	// --- Metrics ---
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, auth.Options{
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
		DevLogins:     cfg.Mode == config.ModeOffline,
	})

	h := api.NewRouter(api.Deps{
		Engine:    engine,
		Scenarios: scenario.NewService(store, engine, events, log),
		Auth:      authSvc,
		Log:       log,
		Events:    repo,
		Metrics:   m,
		Ready: func(ctx context.Context) error {
			if dbh == nil {
				return nil
			}
			return dbh.PingContext(ctx)
		},
		SweepLimit:      cfg.SweepConcurrency,
		CORSOrigins:     cfg.CORSOrigins(),
		EnableLocalAuth: cfg.EnableLocalAuth,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver,
			"initiatives", len(tables.Matrix().Names()), "calibration", tables.Matrix().Calibration())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func loadTables(path string) (*efficiency.Tables, error) {
	if path == "" {
		return efficiency.DefaultTables()
	}
	return efficiency.LoadTablesFile(path)
}
