package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/greenfelt/cardroom/internal/handler"
	"github.com/greenfelt/cardroom/internal/infra"
	"github.com/greenfelt/cardroom/internal/ledger"
	"github.com/greenfelt/cardroom/internal/projection"
	"github.com/greenfelt/cardroom/internal/repository/postgres"
	"github.com/greenfelt/cardroom/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store := postgres.NewStore(pool)
	engine := ledger.NewEngine()
	cache := projection.NewInMemoryStore()
	ttl := time.Duration(cfg.SummaryCacheTTL) * time.Second

	cashierSvc := service.NewCashierService(store, engine, cache, logger, ttl)
	creditSvc := service.NewCreditService(store, engine, logger)
	sessionsSvc := service.NewSessionsService(store, engine, cache, logger, ttl)
	directorySvc := service.NewDirectoryService(store, logger)

	cashierHandler := handler.NewCashierHandler(cashierSvc)
	creditHandler := handler.NewCreditHandler(creditSvc)
	sessionHandler := handler.NewSessionHandler(sessionsSvc)
	directoryHandler := handler.NewDirectoryHandler(directorySvc)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(cfg.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	r.Get("/health", handler.HealthHandler(pool))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", sessionHandler.OpenSession)
		r.Get("/", sessionHandler.ListSessions)
		r.Get("/{id}", sessionHandler.GetSession)
		r.Delete("/{id}", sessionHandler.DeleteSession)
		r.Post("/{id}/close", sessionHandler.CloseSession)
		r.Post("/{id}/reopen", sessionHandler.ReopenSession)
		r.Get("/{id}/summary", sessionHandler.Summary)
		r.Post("/{id}/tables", sessionHandler.CreateTable)
		r.Get("/{id}/tables", sessionHandler.ListTables)
	})

	r.Route("/tables", func(r chi.Router) {
		r.Delete("/{id}", sessionHandler.DeleteTable)
		r.Get("/{tableID}/active", cashierHandler.ActiveSessions)
	})

	r.Route("/buy-ins", func(r chi.Router) {
		r.Post("/", cashierHandler.RecordBuyIn)
		r.Delete("/{id}", cashierHandler.DeleteBuyIn)
	})

	r.Route("/cash-outs", func(r chi.Router) {
		r.Post("/", cashierHandler.RecordCashOut)
		r.Delete("/{id}", cashierHandler.DeleteCashOut)
	})

	r.Route("/rake", func(r chi.Router) {
		r.Post("/", cashierHandler.RecordRake)
		r.Delete("/{id}", cashierHandler.DeleteRakeEntry)
	})

	r.Route("/dealer-tips", func(r chi.Router) {
		r.Post("/", cashierHandler.RecordDealerTip)
		r.Delete("/{id}", cashierHandler.DeleteDealerTip)
	})
	r.Post("/dealer-payouts", cashierHandler.RecordDealerPayout)

	r.Route("/credits", func(r chi.Router) {
		r.Post("/", creditHandler.GrantCredit)
		r.Post("/{id}/payments", creditHandler.ReceivePayment)
		r.Get("/{id}/receipts", creditHandler.ListReceipts)
	})

	r.Route("/players", func(r chi.Router) {
		r.Post("/", directoryHandler.CreatePlayer)
		r.Get("/", directoryHandler.ListPlayers)
		r.Get("/{playerID}", directoryHandler.GetPlayer)
		r.Delete("/{playerID}", directoryHandler.DeactivatePlayer)
		r.Get("/{playerID}/debts", creditHandler.ListDebts)
		r.Post("/{playerID}/payments", creditHandler.PayAcrossRecords)
		r.Post("/{playerID}/recompute-balance", creditHandler.RecomputeBalance)
	})

	r.Route("/dealers", func(r chi.Router) {
		r.Post("/", directoryHandler.CreateDealer)
		r.Get("/", directoryHandler.ListDealers)
		r.Get("/{dealerID}/owed", cashierHandler.DealerOwed)
	})

	r.Route("/chip-types", func(r chi.Router) {
		r.Post("/", directoryHandler.CreateChipType)
		r.Get("/", directoryHandler.ListChipTypes)
	})
	r.Post("/chip-inventory/value", sessionHandler.InventoryValue)

	r.Route("/audit", func(r chi.Router) {
		r.Get("/", cashierHandler.AuditLog)
		r.Post("/{id}/undo", cashierHandler.Undo)
	})

	r.Get("/reports/summary", sessionHandler.RangeSummary)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
