package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/rs/cors"

	cfg "github.com/vertice/banking-demo/backend/config"
	"github.com/vertice/banking-demo/backend/internal/handlers"
	"github.com/vertice/banking-demo/backend/internal/usecases"
	"github.com/vertice/banking-demo/backend/internal/usecases/repository"
	"github.com/vertice/banking-demo/backend/pkg/database"
)

// Server timeout constants.
const (
	readTimeoutSeconds     = 15
	writeTimeoutSeconds    = 15
	idleTimeoutSeconds     = 60
	shutdownTimeoutSeconds = 5
)

func main() {
	time.Local = time.UTC

	config, err := cfg.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if config.App.Debug {
		opts.Level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	logger.Info("Starting application",
		"name", config.App.Name,
		"environment", config.App.Environment,
		"debug", config.App.Debug,
		"server_port", config.HTTP.Port)

	// Connect to Database
	pg, err := database.New(config,
		database.MaxPoolSize(config.DB.PoolMax),
		database.ConnTimeout(config.DB.ConnectTimeout),
		database.HealthCheckPeriod(config.DB.HealthCheckPeriod),
		database.Isolation(pgx.ReadCommitted),
	)
	if err != nil {
		logger.Error("postgres connection failed", slog.String("error", err.Error()))
		return
	}
	defer pg.Close()

	migrationsPath := resolveMigrationsPath()
	logger.Info("Running database migrations", "path", migrationsPath)
	if err = database.RunMigrations(logger, config.DB.DatabaseURL, migrationsPath); err != nil {
		logger.Error("Failed to run database migrations", "error", err)
		log.Fatal(err)
	}

	// Create repositories
	accountsRepository := repository.NewAccountsRepository(logger, pg)
	ordersRepository := repository.NewOrdersRepository(logger, pg)
	transactionsRepository := repository.NewTransactionsRepository(logger, pg)
	walletsRepository := repository.NewWalletsRepository(logger, pg)

	// The activity feed hub doubles as the transaction event sink.
	websocketManager := handlers.NewWebSocketManager(logger)

	otpSeed := config.Demo.OTPSeed
	if otpSeed == 0 {
		otpSeed = uint64(time.Now().UnixNano())
	}
	otpSource := usecases.NewSeededOTPSource(otpSeed)

	// Create usecases
	accountService := usecases.NewAccountService(accountsRepository, transactionsRepository)
	orderService := usecases.NewOrderService(logger, accountsRepository, ordersRepository,
		transactionsRepository, pg.Transactor, otpSource, websocketManager)
	walletService := usecases.NewWalletService(logger, accountsRepository, walletsRepository,
		transactionsRepository, pg.Transactor, websocketManager, config.Demo.BaseURL)

	// Create handlers
	httpHandler := handlers.NewHTTPHandler(logger, accountService, orderService, walletService)
	wsHandler := handlers.NewWebSocketHandler(logger, accountService, websocketManager)

	// Create router; websocket routes go first, the static catch-all last.
	router := mux.NewRouter()
	wsHandler.RegisterRoutes(router)
	httpHandler.RegisterRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	server := &http.Server{
		Addr:         ":" + config.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  readTimeoutSeconds * time.Second,
		WriteTimeout: writeTimeoutSeconds * time.Second,
		IdleTimeout:  idleTimeoutSeconds * time.Second,
	}

	go func() {
		logger.Info("Starting server", "address", server.Addr)
		if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeoutSeconds*time.Second)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return
	}

	logger.Info("Server exited properly")
}

// resolveMigrationsPath finds the migrations directory relative to the
// working directory, falling back one level up for `go run ./cmd/...`
// from a subdirectory.
func resolveMigrationsPath() string {
	migrationsPath := "./migrations"
	if workDir, err := os.Getwd(); err == nil {
		if _, err := os.Stat(filepath.Join(workDir, "migrations")); !os.IsNotExist(err) {
			migrationsPath = filepath.Join(workDir, "migrations")
		} else if _, err := os.Stat(filepath.Join(workDir, "..", "migrations")); !os.IsNotExist(err) {
			migrationsPath = filepath.Join(workDir, "..", "migrations")
		}
	}

	return migrationsPath
}
