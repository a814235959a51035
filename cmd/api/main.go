package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Tomlord1122/tudu-backend/internal/auth"
	"github.com/Tomlord1122/tudu-backend/internal/config"
	"github.com/Tomlord1122/tudu-backend/internal/database"
	"github.com/Tomlord1122/tudu-backend/internal/logger"
	"github.com/Tomlord1122/tudu-backend/internal/repository"
	"github.com/Tomlord1122/tudu-backend/internal/server"
	"github.com/Tomlord1122/tudu-backend/internal/service"
)

type store struct {
	db    database.Service
	todos repository.TodoRepository
	users repository.UserRepository
}

// openStore connects to the backend selected by cfg.Driver.
func openStore(cfg config.DatabaseConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &store{
			db:    db,
			todos: repository.NewSQLiteTodoRepository(db.DB()),
			users: repository.NewSQLiteUserRepository(db.DB()),
		}, nil
	case config.DriverPostgres:
		db, err := database.NewPostgres(cfg)
		if err != nil {
			return nil, err
		}
		return &store{
			db:    db,
			todos: repository.NewGormTodoRepository(db.DB()),
			users: repository.NewGormUserRepository(db.DB()),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func gracefulShutdown(apiServer *http.Server, dbService database.Service, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// The server has 5 seconds to finish the requests it is currently handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := dbService.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection pool")
	} else {
		log.Info().Msg("Database connection pool closed")
	}

	done <- true
}

func main() {
	cfg, err := config.Load(os.Getenv("TUDU_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.Log)

	st, err := openStore(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open database")
	}

	todoService := service.NewTodoService(st.todos, st.users)
	apiServer := server.NewServer(cfg.Server, todoService, st.db, auth.NewProvider(cfg.Auth))

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, st.db, done)

	log.Info().Str("addr", apiServer.Addr).Str("driver", cfg.Database.Driver).Msg("Starting server")
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	<-done
	log.Info().Msg("Graceful shutdown complete")
}
