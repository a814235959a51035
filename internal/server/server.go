package server

import (
	"fmt"
	"net/http"

	"github.com/Tomlord1122/tudu-backend/internal/auth"
	"github.com/Tomlord1122/tudu-backend/internal/config"
	"github.com/Tomlord1122/tudu-backend/internal/database"
	"github.com/Tomlord1122/tudu-backend/internal/service"
)

type Server struct {
	port           int
	allowedOrigins []string
	todoService    service.TodoService
	db             database.Service
	sessions       auth.SessionResolver
}

func NewServer(cfg config.ServerConfig, todoService service.TodoService, dbService database.Service, sessions auth.SessionResolver) *http.Server {
	appServer := &Server{
		port:           cfg.Port,
		allowedOrigins: cfg.AllowedOrigins,
		todoService:    todoService,
		db:             dbService,
		sessions:       sessions,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server
}
