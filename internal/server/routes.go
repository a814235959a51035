package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/Tomlord1122/tudu-backend/internal/web"
)

const maxBodyBytes = 1 << 20

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(recoverer)

	// cors treats an empty origin list as "allow all", so the handler is
	// only installed when origins are configured.
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS", "PATCH"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.healthHandler)

	r.Route("/todos", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.listTodosHandler)
		r.Post("/", s.createTodoHandler)
		r.Get("/{id}", s.getTodoHandler)
		r.Patch("/{id}", s.updateTodoHandler)
		r.Delete("/{id}", s.deleteTodoHandler)
	})

	client := web.Handler()
	r.Get("/", client.ServeHTTP)
	r.Get("/welcome", client.ServeHTTP)
	r.Get("/static/*", client.ServeHTTP)

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

// readBody returns the raw request body. Parsing is left to the service so
// that identity is resolved before the payload is looked at.
func readBody(w http.ResponseWriter, r *http.Request, action string) (json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithServiceError(w, r, fmt.Errorf("reading body: %w", err), action)
		return nil, false
	}
	return body, true
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todoService.ListTodos(r.Context(), sessionEmail(r))
	if err != nil {
		respondWithServiceError(w, r, err, "fetching todos")
		return
	}

	respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, "creating todo")
	if !ok {
		return
	}

	todo, err := s.todoService.CreateTodo(r.Context(), sessionEmail(r), body)
	if err != nil {
		respondWithServiceError(w, r, err, "creating todo")
		return
	}

	respondWithJSON(w, http.StatusCreated, todo)
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todoService.GetTodo(r.Context(), sessionEmail(r), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, err, "fetching todo")
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, "updating todo")
	if !ok {
		return
	}

	todo, err := s.todoService.UpdateTodo(r.Context(), sessionEmail(r), chi.URLParam(r, "id"), body)
	if err != nil {
		respondWithServiceError(w, r, err, "updating todo")
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	err := s.todoService.DeleteTodo(r.Context(), sessionEmail(r), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, err, "deleting todo")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted successfully"})
}
