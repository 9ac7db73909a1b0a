package server

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"
)

// Routes binds the room API on a ServeMux, wrapped with CORS and access logging.
func Routes(log *slog.Logger, s *ChatServer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.Health)
	mux.HandleFunc("POST /participants", s.Join)
	mux.HandleFunc("GET /participants", s.ListParticipants)
	mux.HandleFunc("POST /status", s.Heartbeat)
	mux.HandleFunc("POST /messages", s.PostMessage)
	mux.HandleFunc("GET /messages", s.ListMessages)
	mux.HandleFunc("PUT /messages/{id}", s.EditMessage)
	mux.HandleFunc("DELETE /messages/{id}", s.DeleteMessage)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", UserHeader},
	})
	return c.Handler(LoggingMiddleware(log, mux))
}
