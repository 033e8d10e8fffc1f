package handler

import (
	"net/http"

	"github.com/Dan9191/advisory-service/internal/config"
	"github.com/Dan9191/advisory-service/internal/middleware"
	"github.com/gorilla/mux"
)

// Router wires the public and admin routes
func (h *Handler) Router(cfg *config.Config) http.Handler {
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/chat", h.Chat).Methods("POST")
	// Admin routes
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.HandleFunc("/register", h.Register).Methods("POST")
	admin.HandleFunc("/forecast", h.Forecast).Methods("GET")
	return r
}
