package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Dan9191/advisory-service/internal/chat"
	"github.com/Dan9191/advisory-service/internal/middleware"
	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/Dan9191/advisory-service/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type chatRequest struct {
	SessionID string               `json:"session_id"`
	Messages  []models.ChatMessage `json:"messages"`
}

// Register handles back-office user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Errorf("Register failed: %v", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.log.Errorf("Login failed: %v", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Forecast returns the revenue forecast, optionally converted with ?currency=
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.ForecastIn(r.Context(), r.URL.Query().Get("currency"))
	if errors.Is(err, service.ErrUnknownCurrency) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Errorf("Forecast failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compute forecast")
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	h.log.WithField("user_id", userID).Debug("Forecast served")
	writeJSON(w, http.StatusOK, f)
}

// Chat streams the assistant reply as server-sent events
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, _ := w.(http.Flusher)
	started := false
	start := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
	}
	send := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			h.log.Errorf("Failed to encode chat event: %v", err)
			return
		}
		if event != "" {
			fmt.Fprintf(w, "event: %s\n", event)
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		if flusher != nil {
			flusher.Flush()
		}
	}

	res, err := h.svc.Chat(r.Context(), req.SessionID, req.Messages, func(delta string) {
		start()
		send("", deltaEvent(delta))
	})
	if err != nil {
		if started {
			send("error", map[string]string{"error": chat.UserMessage(err)})
			fmt.Fprint(w, "data: [DONE]\n\n")
			return
		}
		writeError(w, chatStatus(err), chatErrorMessage(err))
		return
	}

	start()
	send("actions", res)
	fmt.Fprint(w, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type streamDelta struct {
	Choices []streamChoice `json:"choices"`
}

type streamChoice struct {
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
}

func deltaEvent(content string) streamDelta {
	var c streamChoice
	c.Delta.Content = content
	return streamDelta{Choices: []streamChoice{c}}
}

func chatStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, chat.ErrQuotaExceeded):
		return http.StatusPaymentRequired
	default:
		return http.StatusBadGateway
	}
}

func chatErrorMessage(err error) string {
	if errors.Is(err, service.ErrInvalidInput) {
		return err.Error()
	}
	return chat.UserMessage(err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
