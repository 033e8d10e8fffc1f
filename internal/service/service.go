package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/advisory-service/internal/chat"
	"github.com/Dan9191/advisory-service/internal/config"
	"github.com/Dan9191/advisory-service/internal/events"
	"github.com/Dan9191/advisory-service/internal/forecast"
	"github.com/Dan9191/advisory-service/internal/integrations/ecb"
	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownCurrency    = errors.New("unknown currency")
)

// Store is the persistence the service needs
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListContracts(ctx context.Context) ([]models.Contract, error)
	ListPipelineClients(ctx context.Context) ([]models.Client, error)
	LeadExists(ctx context.Context, sessionID string) (bool, error)
	SaveLead(ctx context.Context, lead *models.Lead) error
}

// Chatter streams assistant replies
type Chatter interface {
	Stream(ctx context.Context, history []models.ChatMessage, onDelta func(string)) (string, error)
}

// RateSource provides currency rates quoted per euro
type RateSource interface {
	GetRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// LeadNotifier tells the sales team about new conversations
type LeadNotifier interface {
	SendLeadNotification(to string, lead *models.Lead) error
}

// Deps groups the collaborators of Service
type Deps struct {
	Store    Store
	Chat     Chatter
	Rates    RateSource
	Events   events.Publisher
	Notifier LeadNotifier
	Actions  []chat.ActionRule
}

// Service handles business logic
type Service struct {
	deps   Deps
	log    *logrus.Logger
	config *config.Config
	now    func() time.Time
}

// NewService initializes a new service
func NewService(deps Deps, log *logrus.Logger, cfg *config.Config) *Service {
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	return &Service{deps: deps, log: log, config: cfg, now: time.Now}
}

// Register creates a new back-office user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.deps.Store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// EnsureAdmin creates the bootstrap account unless a user with that email
// already exists
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if _, err := s.deps.Store.FindUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email))); err == nil {
		s.log.Debugf("Admin account already present: %s", email)
		return nil
	}
	if _, err := s.Register(ctx, username, email, password); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	return nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.deps.Store.FindUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// Forecast computes next-year revenue in the base currency
func (s *Service) Forecast(ctx context.Context) (models.Forecast, error) {
	contracts, err := s.deps.Store.ListContracts(ctx)
	if err != nil {
		return models.Forecast{}, err
	}
	clients, err := s.deps.Store.ListPipelineClients(ctx)
	if err != nil {
		return models.Forecast{}, err
	}

	f := forecast.Compute(contracts, clients)
	s.log.WithFields(logrus.Fields{
		"contracts": len(contracts),
		"clients":   len(clients),
		"total":     f.Total.StringFixed(2),
	}).Debug("Forecast computed")
	return f, nil
}

// ForecastIn computes the forecast and converts it to the given currency
func (s *Service) ForecastIn(ctx context.Context, currency string) (models.Forecast, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	f, err := s.Forecast(ctx)
	if err != nil {
		return models.Forecast{}, err
	}
	if currency == "" || currency == forecast.BaseCurrency {
		return f, nil
	}
	if s.deps.Rates == nil {
		return models.Forecast{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}

	rates, err := s.deps.Rates.GetRates(ctx)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("failed to get exchange rates: %w", err)
	}
	rate, ok := rates[currency]
	if !ok {
		return models.Forecast{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}
	return ecb.Convert(f, rate, currency), nil
}

// ChatResult is the outcome of a completed chat turn
type ChatResult struct {
	SessionID string          `json:"session_id"`
	Reply     string          `json:"reply"`
	Actions   []models.Action `json:"actions"`
}

// Chat relays a conversation to the assistant. Deltas are passed to onDelta
// as they arrive. Session IDs are issued here: a client-supplied ID is kept
// only when a lead with that ID already exists. The finished turn is appended
// to the lead transcript.
func (s *Service) Chat(ctx context.Context, sessionID string, history []models.ChatMessage, onDelta func(string)) (*ChatResult, error) {
	if err := validateHistory(history); err != nil {
		return nil, err
	}
	sessionID, fresh := s.resolveSession(ctx, sessionID)
	if limit := s.config.ChatMaxMessages; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	started := s.now()
	reply, err := s.deps.Chat.Stream(ctx, history, onDelta)
	event := models.AnalyticsEvent{
		Name:         events.ChatCompleted,
		SessionID:    sessionID,
		MessageCount: len(history),
		ReplyLength:  len(reply),
		LatencyMS:    s.now().Sub(started).Milliseconds(),
		OccurredAt:   s.now().UTC(),
	}
	if err != nil {
		event.Name = events.ChatFailed
		event.Error = err.Error()
		s.publish(ctx, event)
		s.log.WithField("session_id", sessionID).Warnf("Chat turn failed: %v", err)
		return nil, err
	}

	actions := chat.ExtractActions(reply, s.deps.Actions)
	event.ActionCount = len(actions)
	s.publish(ctx, event)

	turn := []models.ChatMessage{
		history[len(history)-1],
		{Role: "assistant", Content: reply},
	}
	lead := &models.Lead{SessionID: sessionID, Transcript: turn}
	if err := s.deps.Store.SaveLead(ctx, lead); err != nil {
		s.log.WithField("session_id", sessionID).Errorf("Failed to save lead: %v", err)
	} else if fresh && s.deps.Notifier != nil && s.config.ReportRecipient != "" {
		if err := s.deps.Notifier.SendLeadNotification(s.config.ReportRecipient, lead); err != nil {
			s.log.WithField("session_id", sessionID).Warnf("Failed to notify about lead: %v", err)
		}
	}

	return &ChatResult{SessionID: sessionID, Reply: reply, Actions: actions}, nil
}

// resolveSession returns the session ID to use and whether it was just issued
func (s *Service) resolveSession(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		return uuid.NewString(), true
	}
	exists, err := s.deps.Store.LeadExists(ctx, sessionID)
	if err != nil {
		s.log.WithField("session_id", sessionID).Warnf("Failed to look up session: %v", err)
		return uuid.NewString(), true
	}
	if !exists {
		s.log.WithField("session_id", sessionID).Debug("Unknown session ID replaced")
		return uuid.NewString(), true
	}
	return sessionID, false
}

func (s *Service) publish(ctx context.Context, event models.AnalyticsEvent) {
	if err := s.deps.Events.Publish(ctx, event); err != nil {
		s.log.Warnf("Failed to publish analytics event %s: %v", event.Name, err)
	}
}

func validateHistory(history []models.ChatMessage) error {
	if len(history) == 0 {
		return fmt.Errorf("%w: messages are required", ErrInvalidInput)
	}
	for i, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidInput, i, m.Role)
		}
	}
	last := history[len(history)-1]
	if last.Role != "user" || strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("%w: last message must be a non-empty user message", ErrInvalidInput)
	}
	return nil
}
