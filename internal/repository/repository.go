package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/shopspring/decimal"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new back-office user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO backoffice.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM backoffice.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListContracts returns every contract. NULL amounts read as zero and a
// NULL billing frequency reads as empty.
func (r *Repository) ListContracts(ctx context.Context) ([]models.Contract, error) {
	query := `
		SELECT id, client_id, title, status, billing_frequency, amount, start_date, end_date
		FROM crm.contracts
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contracts: %w", err)
	}
	return contracts, nil
}

// ListPipelineClients returns every client with its pipeline stage
func (r *Repository) ListPipelineClients(ctx context.Context) ([]models.Client, error) {
	query := `
		SELECT id, name, COALESCE(country, ''), COALESCE(pipeline_stage, ''), estimated_value
		FROM crm.clients
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (models.Contract, error) {
	var (
		c         models.Contract
		frequency sql.NullString
		amount    decimal.NullDecimal
		start     sql.NullTime
		end       sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.ClientID, &c.Title, &c.Status, &frequency, &amount, &start, &end); err != nil {
		return models.Contract{}, fmt.Errorf("failed to scan contract: %w", err)
	}
	c.BillingFrequency = models.BillingFrequency(frequency.String)
	if amount.Valid {
		c.Amount = amount.Decimal
	}
	if start.Valid {
		c.StartDate = &start.Time
	}
	if end.Valid {
		c.EndDate = &end.Time
	}
	return c, nil
}

func scanClient(row rowScanner) (models.Client, error) {
	var (
		c     models.Client
		value decimal.NullDecimal
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Country, &c.PipelineStage, &value); err != nil {
		return models.Client{}, fmt.Errorf("failed to scan client: %w", err)
	}
	if value.Valid {
		c.EstimatedValue = value.Decimal
	}
	return c, nil
}

// LeadExists reports whether a lead with the session ID is stored
func (r *Repository) LeadExists(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM crm.chat_leads WHERE session_id = $1)`
	if err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to look up lead: %w", err)
	}
	return exists, nil
}

// SaveLead appends the messages of a chat turn to the session transcript,
// creating the lead on the first turn
func (r *Repository) SaveLead(ctx context.Context, lead *models.Lead) error {
	transcript, err := json.Marshal(lead.Transcript)
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	query := `
		INSERT INTO crm.chat_leads (session_id, transcript, created_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (session_id) DO UPDATE SET transcript = crm.chat_leads.transcript || EXCLUDED.transcript
		RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query, lead.SessionID, transcript).Scan(&lead.ID, &lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}
