package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

type ClientRepository struct {
	DB *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

// Create inserts the client. An empty email is stored as NULL so the unique
// constraint tolerates any number of anonymous draft clients.
func (r *ClientRepository) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clients (id, email, name, phone, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query, c.ID, c.Email, c.Name, c.Phone, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*entity.Client, error) {
	query := `
		SELECT id, COALESCE(email, ''), name, phone, created_at, updated_at
		FROM clients
		WHERE email = $1
	`

	var c entity.Client
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&c.ID, &c.Email, &c.Name, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up client by email: %w", err)
	}
	return &c, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *entity.Client) error {
	query := `
		UPDATE clients
		SET email = NULLIF($2, ''), name = $3, phone = $4, updated_at = $5
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query, c.ID, c.Email, c.Name, c.Phone, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrClientNotFound
	}
	return nil
}
