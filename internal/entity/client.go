package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrClientNotFound = errors.New("client not found")

// Client is the requester identity. Email is the natural key: a later sale
// carrying a known email reuses the row and may refresh name/phone.
type Client struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewClient(email, name, phone string) *Client {
	now := time.Now().UTC()
	return &Client{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type ClientRepository interface {
	Create(ctx context.Context, c *Client) error
	FindByEmail(ctx context.Context, email string) (*Client, error)
	Update(ctx context.Context, c *Client) error
}
