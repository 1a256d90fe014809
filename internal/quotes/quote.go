// Package quotes keeps saved quote snapshots and the history, customer and comparison
// views built on them.
package quotes

import (
	"context"
	"errors"
	"time"

	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/rates"
)

// Errors returned by stores and the service.
var (
	ErrNotFound           = errors.New("quote not found")
	ErrClientNameRequired = errors.New("client name is required")
	ErrInvalidStatus      = errors.New("invalid quote status")
	ErrAlreadyExists      = errors.New("quote already exists")
)

// Status is where a quote stands with the client.
type Status string

// Quote statuses. New quotes start pending.
const (
	StatusPending Status = "pending"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// ParseStatus validates s.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusWon, StatusLost:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Quote is an immutable snapshot of an order, the rate table it was priced with and the
// result, so history stays consistent when rates change later.
type Quote struct {
	ID             string          `json:"id"`
	ClientName     string          `json:"client_name"`
	AccountManager string          `json:"account_manager"`
	Status         Status          `json:"status"`
	Order          pricing.Order   `json:"order"`
	Rates          rates.RateTable `json:"rates"`
	Result         pricing.Result  `json:"result"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Store persists quote snapshots as given. Create never replaces an existing quote and
// fails with ErrAlreadyExists instead; Put writes over it. List returns newest first.
type Store interface {
	Create(ctx context.Context, q Quote) error
	Put(ctx context.Context, q Quote) error
	Get(ctx context.Context, id string) (Quote, error)
	List(ctx context.Context) ([]Quote, error)
	Delete(ctx context.Context, id string) error
}
