// Package domain contains the customer directory snapshot models.
package domain

import (
	"context"
	"errors"
)

type Customer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
	Address      string `json:"address,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// CustomerPatch carries the updatable fields; nil means leave unchanged.
type CustomerPatch struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	BusinessName *string `json:"business_name,omitempty"`
	Address      *string `json:"address,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

var (
	ErrNotFound    = errors.New("customer_not_found")
	ErrInvalidName = errors.New("invalid_name")
)

// Service is the customer directory snapshot plus the optimistic
// mutations the customer screens need. Update and Delete apply locally
// first and roll back in full if the remote call fails.
type Service interface {
	Refresh(ctx context.Context) (RefreshResult, error)
	List() []Customer
	Find(id string) (Customer, bool)
	Update(ctx context.Context, id string, patch CustomerPatch) (Customer, error)
	Delete(ctx context.Context, id string) error
}

// RefreshResult mirrors the catalog shape; kept separate so the two
// snapshot domains stay independent.
type RefreshResult struct {
	Count   int    `json:"count"`
	Source  string `json:"source"`
	Warning string `json:"warning,omitempty"`
}

const (
	SourceUpstream = "upstream"
	SourceHistory  = "history"
	SourceMemory   = "memory"
)
