package accounts

import (
	"context"

	"novaflix/models"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Store is the persistence the account and watchlist services need.
// Implementations report database.ErrNotFound and database.ErrDuplicateEmail.
type Store interface {
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	FindByID(ctx context.Context, id string) (models.Account, error)
	Insert(ctx context.Context, account models.Account) error
	UpdateFields(ctx context.Context, id string, update models.AccountUpdate) (models.Account, error)
}
