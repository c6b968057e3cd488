package auth

import (
	"context"
	"net/http"

	"novaflix/models"
)

// ContextKey is the type used for context keys
type ContextKey string

const (
	// ContextKeyAccountID is the key for the account ID in the context
	ContextKeyAccountID ContextKey = "accountID"
	// ContextKeyAccount is the key for the loaded account in the context
	ContextKeyAccount ContextKey = "account"
)

// WithAccount returns a copy of ctx carrying the authenticated account.
func WithAccount(ctx context.Context, account models.Account) context.Context {
	ctx = context.WithValue(ctx, ContextKeyAccountID, account.ID)
	return context.WithValue(ctx, ContextKeyAccount, account)
}

// GetAccountID retrieves the authenticated account ID from the request context.
func GetAccountID(r *http.Request) string {
	if id, ok := r.Context().Value(ContextKeyAccountID).(string); ok {
		return id
	}
	return ""
}

// GetAccount retrieves the authenticated account loaded by the auth middleware.
func GetAccount(r *http.Request) (models.Account, bool) {
	account, ok := r.Context().Value(ContextKeyAccount).(models.Account)
	return account, ok
}
