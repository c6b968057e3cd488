package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"novaflix/internal/auth"
	"novaflix/models"
	"novaflix/services/accounts"
	"novaflix/services/sessions"
)

type accountsService interface {
	Register(ctx context.Context, name, email, password string) (models.Account, error)
	Authenticate(ctx context.Context, email, password string) (models.Account, error)
	UpdateProfile(ctx context.Context, id string, update accounts.ProfileUpdate) (models.Account, error)
}

type sessionIssuer interface {
	Create(accountID string) (models.Session, error)
}

var (
	_ accountsService = (*accounts.Service)(nil)
	_ sessionIssuer   = (*sessions.Service)(nil)
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	accounts accountsService
	sessions sessionIssuer
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accountsSvc accountsService, sessionsSvc sessionIssuer) *AuthHandler {
	return &AuthHandler{
		accounts: accountsSvc,
		sessions: sessionsSvc,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "Email already registered")
		case isValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[auth] register failed: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to register")
		}
		return
	}

	h.issue(w, account)
}

// Login authenticates a user and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("[auth] login failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	h.issue(w, account)
}

// Logout only acknowledges; tokens are stateless and dropped by the client.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Successfully logged out"})
}

// Me returns the current authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.GetAccount(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// UpdateProfile changes name, email or avatar of the current account.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)
	if accountID == "" {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req accounts.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accounts.UpdateProfile(r.Context(), accountID, req)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "Email already taken")
		case errors.Is(err, accounts.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case isValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[auth] profile update failed for %s: %v", accountID, err)
			writeError(w, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *AuthHandler) issue(w http.ResponseWriter, account models.Account) {
	session, err := h.sessions.Create(account.ID)
	if err != nil {
		log.Printf("[auth] failed to create session for %s: %v", account.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{
		AccessToken: session.Token,
		TokenType:   sessions.TokenType,
		User:        account,
	})
}

func isValidationError(err error) bool {
	return errors.Is(err, accounts.ErrInvalidName) ||
		errors.Is(err, accounts.ErrInvalidEmail) ||
		errors.Is(err, accounts.ErrWeakPassword) ||
		errors.Is(err, accounts.ErrPasswordTooLong)
}
