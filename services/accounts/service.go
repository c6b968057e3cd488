package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"novaflix/internal/database"
	"novaflix/models"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidName        = errors.New("name must be between 1 and 100 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

const (
	MinPasswordLength = 6
	MaxNameLength     = 100
)

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("novaflix-dummy-password"), bcrypt.DefaultCost)
	return hash
})

// ProfileUpdate carries the optional profile fields a user may change.
type ProfileUpdate struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

func (u ProfileUpdate) empty() bool {
	return u.Name == nil && u.Email == nil && u.Avatar == nil
}

// Service implements registration, login and profile management.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account with the default avatar and an empty watchlist.
func (s *Service) Register(ctx context.Context, name, email, password string) (models.Account, error) {
	if err := validateName(name); err != nil {
		return models.Account{}, err
	}
	if err := validateEmail(email); err != nil {
		return models.Account{}, err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return models.Account{}, ErrWeakPassword
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return models.Account{}, ErrDuplicateEmail
	} else if !errors.Is(err, database.ErrNotFound) {
		return models.Account{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return models.Account{}, ErrPasswordTooLong
		}
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	avatar := models.DefaultAvatarURL
	account := models.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Avatar:       &avatar,
		Watchlist:    []int64{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Insert(ctx, account); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, database.ErrDuplicateEmail) {
			return models.Account{}, ErrDuplicateEmail
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

// Authenticate verifies the email and password. Unknown emails and wrong
// passwords produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.Account, error) {
	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return models.Account{}, fmt.Errorf("lookup email: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return models.Account{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id string) (models.Account, error) {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}

// UpdateProfile applies the provided fields. An update with no fields returns
// the account unchanged.
func (s *Service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (models.Account, error) {
	if update.empty() {
		return s.Get(ctx, id)
	}
	if update.Name != nil {
		if err := validateName(*update.Name); err != nil {
			return models.Account{}, err
		}
	}
	if update.Email != nil {
		if err := validateEmail(*update.Email); err != nil {
			return models.Account{}, err
		}
		existing, err := s.store.FindByEmail(ctx, *update.Email)
		switch {
		case err == nil && existing.ID != id:
			return models.Account{}, ErrEmailTaken
		case err != nil && !errors.Is(err, database.ErrNotFound):
			return models.Account{}, fmt.Errorf("lookup email: %w", err)
		}
	}

	account, err := s.store.UpdateFields(ctx, id, models.AccountUpdate{
		Name:      update.Name,
		Email:     update.Email,
		Avatar:    update.Avatar,
		UpdatedAt: s.now(),
	})
	switch {
	case errors.Is(err, database.ErrNotFound):
		return models.Account{}, ErrAccountNotFound
	case errors.Is(err, database.ErrDuplicateEmail):
		return models.Account{}, ErrEmailTaken
	case err != nil:
		return models.Account{}, fmt.Errorf("update profile: %w", err)
	}
	return account, nil
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 1 || n > MaxNameLength {
		return ErrInvalidName
	}
	return nil
}

// validateEmail accepts a bare RFC 5322 address without a display name.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return ErrInvalidEmail
	}
	return nil
}
