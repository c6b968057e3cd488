package sessions

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"

	"novaflix/models"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrAccountIDRequired = errors.New("account id is required")
)

const (
	// DefaultSessionDuration is the default lifetime of a session.
	DefaultSessionDuration = 30 * 24 * time.Hour // 30 days

	// TokenType is reported to clients alongside the access token.
	TokenType = "bearer"

	generatedSecretLength = 64
)

// Service issues and verifies stateless HS256 session tokens. Nothing is
// stored server side, so logout is left to the client.
type Service struct {
	secret          []byte
	sessionDuration time.Duration
	now             func() time.Time
}

// NewService creates a sessions service. When secret is empty a random one is
// generated; tokens then stop validating after a restart.
func NewService(secret string, sessionDuration time.Duration) (*Service, error) {
	if sessionDuration <= 0 {
		sessionDuration = DefaultSessionDuration
	}

	if strings.TrimSpace(secret) == "" {
		generated, err := password.Generate(generatedSecretLength, 10, 0, false, true)
		if err != nil {
			return nil, fmt.Errorf("generate signing secret: %w", err)
		}
		log.Printf("[sessions] WARNING: no JWT secret configured, using a generated one; sessions will not survive a restart")
		secret = generated
	}

	return &Service{
		secret:          []byte(secret),
		sessionDuration: sessionDuration,
		now:             time.Now,
	}, nil
}

// Create issues a token for the given account.
func (s *Service) Create(accountID string) (models.Session, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return models.Session{}, ErrAccountIDRequired
	}

	issued := s.now().Truncate(time.Second)
	expires := issued.Add(s.sessionDuration)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return models.Session{}, fmt.Errorf("sign token: %w", err)
	}

	return models.Session{
		Token:     token,
		AccountID: accountID,
		ExpiresAt: expires,
		IssuedAt:  issued,
	}, nil
}

// Validate verifies the signature and expiry of token and returns its session.
func (s *Service) Validate(token string) (models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Session{}, ErrInvalidToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Session{}, ErrTokenExpired
		}
		return models.Session{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return models.Session{}, ErrInvalidToken
	}

	session := models.Session{
		Token:     token,
		AccountID: claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}

// Duration returns the validity window of new sessions.
func (s *Service) Duration() time.Duration {
	return s.sessionDuration
}
