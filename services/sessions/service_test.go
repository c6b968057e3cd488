package sessions

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-signing-secret"

// setupTestService creates a sessions service with a fixed secret.
func setupTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(testSecret, DefaultSessionDuration)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestNewService_DefaultDuration(t *testing.T) {
	for _, d := range []time.Duration{0, -1 * time.Hour} {
		svc, err := NewService(testSecret, d)
		if err != nil {
			t.Fatalf("NewService failed: %v", err)
		}
		if svc.Duration() != DefaultSessionDuration {
			t.Errorf("duration %v: expected default %v, got %v", d, DefaultSessionDuration, svc.Duration())
		}
	}
}

func TestNewService_GeneratesSecret(t *testing.T) {
	first, err := NewService("", DefaultSessionDuration)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	second, err := NewService("  ", DefaultSessionDuration)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if len(first.secret) != generatedSecretLength {
		t.Errorf("expected %d byte secret, got %d", generatedSecretLength, len(first.secret))
	}
	if string(first.secret) == string(second.secret) {
		t.Error("generated secrets should differ")
	}

	session, err := first.Create("account-123")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := second.Validate(session.Token); err != ErrInvalidToken {
		t.Errorf("token signed with another secret should be invalid, got %v", err)
	}
}

func TestCreate_ThenValidate(t *testing.T) {
	svc := setupTestService(t)

	created, err := svc.Create("account-123")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if got := created.ExpiresAt.Sub(created.IssuedAt); got != DefaultSessionDuration {
		t.Errorf("expected validity %v, got %v", DefaultSessionDuration, got)
	}

	session, err := svc.Validate(created.Token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if session.AccountID != "account-123" {
		t.Errorf("expected account-123, got %q", session.AccountID)
	}
	if !session.ExpiresAt.Equal(created.ExpiresAt) {
		t.Errorf("expected expiry %v, got %v", created.ExpiresAt, session.ExpiresAt)
	}
}

func TestCreate_UniqueTokens(t *testing.T) {
	svc := setupTestService(t)

	a, _ := svc.Create("account-123")
	b, _ := svc.Create("account-123")
	if a.Token == b.Token {
		t.Error("expected distinct tokens for separate sessions")
	}
}

func TestCreate_RequiresAccountID(t *testing.T) {
	svc := setupTestService(t)
	if _, err := svc.Create(" "); err != ErrAccountIDRequired {
		t.Errorf("expected ErrAccountIDRequired, got %v", err)
	}
}

func TestValidate_InvalidToken(t *testing.T) {
	svc := setupTestService(t)

	for _, token := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Validate(token); err != ErrInvalidToken {
			t.Errorf("Validate(%q): expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	svc := setupTestService(t)

	created, err := svc.Create("account-123")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	parts := strings.Split(created.Token, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if _, err := svc.Validate(strings.Join(parts, ".")); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := setupTestService(t)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	created, err := svc.Create("account-123")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(DefaultSessionDuration - time.Minute) }
	if _, err := svc.Validate(created.Token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(DefaultSessionDuration + time.Minute) }
	if _, err := svc.Validate(created.Token); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	svc := setupTestService(t)

	claims := jwt.RegisteredClaims{
		Subject:   "account-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Validate(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for HS512, got %v", err)
	}
}

func TestValidate_RequiresExpiryAndSubject(t *testing.T) {
	svc := setupTestService(t)

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "account-123"}).SignedString([]byte(testSecret))
	if _, err := svc.Validate(noExpiry); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken without exp, got %v", err)
	}

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if _, err := svc.Validate(noSubject); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken without sub, got %v", err)
	}
}
