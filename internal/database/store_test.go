package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"novaflix/models"
)

func newTestAccount(id, email string) models.Account {
	now := time.Now().UTC().Truncate(time.Second)
	avatar := models.DefaultAvatarURL
	return models.Account{
		ID:           id,
		Name:         "User " + id,
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Avatar:       &avatar,
		Watchlist:    []int64{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func setupFileStore(t *testing.T) AccountStore {
	t.Helper()
	store, err := NewFileStore(afero.NewMemMapFs(), "/data")
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	return store
}

func setupSQLiteStore(t *testing.T) AccountStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLStore(context.Background(), Config{Driver: DriverSQLite, DSN: dbPath})
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// setupMongoStore connects to NOVAFLIX_TEST_MONGO_URL and gives each test its
// own database, dropped on cleanup. Without the variable the test is skipped.
func setupMongoStore(t *testing.T) AccountStore {
	t.Helper()
	uri := strings.TrimSpace(os.Getenv("NOVAFLIX_TEST_MONGO_URL"))
	if uri == "" {
		t.Skip("NOVAFLIX_TEST_MONGO_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := fmt.Sprintf("novaflix_test_%d", time.Now().UnixNano())
	store, err := NewMongoStore(ctx, uri, dbName)
	if err != nil {
		t.Fatalf("failed to create mongo store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.users.Database().Drop(context.Background()); err != nil {
			t.Logf("failed to drop %s: %v", dbName, err)
		}
		store.Close()
	})
	return store
}

// forEachStore runs fn against every store. The mongo backend only runs when
// a test server is configured.
func forEachStore(t *testing.T, fn func(t *testing.T, store AccountStore)) {
	t.Run("file", func(t *testing.T) { fn(t, setupFileStore(t)) })
	t.Run("sqlite", func(t *testing.T) { fn(t, setupSQLiteStore(t)) })
	t.Run("mongo", func(t *testing.T) { fn(t, setupMongoStore(t)) })
}

func TestStoreInsertAndFind(t *testing.T) {
	forEachStore(t, func(t *testing.T, store AccountStore) {
		ctx := context.Background()
		account := newTestAccount("a1", "alice@example.com")
		if err := store.Insert(ctx, account); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		byID, err := store.FindByID(ctx, "a1")
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if byID.Email != "alice@example.com" || byID.PasswordHash != account.PasswordHash {
			t.Errorf("unexpected account: %+v", byID)
		}
		if byID.Avatar == nil || *byID.Avatar != models.DefaultAvatarURL {
			t.Errorf("expected default avatar, got %v", byID.Avatar)
		}
		if byID.Watchlist == nil || len(byID.Watchlist) != 0 {
			t.Errorf("expected empty watchlist, got %v", byID.Watchlist)
		}
		if !byID.CreatedAt.Equal(account.CreatedAt) {
			t.Errorf("expected created_at %v, got %v", account.CreatedAt, byID.CreatedAt)
		}

		byEmail, err := store.FindByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("FindByEmail failed: %v", err)
		}
		if byEmail.ID != "a1" {
			t.Errorf("expected id a1, got %q", byEmail.ID)
		}
	})
}

func TestStoreNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, store AccountStore) {
		ctx := context.Background()
		if _, err := store.FindByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByID: expected ErrNotFound, got %v", err)
		}
		if _, err := store.FindByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByEmail: expected ErrNotFound, got %v", err)
		}
		name := "x"
		if _, err := store.UpdateFields(ctx, "missing", models.AccountUpdate{Name: &name}); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateFields: expected ErrNotFound, got %v", err)
		}
	})
}

func TestStoreEmailIsCaseSensitive(t *testing.T) {
	forEachStore(t, func(t *testing.T, store AccountStore) {
		ctx := context.Background()
		if err := store.Insert(ctx, newTestAccount("a1", "Alice@Example.com")); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if _, err := store.FindByEmail(ctx, "alice@example.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected lookup to be case-sensitive, got %v", err)
		}
	})
}

func TestStoreRejectsDuplicateEmail(t *testing.T) {
	forEachStore(t, func(t *testing.T, store AccountStore) {
		ctx := context.Background()
		if err := store.Insert(ctx, newTestAccount("a1", "same@example.com")); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if err := store.Insert(ctx, newTestAccount("a2", "same@example.com")); !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
		if _, err := store.FindByID(ctx, "a2"); !errors.Is(err, ErrNotFound) {
			t.Errorf("rejected account must not be stored, got %v", err)
		}

		if err := store.Insert(ctx, newTestAccount("a3", "other@example.com")); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		taken := "same@example.com"
		if _, err := store.UpdateFields(ctx, "a3", models.AccountUpdate{Email: &taken}); !errors.Is(err, ErrDuplicateEmail) {
			t.Errorf("expected ErrDuplicateEmail on update, got %v", err)
		}
	})
}

func TestStoreUpdateFields(t *testing.T) {
	forEachStore(t, func(t *testing.T, store AccountStore) {
		ctx := context.Background()
		if err := store.Insert(ctx, newTestAccount("a1", "alice@example.com")); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		name := "Alice"
		later := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
		updated, err := store.UpdateFields(ctx, "a1", models.AccountUpdate{Name: &name, UpdatedAt: later})
		if err != nil {
			t.Fatalf("UpdateFields failed: %v", err)
		}
		if updated.Name != "Alice" || updated.Email != "alice@example.com" {
			t.Errorf("unexpected update result: %+v", updated)
		}

		watchlist := []int64{550, 13, 680}
		if _, err := store.UpdateFields(ctx, "a1", models.AccountUpdate{Watchlist: &watchlist}); err != nil {
			t.Fatalf("UpdateFields watchlist failed: %v", err)
		}

		stored, err := store.FindByID(ctx, "a1")
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if stored.Name != "Alice" {
			t.Errorf("expected persisted name, got %q", stored.Name)
		}
		if len(stored.Watchlist) != 3 || stored.Watchlist[0] != 550 || stored.Watchlist[1] != 13 || stored.Watchlist[2] != 680 {
			t.Errorf("expected ordered watchlist, got %v", stored.Watchlist)
		}
		if !stored.UpdatedAt.Equal(later) {
			t.Errorf("expected updated_at %v, got %v", later, stored.UpdatedAt)
		}
	})
}

func TestFileStorePersistsAcrossReload(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewFileStore(fs, "/data")
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()
	if err := store.Insert(ctx, newTestAccount("a1", "alice@example.com")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	watchlist := []int64{42}
	if _, err := store.UpdateFields(ctx, "a1", models.AccountUpdate{Watchlist: &watchlist}); err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}

	if exists, _ := afero.Exists(fs, "/data/accounts.json.tmp"); exists {
		t.Error("temp file should be renamed away")
	}

	reloaded, err := NewFileStore(fs, "/data")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	account, err := reloaded.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail after reload failed: %v", err)
	}
	if len(account.Watchlist) != 1 || account.Watchlist[0] != 42 {
		t.Errorf("expected watchlist [42], got %v", account.Watchlist)
	}
}

func TestFileStoreReturnsDetachedCopies(t *testing.T) {
	store := setupFileStore(t)
	ctx := context.Background()
	account := newTestAccount("a1", "alice@example.com")
	account.Watchlist = []int64{1}
	if err := store.Insert(ctx, account); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	found, _ := store.FindByID(ctx, "a1")
	found.Watchlist[0] = 99

	again, _ := store.FindByID(ctx, "a1")
	if again.Watchlist[0] != 1 {
		t.Fatalf("store state leaked through returned slice: %v", again.Watchlist)
	}
}

func TestNewFileStoreEmptyDir(t *testing.T) {
	if _, err := NewFileStore(afero.NewMemMapFs(), "  "); !errors.Is(err, ErrStorageDirRequired) {
		t.Fatalf("expected ErrStorageDirRequired, got %v", err)
	}
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		store, err := NewSQLStore(context.Background(), Config{Driver: DriverSQLite, DSN: dbPath})
		if err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		store.Close()
	}
}
