package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"novaflix/models"
)

var ErrStorageDirRequired = errors.New("storage directory not provided")

// FileStore keeps every account in a single JSON document. Writes replace the
// document atomically through a temp file.
type FileStore struct {
	mu       sync.RWMutex
	fs       afero.Fs
	path     string
	accounts map[string]models.Account
}

// NewFileStore loads accounts.json from storageDir, creating the directory if needed.
func NewFileStore(fs afero.Fs, storageDir string) (*FileStore, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := fs.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create accounts dir: %w", err)
	}

	store := &FileStore{
		fs:       fs,
		path:     filepath.Join(storageDir, "accounts.json"),
		accounts: make(map[string]models.Account),
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileStore) FindByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return models.Account{}, ErrNotFound
}

func (s *FileStore) FindByID(_ context.Context, id string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	return cloneAccount(account), nil
}

func (s *FileStore) Insert(_ context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTakenLocked(account.Email, "") {
		return ErrDuplicateEmail
	}
	s.accounts[account.ID] = cloneAccount(account)

	if err := s.saveLocked(); err != nil {
		delete(s.accounts, account.ID)
		return err
	}
	return nil
}

func (s *FileStore) UpdateFields(_ context.Context, id string, update models.AccountUpdate) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.accounts[id]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	if update.Email != nil && s.emailTakenLocked(*update.Email, id) {
		return models.Account{}, ErrDuplicateEmail
	}

	updated := update.Apply(previous)
	s.accounts[id] = updated
	if err := s.saveLocked(); err != nil {
		s.accounts[id] = previous
		return models.Account{}, err
	}
	return cloneAccount(updated), nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) emailTakenLocked(email, exceptID string) bool {
	for _, a := range s.accounts {
		if a.ID != exceptID && a.Email == email {
			return true
		}
	}
	return false
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.fs.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open accounts file: %w", err)
	}
	defer file.Close()

	var stored []models.AccountStorage
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("decode accounts: %w", err)
	}

	s.accounts = make(map[string]models.Account, len(stored))
	for _, accountStorage := range stored {
		if strings.TrimSpace(accountStorage.ID) == "" {
			continue
		}
		account := accountStorage.ToAccount()
		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now().UTC()
		}
		if account.UpdatedAt.IsZero() {
			account.UpdatedAt = account.CreatedAt
		}
		s.accounts[account.ID] = account
	}
	return nil
}

func (s *FileStore) saveLocked() error {
	storage := make([]models.AccountStorage, 0, len(s.accounts))
	for _, account := range s.accounts {
		storage = append(storage, account.ToStorage())
	}
	sort.Slice(storage, func(i, j int) bool {
		return storage[i].CreatedAt.Before(storage[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create accounts temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(storage); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode accounts: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync accounts: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close accounts temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}
	return nil
}

// cloneAccount detaches the watchlist from the cached copy.
func cloneAccount(a models.Account) models.Account {
	a.Watchlist = append(make([]int64, 0, len(a.Watchlist)), a.Watchlist...)
	return a
}
