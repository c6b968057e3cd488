package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"novaflix/config"
	"novaflix/models"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// AccountStore persists accounts together with their watchlists. Emails are
// unique and compared exactly as stored.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	FindByID(ctx context.Context, id string) (models.Account, error)
	Insert(ctx context.Context, account models.Account) error
	UpdateFields(ctx context.Context, id string, update models.AccountUpdate) (models.Account, error)
	Close() error
}

// Open connects the store selected by settings.Driver.
func Open(ctx context.Context, settings config.StoreSettings) (AccountStore, error) {
	switch settings.Driver {
	case config.StoreFile:
		return NewFileStore(afero.NewOsFs(), settings.DataDir)
	case config.StoreSQLite:
		dsn := settings.DatabaseURL
		if dsn == "" {
			dsn = filepath.Join(settings.DataDir, "novaflix.db")
		}
		return NewSQLStore(ctx, Config{Driver: DriverSQLite, DSN: dsn})
	case config.StorePostgres:
		return NewSQLStore(ctx, Config{Driver: DriverPostgres, DSN: settings.DatabaseURL})
	case config.StoreMongo:
		return NewMongoStore(ctx, settings.MongoURL, settings.MongoDatabase)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStoreDriver, settings.Driver)
	}
}
