package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"novaflix/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQL drivers registered by the imported packages.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Config selects the SQL driver and data source.
type Config struct {
	Driver string
	DSN    string
}

// SQLStore keeps accounts in the accounts table and watchlists as ordered rows
// of watchlist_entries.
type SQLStore struct {
	db *sqlx.DB
}

type accountRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Avatar       *string   `db:"avatar"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// NewSQLStore connects and migrates the schema to the latest version.
func NewSQLStore(ctx context.Context, cfg Config) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	if err := migrate(ctx, db.DB, cfg.Driver); err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("[database] connected driver=%s", cfg.Driver)
	return &SQLStore{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB, driver string) error {
	dialect := "sqlite3"
	if driver == DriverPostgres {
		dialect = "postgres"
	}
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *SQLStore) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	return s.findOne(ctx, s.db, `SELECT * FROM accounts WHERE email = ?`, email)
}

func (s *SQLStore) FindByID(ctx context.Context, id string) (models.Account, error) {
	return s.findOne(ctx, s.db, `SELECT * FROM accounts WHERE id = ?`, id)
}

func (s *SQLStore) findOne(ctx context.Context, q sqlx.QueryerContext, query string, arg any) (models.Account, error) {
	var row accountRow
	if err := sqlx.GetContext(ctx, q, &row, s.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("query account: %w", err)
	}

	watchlist := []int64{}
	err := sqlx.SelectContext(ctx, q, &watchlist,
		s.db.Rebind(`SELECT title_id FROM watchlist_entries WHERE account_id = ? ORDER BY position`), row.ID)
	if err != nil {
		return models.Account{}, fmt.Errorf("query watchlist: %w", err)
	}

	return models.Account{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Avatar:       row.Avatar,
		Watchlist:    watchlist,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func (s *SQLStore) Insert(ctx context.Context, account models.Account) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO accounts (id, name, email, password_hash, avatar, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		account.ID, account.Name, account.Email, account.PasswordHash, account.Avatar,
		account.CreatedAt.UTC(), account.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert account: %w", err)
	}
	if err := replaceWatchlist(ctx, tx, account.ID, account.Watchlist); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) UpdateFields(ctx context.Context, id string, update models.AccountUpdate) (models.Account, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Account{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	current, err := s.findOne(ctx, tx, `SELECT * FROM accounts WHERE id = ?`, id)
	if err != nil {
		return models.Account{}, err
	}
	updated := update.Apply(current)

	_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE accounts SET name = ?, email = ?, avatar = ?, updated_at = ? WHERE id = ?`),
		updated.Name, updated.Email, updated.Avatar, updated.UpdatedAt.UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Account{}, ErrDuplicateEmail
		}
		return models.Account{}, fmt.Errorf("update account: %w", err)
	}
	if update.Watchlist != nil {
		if err := replaceWatchlist(ctx, tx, id, updated.Watchlist); err != nil {
			return models.Account{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Account{}, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func replaceWatchlist(ctx context.Context, tx *sqlx.Tx, accountID string, ids []int64) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM watchlist_entries WHERE account_id = ?`), accountID); err != nil {
		return fmt.Errorf("clear watchlist: %w", err)
	}
	insert := tx.Rebind(`INSERT INTO watchlist_entries (account_id, title_id, position) VALUES (?, ?, ?)`)
	for pos, titleID := range ids {
		if _, err := tx.ExecContext(ctx, insert, accountID, titleID, pos); err != nil {
			return fmt.Errorf("insert watchlist entry: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
