package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Store drivers understood by the account store factory.
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

const (
	DefaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	DefaultTMDBImageBaseURL = "https://image.tmdb.org/t/p"
	DefaultTMDBTimeout      = 10 * time.Second
	DefaultSessionDuration  = 30 * 24 * time.Hour
	DefaultEnrichWorkers    = 8
	DefaultPort             = 8001
)

var (
	ErrUnknownStoreDriver = errors.New("unknown store driver")
	ErrMissingSetting     = errors.New("missing required setting")
)

// TMDBSettings configures the upstream catalog client.
type TMDBSettings struct {
	APIKey            string        `yaml:"apiKey"`
	BackupAPIKeys     []string      `yaml:"backupApiKeys"`
	BaseURL           string        `yaml:"baseUrl"`
	ImageBaseURL      string        `yaml:"imageBaseUrl"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
}

// Keys returns the credentials in the order they should be tried.
func (t TMDBSettings) Keys() []string {
	keys := make([]string, 0, 1+len(t.BackupAPIKeys))
	for _, k := range append([]string{t.APIKey}, t.BackupAPIKeys...) {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// StoreSettings selects and configures the account store.
type StoreSettings struct {
	Driver        string `yaml:"driver"`
	DataDir       string `yaml:"dataDir"`
	DatabaseURL   string `yaml:"databaseUrl"`
	MongoURL      string `yaml:"mongoUrl"`
	MongoDatabase string `yaml:"mongoDatabase"`
}

// LogSettings configures structured logging.
type LogSettings struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Config struct {
	Port            int           `yaml:"port"`
	TMDB            TMDBSettings  `yaml:"tmdb"`
	Store           StoreSettings `yaml:"store"`
	Log             LogSettings   `yaml:"log"`
	JWTSecret       string        `yaml:"jwtSecret"`
	SessionDuration time.Duration `yaml:"sessionDuration"`
	EnrichWorkers   int           `yaml:"enrichWorkers"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port: DefaultPort,
		TMDB: TMDBSettings{
			BaseURL:      DefaultTMDBBaseURL,
			ImageBaseURL: DefaultTMDBImageBaseURL,
			Timeout:      DefaultTMDBTimeout,
		},
		Store: StoreSettings{
			Driver:        StoreFile,
			DataDir:       "./data",
			MongoDatabase: "novaflix",
		},
		Log:             LogSettings{Level: "info"},
		SessionDuration: DefaultSessionDuration,
		EnrichWorkers:   DefaultEnrichWorkers,
		CORSOrigins:     []string{"*"},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE and the environment (including a local .env file), in that order.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[config] WARNING: failed to read .env: %v", err)
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

// mergeEnv overlays environment variables onto c. lookup is os.LookupEnv outside tests.
func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = splitList(v)
		}
	}

	var errs []error
	parse := func(key string, apply func(string) error) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		if err := apply(strings.TrimSpace(v)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	parse("PORT", func(v string) error { return assign(cast.ToIntE, v, &c.Port) })
	str("TMDB_API_KEY", &c.TMDB.APIKey)
	list("TMDB_BACKUP_API_KEYS", &c.TMDB.BackupAPIKeys)
	str("TMDB_BASE_URL", &c.TMDB.BaseURL)
	str("TMDB_IMAGE_BASE_URL", &c.TMDB.ImageBaseURL)
	parse("TMDB_TIMEOUT", func(v string) error { return assign(cast.ToDurationE, v, &c.TMDB.Timeout) })
	parse("TMDB_REQUESTS_PER_SECOND", func(v string) error {
		return assign(cast.ToFloat64E, v, &c.TMDB.RequestsPerSecond)
	})
	parse("ENRICH_WORKERS", func(v string) error { return assign(cast.ToIntE, v, &c.EnrichWorkers) })
	str("JWT_SECRET", &c.JWTSecret)
	parse("SESSION_DURATION", func(v string) error { return assign(cast.ToDurationE, v, &c.SessionDuration) })
	str("STORE_DRIVER", &c.Store.Driver)
	str("DATA_DIR", &c.Store.DataDir)
	str("DATABASE_URL", &c.Store.DatabaseURL)
	str("MONGO_URL", &c.Store.MongoURL)
	str("DB_NAME", &c.Store.MongoDatabase)
	list("CORS_ORIGINS", &c.CORSOrigins)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)

	return errors.Join(errs...)
}

// Validate checks that the selected store driver has what it needs.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case StoreFile:
		if c.Store.DataDir == "" {
			return fmt.Errorf("%w: DATA_DIR", ErrMissingSetting)
		}
	case StoreSQLite:
		if c.Store.DatabaseURL == "" && c.Store.DataDir == "" {
			return fmt.Errorf("%w: DATABASE_URL or DATA_DIR", ErrMissingSetting)
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingSetting)
		}
	case StoreMongo:
		if c.Store.MongoURL == "" {
			return fmt.Errorf("%w: MONGO_URL", ErrMissingSetting)
		}
		if c.Store.MongoDatabase == "" {
			return fmt.Errorf("%w: DB_NAME", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreDriver, c.Store.Driver)
	}
	if c.EnrichWorkers <= 0 {
		c.EnrichWorkers = DefaultEnrichWorkers
	}
	if c.SessionDuration <= 0 {
		c.SessionDuration = DefaultSessionDuration
	}
	if c.TMDB.Timeout <= 0 {
		c.TMDB.Timeout = DefaultTMDBTimeout
	}
	return nil
}

// assign converts v and stores it in dst only when conversion succeeds.
func assign[T any](conv func(any) (T, error), v string, dst *T) error {
	out, err := conv(v)
	if err != nil {
		return err
	}
	*dst = out
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
