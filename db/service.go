package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"neo-overwatch/pkg/logger"
)

//go:embed schema.sql
var schemaFS embed.FS

// schemaVersion is stored in PRAGMA user_version once schema.sql has run.
const schemaVersion = 1

var catalogTables = []string{"neos", "close_approaches", "import_runs"}

var ErrSchemaOutdated = errors.New("catalog schema is outdated")

// Service is a connection to the sqlite catalog.
type Service struct {
	DB     *sql.DB
	DBPath string
	log    *logger.Logger
}

type Config struct {
	DBPath        string
	MaxOpenConns  int
	BusyTimeoutMS int
	// CreateIfMissing initializes the schema when the file does not exist yet.
	CreateIfMissing bool
}

func DefaultConfig() *Config {
	return &Config{
		DBPath:          "./db/neo.db",
		MaxOpenConns:    1, // single writer
		BusyTimeoutMS:   5000,
		CreateIfMissing: true,
	}
}

func (c *Config) dsn() string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", c.DBPath, c.BusyTimeoutMS)
}

// New opens the catalog at config.DBPath, creating its directory as needed.
func New(config *Config, log *logger.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	log = logger.OrNop(log).With("component", "db")

	_, statErr := os.Stat(config.DBPath)
	fresh := errors.Is(statErr, os.ErrNotExist)

	if err := os.MkdirAll(filepath.Dir(config.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", config.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(config.MaxOpenConns)
	conn.SetMaxIdleConns(config.MaxOpenConns)
	conn.SetConnMaxLifetime(0)

	s := &Service{DB: conn, DBPath: config.DBPath, log: log}

	ctx := context.Background()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if fresh && config.CreateIfMissing {
		log.Info("creating catalog", "path", config.DBPath)
		if err := s.InitializeSchema(ctx); err != nil {
			conn.Close()
			return nil, err
		}
	}

	log.Debug("catalog opened", "path", config.DBPath)
	return s, nil
}

// InitializeSchema runs schema.sql and stamps the schema version.
func (s *Service) InitializeSchema(ctx context.Context) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(schemaSQL)); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
		return nil
	})
}

// VerifySchema checks that every catalog table exists at the current
// schema version.
func (s *Service) VerifySchema(ctx context.Context) error {
	var version int
	if err := s.DB.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version < schemaVersion {
		return fmt.Errorf("%w: version %d, want %d", ErrSchemaOutdated, version, schemaVersion)
	}

	for _, table := range catalogTables {
		var n int
		err := s.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: missing table %s", ErrSchemaOutdated, table)
		}
	}
	return nil
}

// EnsureSchema initializes the schema when verification fails. schema.sql
// only creates missing objects, so existing rows survive.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if err := s.VerifySchema(ctx); err != nil {
		if !errors.Is(err, ErrSchemaOutdated) {
			return err
		}
		s.log.Warn("catalog schema incomplete, initializing", "reason", err)
		return s.InitializeSchema(ctx)
	}
	return nil
}

func (s *Service) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Transaction runs fn in a transaction, committing when it returns nil.
// A panic in fn rolls back and is re-raised.
func (s *Service) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Service) Health(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.DB.PingContext(ctx)
}
