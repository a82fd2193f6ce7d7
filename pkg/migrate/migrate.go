// Package migrate applies forward-only, versioned SQL migrations to a
// SQLite database/sql handle. Each migration runs in its own transaction together
// with the row that records it.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrSchemaTooNew is returned when the database records a version newer than
// any migration this build carries
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

// Migration is one numbered schema change
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Source lists migrations in ascending version order
type Source interface {
	Migrations() ([]Migration, error)
}

// Migrator brings a database up to the newest migration of its Source
type Migrator struct {
	db     *sql.DB
	source Source
	table  string
	logger *zap.SugaredLogger
}

// Option configures a Migrator
type Option func(*Migrator)

// WithTable names the version tracking table (default schema_migrations)
func WithTable(name string) Option {
	return func(m *Migrator) { m.table = name }
}

// WithLogger reports each applied migration
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(m *Migrator) { m.logger = logger }
}

// New creates a migrator
func New(db *sql.DB, source Source, opts ...Option) *Migrator {
	m := &Migrator{
		db:     db,
		source: source,
		table:  "schema_migrations",
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Up applies every pending migration and returns how many ran
func (m *Migrator) Up(ctx context.Context) (int, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}

	for i, mig := range pending {
		if err := m.apply(ctx, mig); err != nil {
			return i, fmt.Errorf("failed to apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		m.logger.Infow("applied migration", "version", mig.Version, "name", mig.Name, "table", m.table)
	}
	return len(pending), nil
}

// Version returns the newest applied migration, 0 for an empty database
func (m *Migrator) Version(ctx context.Context) (int, error) {
	if err := m.createTable(ctx); err != nil {
		return 0, err
	}

	var version int
	q := fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s", m.table)
	if err := m.db.QueryRowContext(ctx, q).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// Pending returns the migrations Up would apply
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	current, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}

	migrations, err := m.source.Migrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	latest := 0
	if len(migrations) > 0 {
		latest = migrations[len(migrations)-1].Version
	}
	if current > latest {
		return nil, fmt.Errorf("%w: at version %d, newest known is %d", ErrSchemaTooNew, current, latest)
	}

	var pending []Migration
	for _, mig := range migrations {
		if mig.Version > current {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return err
	}

	record := fmt.Sprintf("INSERT INTO %s (version, name) VALUES (?, ?)", m.table)
	if _, err := tx.ExecContext(ctx, record, mig.Version, mig.Name); err != nil {
		return fmt.Errorf("failed to record version: %w", err)
	}

	return tx.Commit()
}

func (m *Migrator) createTable(ctx context.Context) error {
	q := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`, m.table)

	if _, err := m.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	return nil
}
