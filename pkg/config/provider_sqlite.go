package config

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/chrissnell/pvestimate/pkg/migrate"
	_ "modernc.org/sqlite"
)

// DefaultConfigName is the configuration set the server reads
const DefaultConfigName = "default"

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

//go:embed migrations/*.sql
var migrations embed.FS

// SchemaVersion is the newest configuration schema this build understands
const SchemaVersion = 1

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// InitSchema brings the configuration tables up to SchemaVersion
func (s *SQLiteProvider) InitSchema() error {
	if _, err := s.migrator().Up(context.Background()); err != nil {
		return fmt.Errorf("failed to migrate configuration schema: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied configuration schema version
func (s *SQLiteProvider) SchemaVersion() (int, error) {
	return s.migrator().Version(context.Background())
}

func (s *SQLiteProvider) migrator() *migrate.Migrator {
	return migrate.New(s.db, migrate.FS(migrations, "migrations"))
}

// LoadConfig loads the complete configuration from SQLite database.
// Sections without a row keep their defaults.
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	configID, err := s.configID(DefaultConfigName)
	if err != nil {
		return nil, err
	}

	config := Default()

	if err := s.loadServer(configID, &config.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := s.loadEngine(configID, &config.Engine); err != nil {
		return nil, fmt.Errorf("failed to load engine config: %w", err)
	}
	climate, err := s.loadClimate(configID)
	if err != nil {
		return nil, fmt.Errorf("failed to load climate config: %w", err)
	}
	config.Climate = climate
	if err := s.loadLogging(configID, &config.Logging); err != nil {
		return nil, fmt.Errorf("failed to load logging config: %w", err)
	}

	config.ApplyServerDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (s *SQLiteProvider) configID(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM configs WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no configuration named %q in %s", name, s.dbPath)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query configs: %w", err)
	}
	return id, nil
}

func (s *SQLiteProvider) loadServer(configID int64, server *RESTServerData) error {
	var listenAddr, cert, key sql.NullString
	var port sql.NullInt64
	var enableCORS bool

	err := s.db.QueryRow(`
		SELECT listen_addr, port, tls_cert, tls_key, enable_cors
		FROM server_configs WHERE config_id = ?`, configID,
	).Scan(&listenAddr, &port, &cert, &key, &enableCORS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	if listenAddr.Valid {
		server.ListenAddr = listenAddr.String
	}
	if port.Valid {
		server.Port = int(port.Int64)
	}
	server.Cert = cert.String
	server.Key = key.String
	server.EnableCORS = enableCORS
	return nil
}

func (s *SQLiteProvider) loadEngine(configID int64, engine *EngineData) error {
	var losses, turbidity, albedo sql.NullFloat64

	err := s.db.QueryRow(`
		SELECT losses_percent, turbidity, albedo
		FROM engine_configs WHERE config_id = ?`, configID,
	).Scan(&losses, &turbidity, &albedo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	// NULL columns keep the engine defaults
	if losses.Valid {
		engine.LossesPercent = losses.Float64
	}
	if turbidity.Valid {
		engine.Turbidity = turbidity.Float64
	}
	if albedo.Valid {
		engine.Albedo = albedo.Float64
	}
	return nil
}

func (s *SQLiteProvider) loadClimate(configID int64) (*ClimateDBData, error) {
	var conn string
	err := s.db.QueryRow(`SELECT connection_string FROM climate_configs WHERE config_id = ?`, configID).Scan(&conn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ClimateDBData{ConnectionString: conn}, nil
}

func (s *SQLiteProvider) loadLogging(configID int64, logging *LoggingData) error {
	var file sql.NullString
	var maxSize, maxBackups, maxAge sql.NullInt64

	err := s.db.QueryRow(`
		SELECT debug, file, max_size_mb, max_backups, max_age_days
		FROM logging_configs WHERE config_id = ?`, configID,
	).Scan(&logging.Debug, &file, &maxSize, &maxBackups, &maxAge)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	logging.File = file.String
	logging.MaxSizeMB = int(maxSize.Int64)
	logging.MaxBackups = int(maxBackups.Int64)
	logging.MaxAgeDays = int(maxAge.Int64)
	return nil
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the default configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	if err := configData.Validate(); err != nil {
		return err
	}

	// Start transaction
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.upsertConfig(tx, DefaultConfigName)
	if err != nil {
		return fmt.Errorf("failed to insert config: %w", err)
	}

	for _, table := range []string{"server_configs", "engine_configs", "climate_configs", "logging_configs"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE config_id = ?", configID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	srv := configData.Server
	if _, err := tx.Exec(`
		INSERT INTO server_configs (config_id, listen_addr, port, tls_cert, tls_key, enable_cors)
		VALUES (?, ?, ?, ?, ?, ?)`,
		configID, nullString(srv.ListenAddr), nullInt(srv.Port), nullString(srv.Cert), nullString(srv.Key), srv.EnableCORS,
	); err != nil {
		return fmt.Errorf("failed to insert server config: %w", err)
	}

	eng := configData.Engine
	if _, err := tx.Exec(`
		INSERT INTO engine_configs (config_id, losses_percent, turbidity, albedo)
		VALUES (?, ?, ?, ?)`,
		configID, eng.LossesPercent, eng.Turbidity, eng.Albedo,
	); err != nil {
		return fmt.Errorf("failed to insert engine config: %w", err)
	}

	if configData.Climate != nil {
		if _, err := tx.Exec(`INSERT INTO climate_configs (config_id, connection_string) VALUES (?, ?)`,
			configID, configData.Climate.ConnectionString,
		); err != nil {
			return fmt.Errorf("failed to insert climate config: %w", err)
		}
	}

	lg := configData.Logging
	if _, err := tx.Exec(`
		INSERT INTO logging_configs (config_id, debug, file, max_size_mb, max_backups, max_age_days)
		VALUES (?, ?, ?, ?, ?, ?)`,
		configID, lg.Debug, nullString(lg.File), nullInt(lg.MaxSizeMB), nullInt(lg.MaxBackups), nullInt(lg.MaxAgeDays),
	); err != nil {
		return fmt.Errorf("failed to insert logging config: %w", err)
	}

	// Commit transaction
	return tx.Commit()
}

func (s *SQLiteProvider) upsertConfig(tx *sql.Tx, name string) (int64, error) {
	_, err := tx.Exec(`
		INSERT INTO configs (name) VALUES (?)
		ON CONFLICT(name) DO UPDATE SET updated_at = datetime('now')`, name)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM configs WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Helper functions for handling nullable fields
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(i int) sql.NullInt64 {
	if i == 0 {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: int64(i), Valid: true}
}
