// Package climatedb stores measured monthly sky clearness normals in
// PostgreSQL and turns them into an immutable solar.ClimateTable.
package climatedb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chrissnell/pvestimate/internal/database"
	"github.com/chrissnell/pvestimate/pkg/solar"
	"github.com/jackc/pgtype"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClimateNormal is one latitude band of clearness normals
type ClimateNormal struct {
	gorm.Model

	LatitudeCenter float64      `gorm:"uniqueIndex;not null"`
	HalfWidth      float64      `gorm:"not null"`
	Source         string       `gorm:"default:''"`
	Clearness      pgtype.JSONB `gorm:"type:jsonb;default:'[]';not null"`
}

// TableName implements the GORM Tabler interface to specify the correct table name
func (ClimateNormal) TableName() string {
	return "climate_normals"
}

// Store reads and writes climate normals
type Store struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// Open connects to PostgreSQL
func Open(connectionString string, logger *zap.SugaredLogger) (*Store, error) {
	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to climate database: %w", err)
	}
	return NewStore(db, logger), nil
}

// NewStore wraps an existing gorm handle
func NewStore(db *gorm.DB, logger *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate creates the climate_normals table if needed
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&ClimateNormal{})
}

// LoadTable reads every band and builds a ClimateTable. The table is built
// once at startup; estimates never touch the database.
func (s *Store) LoadTable(ctx context.Context) (solar.ClimateTable, error) {
	var rows []ClimateNormal
	if err := s.db.WithContext(ctx).Order("latitude_center").Find(&rows).Error; err != nil {
		return solar.ClimateTable{}, fmt.Errorf("error reading climate normals: %w", err)
	}

	table, err := TableFromRecords(rows)
	if err != nil {
		return solar.ClimateTable{}, err
	}
	s.logger.Infof("loaded %d climate normal bands", table.Len())
	return table, nil
}

// Upsert writes bands, replacing any band with the same latitude center.
// Re-importing a file therefore updates rows in place.
func (s *Store) Upsert(ctx context.Context, source string, bands []solar.ClimateBand) error {
	if len(bands) == 0 {
		return nil
	}

	rows := make([]ClimateNormal, 0, len(bands))
	for _, b := range bands {
		r, err := NewRecord(b, source)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}

	if err := s.upsert(s.db.WithContext(ctx), rows).Error; err != nil {
		return fmt.Errorf("error upserting climate normals: %w", err)
	}
	s.logger.Infof("upserted %d climate normal bands", len(rows))
	return nil
}

func (s *Store) upsert(db *gorm.DB, rows []ClimateNormal) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "latitude_center"}},
		DoUpdates: clause.AssignmentColumns([]string{"half_width", "source", "clearness", "updated_at", "deleted_at"}),
	}).Create(&rows)
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewRecord converts a band into its database row
func NewRecord(b solar.ClimateBand, source string) (ClimateNormal, error) {
	r := ClimateNormal{
		LatitudeCenter: b.LatitudeCenter,
		HalfWidth:      b.HalfWidth,
		Source:         source,
	}
	if err := r.Clearness.Set(b.Clearness[:]); err != nil {
		return ClimateNormal{}, fmt.Errorf("error encoding clearness for band %v: %w", b.LatitudeCenter, err)
	}
	return r, nil
}

// TableFromRecords validates rows and builds a ClimateTable
func TableFromRecords(rows []ClimateNormal) (solar.ClimateTable, error) {
	bands := make([]solar.ClimateBand, 0, len(rows))
	for _, r := range rows {
		if r.Clearness.Status != pgtype.Present {
			return solar.ClimateTable{}, fmt.Errorf("band %v has no clearness values", r.LatitudeCenter)
		}

		var values []float64
		if err := json.Unmarshal(r.Clearness.Bytes, &values); err != nil {
			return solar.ClimateTable{}, fmt.Errorf("band %v: error decoding clearness: %w", r.LatitudeCenter, err)
		}
		if len(values) != solar.Months {
			return solar.ClimateTable{}, fmt.Errorf("band %v: expected %d monthly values, got %d", r.LatitudeCenter, solar.Months, len(values))
		}

		b := solar.ClimateBand{
			LatitudeCenter: r.LatitudeCenter,
			HalfWidth:      r.HalfWidth,
		}
		copy(b.Clearness[:], values)
		bands = append(bands, b)
	}
	return solar.NewClimateTable(bands)
}
