package climatedb

import (
	"context"
	"database/sql"
	"testing"

	"github.com/chrissnell/pvestimate/internal/database"
	"github.com/chrissnell/pvestimate/internal/log"
	"github.com/chrissnell/pvestimate/pkg/solar"
	"github.com/jackc/pgtype"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func band(center float64, k float64) solar.ClimateBand {
	b := solar.ClimateBand{LatitudeCenter: center, HalfWidth: 2.5}
	for m := range b.Clearness {
		b.Clearness[m] = k + float64(m)*0.01
	}
	return b
}

func TestRecordRoundTrip(t *testing.T) {
	r1, err := NewRecord(band(60, 0.4), "fmi-1991-2020")
	require.NoError(t, err)
	r2, err := NewRecord(band(-30, 0.6), "bom")
	require.NoError(t, err)

	assert.Equal(t, "climate_normals", r1.TableName())
	assert.Equal(t, pgtype.Present, r1.Clearness.Status)

	table, err := TableFromRecords([]ClimateNormal{r1, r2})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	k, ok := table.Lookup(61)
	require.True(t, ok)
	assert.InDelta(t, 0.4, k[0], 1e-12)
	assert.InDelta(t, 0.51, k[11], 1e-12)
}

func TestTableFromRecordsRejects(t *testing.T) {
	short := ClimateNormal{LatitudeCenter: 10, HalfWidth: 5}
	require.NoError(t, short.Clearness.Set([]float64{0.5, 0.5}))

	outOfRange, err := NewRecord(band(10, 0.5), "")
	require.NoError(t, err)
	require.NoError(t, outOfRange.Clearness.Set([]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 1.5}))

	tests := map[string]ClimateNormal{
		"null clearness":  {LatitudeCenter: 10, HalfWidth: 5},
		"eleven months":   short,
		"clearness above": outOfRange,
		"not an array":    {LatitudeCenter: 10, HalfWidth: 5, Clearness: pgtype.JSONB{Bytes: []byte(`{"jan":0.5}`), Status: pgtype.Present}},
	}
	for name, row := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := TableFromRecords([]ClimateNormal{row})
			assert.Error(t, err)
		})
	}
}

// dryRunStore builds statements without a server. sql.Open never dials.
func dryRunStore(t *testing.T) *Store {
	t.Helper()
	log.InitNop()
	sqlDB, err := sql.Open("postgres", "host=127.0.0.1 port=1 sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := database.FromSQL(sqlDB)
	require.NoError(t, err)
	return NewStore(db.Session(&gorm.Session{DryRun: true}), zap.NewNop().Sugar())
}

func TestUpsertUpdatesExistingBands(t *testing.T) {
	s := dryRunStore(t)

	r1, err := NewRecord(band(60, 0.4), "fmi")
	require.NoError(t, err)
	r2, err := NewRecord(band(-30, 0.6), "fmi")
	require.NoError(t, err)

	stmt := s.upsert(s.db.WithContext(context.Background()), []ClimateNormal{r1, r2}).Statement
	query := stmt.SQL.String()
	assert.Contains(t, query, `INSERT INTO "climate_normals"`)
	assert.Contains(t, query, `ON CONFLICT ("latitude_center") DO UPDATE SET`)
	for _, col := range []string{"half_width", "source", "clearness", "updated_at", "deleted_at"} {
		assert.Contains(t, query, `"`+col+`"="excluded"."`+col+`"`)
	}
	assert.NotContains(t, query, `"latitude_center"="excluded"`)
	assert.Contains(t, stmt.Vars, "fmi")
}

func TestUpsertEmptyIsNoop(t *testing.T) {
	s := dryRunStore(t)
	assert.NoError(t, s.Upsert(context.Background(), "fmi", nil))
}

func TestUpsertDryRun(t *testing.T) {
	s := dryRunStore(t)
	assert.NoError(t, s.Upsert(context.Background(), "fmi", []solar.ClimateBand{band(60, 0.4)}))
}

func TestStoreClose(t *testing.T) {
	s := dryRunStore(t)
	require.NoError(t, s.Close())

	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "pool is closed")
}
