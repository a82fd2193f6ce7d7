package database

import (
	"database/sql"
	"testing"

	"github.com/chrissnell/pvestimate/internal/log"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateConnectionRequiresConnectionString(t *testing.T) {
	log.InitNop()
	_, err := CreateConnection("")
	assert.Error(t, err)
	assert.NotNil(t, NewGormLogger())
}

func TestFromSQLSharesPool(t *testing.T) {
	log.InitNop()
	// sql.Open never dials, so no server is needed
	sqlDB, err := sql.Open("postgres", "host=127.0.0.1 port=1 sslmode=disable")
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := FromSQL(sqlDB)
	require.NoError(t, err)
	pool, err := db.DB()
	require.NoError(t, err)
	assert.Same(t, sqlDB, pool)
}
