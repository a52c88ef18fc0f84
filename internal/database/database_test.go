package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Opens the in-memory sqlite path end to end: driver registration, gorm
// dialector wiring and the full migration set.
func TestConnect_SQLiteInMemory(t *testing.T) {
	db, err := Connect(":memory:")
	assert.NoError(t, err)
	assert.False(t, IsPostgres(db))

	assert.NoError(t, RunMigrations(db))

	// The migrated schema is actually usable.
	var cnt int64
	assert.NoError(t, db.Raw("SELECT COUNT(1) FROM bookings").Scan(&cnt).Error)
	assert.Zero(t, cnt)
	assert.NoError(t, db.Raw("SELECT COUNT(1) FROM gift_cards").Scan(&cnt).Error)
	assert.NoError(t, db.Raw("SELECT COUNT(1) FROM gift_card_usages").Scan(&cnt).Error)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db, err := Connect(":memory:")
	assert.NoError(t, err)

	assert.NoError(t, RunMigrations(db))
	assert.NoError(t, RunMigrations(db))
}
