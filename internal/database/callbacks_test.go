package database

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
)

// mockMetricsRecorder is a mock implementation of MetricsRecorder for testing
type mockMetricsRecorder struct {
	mu        sync.Mutex
	queries   []queryRecord
	statsCall int
}

type queryRecord struct {
	operation string
	table     string
	err       error
}

func (m *mockMetricsRecorder) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, queryRecord{operation: operation, table: table, err: err})
}

func (m *mockMetricsRecorder) UpdateDBStats(stats interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := stats.(sql.DBStats); ok {
		m.statsCall++
	}
}

func (m *mockMetricsRecorder) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = nil
}

func (m *mockMetricsRecorder) ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	for i, q := range m.queries {
		out[i] = q.operation + ":" + q.table
	}
	return out
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := New(Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestRegisterMetricsCallbacks_CRUD(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	col := &domain.Column{BoardID: uuid.New(), Name: "Todo"}
	require.NoError(t, db.Create(col).Error)

	var found domain.Column
	require.NoError(t, db.First(&found, "id = ?", col.ID).Error)
	require.NoError(t, db.Model(&found).Update("name", "Doing").Error)
	require.NoError(t, db.Delete(&found).Error)

	assert.Equal(t, []string{
		"insert:board_columns",
		"select:board_columns",
		"update:board_columns",
		"delete:board_columns",
	}, recorder.ops())
}

func TestRegisterMetricsCallbacks_BulkShiftAndScan(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	boardID := uuid.New()
	require.NoError(t, db.Create(&domain.Column{BoardID: boardID, Name: "A", Position: 0}).Error)
	recorder.reset()

	require.NoError(t, db.Table("board_columns").
		Where("board_id = ?", boardID).
		UpdateColumn("position", gorm.Expr("position + ?", 1)).Error)

	var rows []struct{ Position int }
	require.NoError(t, db.Table("board_columns").Select("position").Scan(&rows).Error)

	assert.Equal(t, []string{"update:board_columns", "select:board_columns"}, recorder.ops())
}

func TestRegisterMetricsCallbacks_RecordsErrors(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	var missing domain.Card
	err := db.First(&missing, "id = ?", uuid.New()).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.Len(t, recorder.queries, 1)
	assert.Equal(t, "select", recorder.queries[0].operation)
	assert.Error(t, recorder.queries[0].err)
}

func TestRegisterMetricsCallbacks_InsideTransaction(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&domain.Label{BoardID: uuid.New(), Name: "bug", Color: "#ff0000"}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Label{BoardID: uuid.New(), Name: "ops", Color: "#00ff00"}).Error
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"insert:labels", "insert:labels"}, recorder.ops())
}

func TestStartDBStatsCollector(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}

	done := StartDBStatsCollector(db, recorder, 10*time.Millisecond)
	defer close(done)

	assert.Eventually(t, func() bool {
		recorder.mu.Lock()
		defer recorder.mu.Unlock()
		return recorder.statsCall > 0
	}, time.Second, 10*time.Millisecond)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(Config{Driver: "mysql", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestAutoMigrate_CreatesEveryTable(t *testing.T) {
	db := setupTestDB(t)
	for _, m := range models() {
		assert.True(t, db.Migrator().HasTable(m.tableName), m.tableName)
	}
}
