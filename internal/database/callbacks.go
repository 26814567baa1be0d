package database

import (
	"time"

	"gorm.io/gorm"
)

const queryStartKey = "itrun:query_start"

// MetricsRecorder is an interface for recording database metrics
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
	UpdateDBStats(stats interface{})
}

// RegisterMetricsCallbacks times every create, query, row scan, update and delete.
// Bulk position shifts issued with Table(...).UpdateColumn are reported as updates.
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) error {
	cb := db.Callback()
	registrations := []error{
		cb.Create().Before("gorm:create").Register("metrics:create_before", startTimer),
		cb.Create().After("gorm:create").Register("metrics:create_after", recordQuery(recorder, "insert")),
		cb.Query().Before("gorm:query").Register("metrics:query_before", startTimer),
		cb.Query().After("gorm:query").Register("metrics:query_after", recordQuery(recorder, "select")),
		cb.Row().Before("gorm:row").Register("metrics:row_before", startTimer),
		cb.Row().After("gorm:row").Register("metrics:row_after", recordQuery(recorder, "select")),
		cb.Update().Before("gorm:update").Register("metrics:update_before", startTimer),
		cb.Update().After("gorm:update").Register("metrics:update_after", recordQuery(recorder, "update")),
		cb.Delete().Before("gorm:delete").Register("metrics:delete_before", startTimer),
		cb.Delete().After("gorm:delete").Register("metrics:delete_after", recordQuery(recorder, "delete")),
	}
	for _, err := range registrations {
		if err != nil {
			return err
		}
	}
	return nil
}

func startTimer(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func recordQuery(recorder MetricsRecorder, operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		start, ok := tx.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		recorder.RecordDBQuery(operation, table, time.Since(start.(time.Time)), tx.Error)
	}
}

// StartDBStatsCollector pushes connection pool stats to recorder every interval until done is closed
func StartDBStatsCollector(db *gorm.DB, recorder MetricsRecorder, interval time.Duration) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					continue
				}
				recorder.UpdateDBStats(sqlDB.Stats())
			case <-done:
				return
			}
		}
	}()

	return done
}
