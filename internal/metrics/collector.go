package metrics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BusinessMetricsCollector refreshes the row count gauges periodically
type BusinessMetricsCollector struct {
	db       *gorm.DB
	metrics  *Metrics
	logger   *zap.Logger
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

// NewBusinessMetricsCollector creates a new collector
func NewBusinessMetricsCollector(db *gorm.DB, metrics *Metrics, logger *zap.Logger, interval time.Duration) *BusinessMetricsCollector {
	return &BusinessMetricsCollector{
		db:       db,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start collects once immediately and then on every tick
func (c *BusinessMetricsCollector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector. Safe to call more than once.
func (c *BusinessMetricsCollector) Stop() {
	c.once.Do(func() { close(c.done) })
}

func (c *BusinessMetricsCollector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts := map[string]int64{}
	for _, table := range []string{"workspaces", "boards", "cards", "pending_file_deletions"} {
		var n int64
		if err := c.db.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
			c.logger.Error("Failed to count rows", zap.String("table", table), zap.Error(err))
			return
		}
		counts[table] = n
	}
	c.metrics.SetTotals(counts["workspaces"], counts["boards"], counts["cards"], counts["pending_file_deletions"])
}
