package metrics

import "time"

// RecordOrderingOp counts a committed position operation
func (m *Metrics) RecordOrderingOp(scope, op string) {
	m.safeExecute("RecordOrderingOp", func() {
		m.OrderingOperationsTotal.WithLabelValues(scope, op).Inc()
	})
}

// RecordLockWait observes how long lock acquisition took and counts busy rejections
func (m *Metrics) RecordLockWait(scope string, wait time.Duration, busy bool) {
	m.safeExecute("RecordLockWait", func() {
		m.LockWaitDuration.WithLabelValues(scope).Observe(wait.Seconds())
		if busy {
			m.LockBusyTotal.WithLabelValues(scope).Inc()
		}
	})
}

// RecordPositionsRepaired counts rows rewritten by the repair job
func (m *Metrics) RecordPositionsRepaired(scope string, rows int) {
	m.safeExecute("RecordPositionsRepaired", func() {
		m.PositionsRepairedTotal.WithLabelValues(scope).Add(float64(rows))
	})
}

// RecordJobRun counts a background job run by outcome
func (m *Metrics) RecordJobRun(job string, err error) {
	m.safeExecute("RecordJobRun", func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.JobRunsTotal.WithLabelValues(job, status).Inc()
	})
}

// RecordFileDeletion counts an object deletion attempt made by the cleanup job
func (m *Metrics) RecordFileDeletion(err error) {
	m.safeExecute("RecordFileDeletion", func() {
		status := "deleted"
		if err != nil {
			status = "failed"
		}
		m.FilesDeletedTotal.WithLabelValues(status).Inc()
	})
}
