package metrics

// IncrementWorkspaceCreated increments workspace creation counter
func (m *Metrics) IncrementWorkspaceCreated() {
	m.safeExecute("IncrementWorkspaceCreated", func() {
		m.WorkspaceCreatedTotal.Inc()
	})
}

// IncrementBoardCreated increments board creation counter
func (m *Metrics) IncrementBoardCreated() {
	m.safeExecute("IncrementBoardCreated", func() {
		m.BoardCreatedTotal.Inc()
	})
}

// IncrementCardCreated increments card creation counter
func (m *Metrics) IncrementCardCreated() {
	m.safeExecute("IncrementCardCreated", func() {
		m.CardCreatedTotal.Inc()
	})
}

// SetTotals sets the row count gauges
func (m *Metrics) SetTotals(workspaces, boards, cards, pendingDeletions int64) {
	m.safeExecute("SetTotals", func() {
		m.WorkspacesTotal.Set(float64(workspaces))
		m.BoardsTotal.Set(float64(boards))
		m.CardsTotal.Set(float64(cards))
		m.PendingFileDeletions.Set(float64(pendingDeletions))
	})
}
