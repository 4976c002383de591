package session

import (
	"context"
	"fmt"
)

// LoadFromDisk restores persisted sessions into memory. Sessions that were
// still pending or loading when the previous process stopped are marked failed.
func (m *Manager) LoadFromDisk() error {
	if m.store == nil {
		return nil
	}
	records, err := m.store.LoadSessions(context.Background())
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	for _, rec := range records {
		if rec.Status == StatusPending || rec.Status == StatusLoading {
			rec.Status = StatusFailed
			rec.Error = "interrupted before completion"
			_ = m.persist(rec)
		}
		m.mu.Lock()
		m.sessions[rec.ID] = rec
		m.mu.Unlock()
	}
	return nil
}
