package models

import (
	"sync"
	"time"
)

type pendingPreview struct {
	caption   string
	expiresAt time.Time
}

// PendingPreviewManager holds announcement captions waiting for an admin to
// supply a preview image. One entry per admin, last write wins.
type PendingPreviewManager struct {
	entries map[int64]pendingPreview
	ttl     time.Duration
	mu      sync.RWMutex
}

// NewPendingPreviewManager creates the manager and starts the expiry sweep.
func NewPendingPreviewManager(ttl time.Duration) *PendingPreviewManager {
	m := &PendingPreviewManager{
		entries: make(map[int64]pendingPreview),
		ttl:     ttl,
	}

	if ttl > 0 {
		go m.cleanupExpired()
	}

	return m
}

// Put stores a caption for the admin, replacing any earlier one.
func (m *PendingPreviewManager) Put(adminID int64, caption string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := pendingPreview{caption: caption}
	if m.ttl > 0 {
		entry.expiresAt = time.Now().Add(m.ttl)
	}
	m.entries[adminID] = entry
}

// Take removes and returns the pending caption for the admin, if any.
func (m *PendingPreviewManager) Take(adminID int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[adminID]
	if !exists {
		return "", false
	}

	delete(m.entries, adminID)

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return "", false
	}

	return entry.caption, true
}

// Len returns the number of pending entries.
func (m *PendingPreviewManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// cleanupExpired periodically removes abandoned entries
func (m *PendingPreviewManager) cleanupExpired() {
	ticker := time.NewTicker(m.ttl)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		now := time.Now()
		for adminID, entry := range m.entries {
			if now.After(entry.expiresAt) {
				delete(m.entries, adminID)
			}
		}
		m.mu.Unlock()
	}
}
