package service

import (
	"sync"

	"github.com/mzurek/ward-roster-api/internal/models"
)

// DefaultHistoryCapacity bounds each tracked schedule's snapshot arena.
const DefaultHistoryCapacity = 50

// History is a bounded arena of immutable schedule snapshots with an undo/
// redo cursor. Replaying any stored snapshot through the pure engine
// reproduces identical hour and error output.
type History struct {
	mu        sync.Mutex
	capacity  int
	snapshots []models.ScheduleDataModel
	pos       int
}

// NewHistory builds a history with the given capacity (snapshots beyond it
// are evicted oldest first).
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity, pos: -1}
}

// Push records a new snapshot, discarding any redo tail.
func (h *History) Push(snapshot models.ScheduleDataModel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = append(h.snapshots[:h.pos+1], snapshot.Clone())
	if len(h.snapshots) > h.capacity {
		overflow := len(h.snapshots) - h.capacity
		h.snapshots = h.snapshots[overflow:]
	}
	h.pos = len(h.snapshots) - 1
}

// Current returns the snapshot at the cursor.
func (h *History) Current() (models.ScheduleDataModel, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos < 0 || h.pos >= len(h.snapshots) {
		return models.ScheduleDataModel{}, false
	}
	return h.snapshots[h.pos].Clone(), true
}

// Undo moves the cursor one snapshot back.
func (h *History) Undo() (models.ScheduleDataModel, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos <= 0 {
		return models.ScheduleDataModel{}, false
	}
	h.pos--
	return h.snapshots[h.pos].Clone(), true
}

// Redo moves the cursor one snapshot forward.
func (h *History) Redo() (models.ScheduleDataModel, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos+1 >= len(h.snapshots) {
		return models.ScheduleDataModel{}, false
	}
	h.pos++
	return h.snapshots[h.pos].Clone(), true
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.snapshots)
}
