// Package pipeline sequences the content regeneration run: health scan,
// two-phase generation, sanitization, template rendering, review, publish.
package pipeline

import (
	"time"

	"github.com/Papalexios/amz-neuralmesh/internal/health"
	"github.com/Papalexios/amz-neuralmesh/internal/render"
	"github.com/Papalexios/amz-neuralmesh/internal/rescue"
)

// Status is the per-page run state.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusQueued        Status = "queued"
	StatusScanning      Status = "scanning"
	StatusOptimizing    Status = "optimizing"
	StatusReviewPending Status = "review_pending"
	StatusPublished     Status = "published"
	StatusError         Status = "error"
)

// Active reports whether the status holds a concurrency slot.
func (s Status) Active() bool {
	return s == StatusScanning || s == StatusOptimizing
}

// Terminal reports whether the run is finished.
func (s Status) Terminal() bool {
	return s == StatusPublished || s == StatusError
}

// Job is the mutable per-page run record. It is owned exclusively by its
// worker until review_pending, then by the review flow; all field writes
// go through the orchestrator lock so UI snapshots never observe torn
// state. The stored Template is the single source of truth: FinalHTML is
// always a pure re-render of it, never hand-patched.
type Job struct {
	ID     string
	PageID int
	Title  string
	URL    string
	Slug   string

	Status  Status
	Error   string
	Started time.Time
	Ended   time.Time

	Metrics health.Metrics
	Scores  health.Scores

	Strategy *rescue.Strategy
	Draft    *rescue.ContentDraft

	Template  string
	Products  []render.Detection
	Overrides render.Overrides
	FinalHTML string
}

// EventType tags orchestrator notifications for the UI.
type EventType string

const (
	EventStatusChange EventType = "status"
	EventLog          EventType = "log"
	EventQueueDrained EventType = "drained"
)

// Event is one orchestrator notification. Payloads are copies; the UI
// shares no mutable state with workers.
type Event struct {
	Type    EventType
	JobID   string
	PageID  int
	Status  Status
	Message string
	Scores  health.Scores
	Worker  int
}
