package store

import (
	"errors"
	"time"

	"github.com/avelis/worklog/internal/effort"
)

// DefaultStatus is what a record resets to when moved forward to today.
const DefaultStatus = "To Do"

// Statuses is the suggested set for the status field. It is advisory: the
// column is free text and any value may be stored.
var Statuses = []string{"To Do", "In Progress", "Code Review", "DQA", "Ready for QA", "Done", "Blocked"}

var (
	// ErrNotFound covers both a missing row and a row owned by someone
	// else, so callers cannot probe for other users' records.
	ErrNotFound = errors.New("work status not found or access denied")

	// ErrDuplicateTicket means the user already has a record with this
	// ticket number.
	ErrDuplicateTicket = errors.New("another work status with this ticket number already exists")

	// ErrMissingField wraps per-field validation failures on create/update.
	ErrMissingField = errors.New("missing required field")

	// ErrUsernameLength rejects usernames outside 2-50 characters.
	ErrUsernameLength = errors.New("username must be between 2 and 50 characters")
)

type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkStatus is one ticket's effort entry for one calendar date.
type WorkStatus struct {
	ID              string
	UserID          string
	TicketNumber    string
	Title           string
	Status          string
	Date            time.Time
	EffortToday     effort.Triple
	TotalEffort     effort.Triple
	EstimatedEffort effort.Triple
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffortTodayString returns the formatted effort-today field for display.
func (w WorkStatus) EffortTodayString() string { return w.EffortToday.Format() }

// TotalEffortString returns the formatted total-effort field for display.
func (w WorkStatus) TotalEffortString() string { return w.TotalEffort.Format() }

// EstimatedEffortString returns the formatted estimate for display.
func (w WorkStatus) EstimatedEffortString() string { return w.EstimatedEffort.Format() }

// StatusFields carries the writable fields of a record through create and
// update.
type StatusFields struct {
	Date            time.Time
	TicketNumber    string
	Title           string
	Status          string
	EffortToday     effort.Triple
	TotalEffort     effort.Triple
	EstimatedEffort effort.Triple
}

type Setting struct {
	Key   string
	Value string
}
