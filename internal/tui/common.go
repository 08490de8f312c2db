package tui

import (
	"github.com/avelis/worklog/internal/store"
	"github.com/avelis/worklog/internal/timeline"
)

// viewState represents the currently active view.
type viewState int

const (
	viewBoard viewState = iota
	viewReports
)

var viewNames = []string{"Board", "Reports"}

// --- Messages ---

type signedInMsg struct {
	user *store.User
}

type signedOutMsg struct{}

type boardDataMsg struct {
	days []timeline.Day
}

type recordSavedMsg struct {
	created bool
	ticket  string
}

type recordDeletedMsg struct {
	ticket string
}

type movedMsg struct {
	ticket string
}

type bulkMovedMsg struct {
	moved  int
	failed int
}

type copiedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
