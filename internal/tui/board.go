package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avelis/worklog/internal/effort"
	"github.com/avelis/worklog/internal/store"
	"github.com/avelis/worklog/internal/timeline"
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmMove
	confirmBulk
)

// boardModel renders the rolling 7-day history grouped by calendar day and
// hosts the record form plus the confirm/copy overlays.
type boardModel struct {
	store  *store.Store
	userID string
	width  int
	height int

	days      []timeline.Day
	dayCursor int
	recCursor int

	form recordFormModel

	confirm       confirmKind
	confirmID     string
	confirmTicket string

	copying bool
	copied  bool
}

func newBoardModel(s *store.Store) boardModel {
	return boardModel{
		store: s,
		form:  newRecordFormModel(s),
	}
}

func (b *boardModel) setSize(w, h int) {
	b.width = w
	b.height = h
	b.form.width = w
}

func (b *boardModel) setUser(userID string) {
	b.userID = userID
	b.form.setUser(userID)
}

func (b boardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		statuses, _ := b.store.ListStatuses(b.userID)
		return boardDataMsg{days: timeline.Buckets(statuses, time.Now(), timeline.WindowDays)}
	}
}

func (b boardModel) selectedDay() *timeline.Day {
	if b.dayCursor >= len(b.days) {
		return nil
	}
	return &b.days[b.dayCursor]
}

func (b boardModel) selectedRecord() *store.WorkStatus {
	day := b.selectedDay()
	if day == nil || b.recCursor >= len(day.Statuses) {
		return nil
	}
	return &day.Statuses[b.recCursor]
}

func (b boardModel) update(msg tea.Msg) (boardModel, tea.Cmd) {
	if b.form.active && b.form.form != nil {
		var cmd tea.Cmd
		b.form, cmd = b.form.update(msg)
		return b, cmd
	}

	switch msg := msg.(type) {
	case boardDataMsg:
		b.days = msg.days
		if b.dayCursor >= len(b.days) {
			b.dayCursor = max(0, len(b.days)-1)
		}
		if day := b.selectedDay(); day != nil && b.recCursor >= len(day.Statuses) {
			b.recCursor = max(0, len(day.Statuses)-1)
		}
		return b, nil

	case copiedMsg:
		b.copied = true
		return b, nil

	case tea.KeyMsg:
		if b.confirm != confirmNone {
			return b.updateConfirm(msg)
		}
		if b.copying {
			return b.updateCopy(msg)
		}
		return b.updateBoard(msg)
	}
	return b, nil
}

func (b boardModel) updateBoard(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if b.recCursor > 0 {
			b.recCursor--
		}
	case key.Matches(msg, keys.Down):
		if day := b.selectedDay(); day != nil && b.recCursor < len(day.Statuses)-1 {
			b.recCursor++
		}
	case key.Matches(msg, keys.Left):
		if b.dayCursor < len(b.days)-1 {
			b.dayCursor++
			b.recCursor = 0
		}
	case key.Matches(msg, keys.Right):
		if b.dayCursor > 0 {
			b.dayCursor--
			b.recCursor = 0
		}
	case key.Matches(msg, keys.New):
		var cmd tea.Cmd
		b.form, cmd = b.form.showCreate()
		return b, cmd
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
		if ws := b.selectedRecord(); ws != nil {
			var cmd tea.Cmd
			b.form, cmd = b.form.showEdit(*ws)
			return b, cmd
		}
	case key.Matches(msg, keys.Delete):
		if ws := b.selectedRecord(); ws != nil {
			b.confirm = confirmDelete
			b.confirmID = ws.ID
			b.confirmTicket = ws.TicketNumber
		}
	case key.Matches(msg, keys.Move):
		day := b.selectedDay()
		ws := b.selectedRecord()
		// Moving a record that is already on today would only clone it.
		if day != nil && ws != nil && !day.IsToday() {
			b.confirm = confirmMove
			b.confirmID = ws.ID
			b.confirmTicket = ws.TicketNumber
		}
	case key.Matches(msg, keys.BulkMove):
		if day := b.selectedDay(); day != nil && !day.IsToday() && len(day.Statuses) > 0 {
			b.confirm = confirmBulk
		}
	case key.Matches(msg, keys.Copy):
		if day := b.selectedDay(); day != nil && len(day.Statuses) > 0 {
			b.copying = true
			b.copied = false
		}
	}
	return b, nil
}

func (b boardModel) updateConfirm(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		kind := b.confirm
		id, ticket := b.confirmID, b.confirmTicket
		day := b.selectedDay()
		b.confirm = confirmNone
		switch kind {
		case confirmDelete:
			return b, b.deleteCmd(id, ticket)
		case confirmMove:
			return b, b.moveCmd(id, ticket)
		case confirmBulk:
			if day != nil {
				return b, b.bulkMoveCmd(*day)
			}
		}
	case "n", "esc":
		b.confirm = confirmNone
	}
	return b, nil
}

func (b boardModel) updateCopy(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Copy):
		if day := b.selectedDay(); day != nil {
			return b, copyCmd(timeline.SummaryText(*day))
		}
	case key.Matches(msg, keys.Back):
		b.copying = false
		b.copied = false
	}
	return b, nil
}

func (b boardModel) deleteCmd(id, ticket string) tea.Cmd {
	return func() tea.Msg {
		if err := b.store.DeleteStatus(id, b.userID); err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return recordDeletedMsg{ticket: ticket}
	}
}

func (b boardModel) moveCmd(id, ticket string) tea.Cmd {
	return func() tea.Msg {
		if _, err := b.store.MoveToToday(id, b.userID); err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return movedMsg{ticket: ticket}
	}
}

// bulkMoveCmd moves every record of a day to today, one at a time. A failure
// does not stop the remaining moves; the result reports both counts.
func (b boardModel) bulkMoveCmd(day timeline.Day) tea.Cmd {
	return func() tea.Msg {
		moved, failed := 0, 0
		for _, ws := range day.Statuses {
			if sameDay(ws.Date, time.Now()) {
				continue
			}
			if _, err := b.store.MoveToToday(ws.ID, b.userID); err != nil {
				failed++
				continue
			}
			moved++
		}
		return bulkMovedMsg{moved: moved, failed: failed}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return statusMsg{text: fmt.Sprintf("Copy failed: %v", err), isError: true}
		}
		return copiedMsg{}
	}
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Local().Date()
	y2, m2, d2 := b.Local().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// --- rendering ---

func (b boardModel) view() string {
	if b.form.active && b.form.form != nil {
		return b.form.view()
	}
	if b.confirm != confirmNone {
		return b.renderConfirm()
	}
	if b.copying {
		return b.renderCopy()
	}

	sections := []string{b.renderStats()}
	for i := range b.days {
		sections = append(sections, b.renderDay(i))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (b boardModel) renderStats() string {
	w := b.width - 4

	totalItems := 0
	done := 0
	for _, day := range b.days {
		totalItems += len(day.Statuses)
		done += timeline.CountByStatus(day, "Done")
	}

	todayEffort := "0h"
	inProgress := 0
	if len(b.days) > 0 {
		todayEffort = effort.FormatMinutes(timeline.TotalTodayMinutes(b.days[0]))
		inProgress = timeline.CountByStatus(b.days[0], "In Progress")
	}

	stats := fmt.Sprintf("%s %d   %s %s   %s %d   %s %d",
		mutedStyle.Render("Items:"), totalItems,
		mutedStyle.Render("Today's effort:"), todayEffort,
		mutedStyle.Render("In progress:"), inProgress,
		mutedStyle.Render("Done:"), done,
	)

	title := titleStyle.Render("Work Status") + mutedStyle.Render("  last 7 days")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, stats))
}

func (b boardModel) renderDay(i int) string {
	w := b.width - 4
	day := b.days[i]
	selected := i == b.dayCursor

	count := fmt.Sprintf("%d items", len(day.Statuses))
	if len(day.Statuses) == 1 {
		count = "1 item"
	}
	header := titleStyle.Render(day.Label) + "  " + mutedStyle.Render(count)

	rows := []string{header}
	if len(day.Statuses) == 0 {
		rows = append(rows, mutedStyle.Render("  No work status for this day"))
	}
	for j, ws := range day.Statuses {
		cursor := "  "
		style := normalItemStyle
		if selected && j == b.recCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := fmt.Sprintf("%s%-14s %s  %s", cursor, ws.TicketNumber, statusBadge(ws.Status), style.Render(ws.Title))
		detail := mutedStyle.Render(fmt.Sprintf("    today %-10s total %-10s est %s",
			orDash(ws.EffortTodayString()), orDash(ws.TotalEffortString()), orDash(ws.EstimatedEffortString())))
		rows = append(rows, line, detail)
	}

	if selected {
		hints := "  n: new  e: edit  d: delete  c: copy"
		if !day.IsToday() && len(day.Statuses) > 0 {
			hints += "  t: move to today  m: move all"
		}
		rows = append(rows, "", mutedStyle.Render(hints))
		return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (b boardModel) renderConfirm() string {
	w := b.width - 4
	var title, body string
	switch b.confirm {
	case confirmDelete:
		title = titleStyle.Render("Delete Work Status")
		body = fmt.Sprintf("Are you sure you want to delete %s? This action cannot be undone.", b.confirmTicket)
	case confirmMove:
		title = titleStyle.Render("Move to Today")
		body = fmt.Sprintf("Move %s to today? The status will be reset to %q and today's effort will be cleared.", b.confirmTicket, store.DefaultStatus)
	case confirmBulk:
		day := b.selectedDay()
		n := 0
		label := ""
		if day != nil {
			n = len(day.Statuses)
			label = day.Label
		}
		title = titleStyle.Render("Move All to Today")
		body = fmt.Sprintf("Move all %d items from %s to today? Status will be reset to %q and today's effort will be cleared for all items.", n, label, store.DefaultStatus)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		body,
		"",
		mutedStyle.Render("  y/enter: confirm  n/esc: cancel"),
	)
	return activePanelStyle.Width(w).Render(content)
}

func (b boardModel) renderCopy() string {
	w := b.width - 4
	day := b.selectedDay()
	if day == nil {
		return ""
	}

	title := titleStyle.Render(fmt.Sprintf("Copy %s Status", day.Label))
	text := timeline.SummaryText(*day)

	footer := mutedStyle.Render("  enter/c: copy to clipboard  esc: close")
	if b.copied {
		footer = successStyle.Render("  Copied!") + mutedStyle.Render("  esc: close")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", text, "", footer)
	return activePanelStyle.Width(w).Render(content)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
