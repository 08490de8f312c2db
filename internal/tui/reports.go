package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avelis/worklog/internal/effort"
	"github.com/avelis/worklog/internal/store"
	"github.com/avelis/worklog/internal/timeline"
)

// reportsModel charts effort per day across a 7-day window, pageable into
// the past.
type reportsModel struct {
	store  *store.Store
	userID string
	width  int
	height int

	offset int // 7-day blocks back from today (0 = current window)
	days   []timeline.Day

	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r *reportsModel) setUser(userID string) {
	r.userID = userID
}

type reportsDataMsg struct {
	days []timeline.Day
}

func (r reportsModel) refresh() tea.Cmd {
	ref := r.reference()
	return func() tea.Msg {
		statuses, _ := r.store.ListStatuses(r.userID)
		return reportsDataMsg{days: timeline.Buckets(statuses, ref, timeline.WindowDays)}
	}
}

func (r reportsModel) reference() time.Time {
	return time.Now().AddDate(0, 0, -timeline.WindowDays*r.offset)
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.days = msg.days
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	barStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	emptyStyle := lipgloss.NewStyle().Foreground(colorSubtle)

	// Buckets come newest first; chart reads left to right oldest first.
	var bars []barchart.BarData
	for i := len(r.days) - 1; i >= 0; i-- {
		day := r.days[i]
		hours := float64(timeline.TotalTodayMinutes(day)) / 60.0
		style := barStyle
		if hours == 0 {
			style = emptyStyle
		}
		bars = append(bars, barchart.BarData{
			Label: day.Date.Format("Mon 02"),
			Values: []barchart.BarValue{
				{Name: "effort", Value: hours, Style: style},
			},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	from := r.reference().AddDate(0, 0, -(timeline.WindowDays - 1))
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s", from.Format("Jan 02"), r.reference().Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Effort per Day"), "  ", dateLabel,
	)

	chartView := r.chart.View()
	tableView := r.renderTable(w)
	nav := mutedStyle.Render("  ←/→: older/newer window")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", tableView, "", nav,
		),
	)
}

func (r reportsModel) renderTable(w int) string {
	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-28s %8s %12s %8s", "Day", "Items", "Effort", "Done"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 58))))

	for _, day := range r.days {
		rows = append(rows, fmt.Sprintf("  %-28s %8d %12s %8d",
			day.Label,
			len(day.Statuses),
			effort.FormatMinutes(timeline.TotalTodayMinutes(day)),
			timeline.CountByStatus(day, "Done"),
		))
	}

	return strings.Join(rows, "\n")
}
