// Package timeline groups work-status records into calendar-day buckets for
// the rolling history board and generates the copy-ready day summaries.
package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/avelis/worklog/internal/store"
)

// WindowDays is the size of the rolling history window.
const WindowDays = 7

// Day is one calendar day's bucket of records.
type Day struct {
	Date     time.Time // midnight, local time zone
	Label    string    // "Today", "Yesterday", or the full date
	Statuses []store.WorkStatus
}

// IsToday reports whether the bucket is the current day.
func (d Day) IsToday() bool {
	y1, m1, d1 := d.Date.Date()
	y2, m2, d2 := time.Now().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Buckets distributes statuses into one bucket per calendar day for the last
// windowDays days ending at now, newest day first. Days with no records get
// an empty bucket; records older than the window are dropped. Membership is
// by calendar-day equality in now's location, not elapsed-hours arithmetic.
// Within a bucket records are ordered newest-created first for on-screen
// listing.
func Buckets(statuses []store.WorkStatus, now time.Time, windowDays int) []Day {
	days := make([]Day, 0, windowDays)
	index := make(map[string]int, windowDays)
	for i := 0; i < windowDays; i++ {
		date := midnight(now.AddDate(0, 0, -i))
		index[dayKey(date)] = i
		days = append(days, Day{Date: date, Label: Label(date, now)})
	}

	for _, ws := range statuses {
		key := dayKey(ws.Date.In(now.Location()))
		i, ok := index[key]
		if !ok {
			continue
		}
		days[i].Statuses = append(days[i].Statuses, ws)
	}

	for i := range days {
		sort.SliceStable(days[i].Statuses, func(a, b int) bool {
			return days[i].Statuses[a].CreatedAt.After(days[i].Statuses[b].CreatedAt)
		})
	}
	return days
}

// Label names a calendar day relative to now: "Today", "Yesterday", or the
// long-form date.
func Label(date, now time.Time) string {
	day := midnight(date.In(now.Location()))
	today := midnight(now)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	}
	return day.Format("Monday, January 2, 2006")
}

// SummaryText renders a day's records as the copy-ready status report:
//
//	02/01/06 – Work status
//
//	#DCV2-123 - Fix login redirect
//	Status: In Progress
//	...
//
// Records are ordered oldest-created first, the order they were logged in.
func SummaryText(d Day) string {
	if len(d.Statuses) == 0 {
		return ""
	}

	ordered := make([]store.WorkStatus, len(d.Statuses))
	copy(ordered, d.Statuses)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].CreatedAt.Before(ordered[b].CreatedAt)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%s – Work status\n\n", d.Date.Format("02/01/06"))
	for _, ws := range ordered {
		fmt.Fprintf(&b, "#%s - %s\n", ws.TicketNumber, ws.Title)
		fmt.Fprintf(&b, "Status: %s\n", ws.Status)
		fmt.Fprintf(&b, "Effort Today: %s\n", ws.EffortTodayString())
		fmt.Fprintf(&b, "Total Effort: %s\n", ws.TotalEffortString())
		fmt.Fprintf(&b, "Estimated Effort: %s\n\n", ws.EstimatedEffortString())
	}
	return strings.TrimSpace(b.String())
}

// TotalTodayMinutes sums the bucket's effort-today fields in working-day
// minutes.
func TotalTodayMinutes(d Day) int {
	total := 0
	for _, ws := range d.Statuses {
		total += ws.EffortToday.TotalMinutes()
	}
	return total
}

// CountByStatus returns how many records in the bucket carry the given
// status value.
func CountByStatus(d Day, status string) int {
	n := 0
	for _, ws := range d.Statuses {
		if ws.Status == status {
			n++
		}
	}
	return n
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
