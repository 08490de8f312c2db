// Package effort implements the "NdNhNm" duration notation used for the
// three effort fields on a work-status record (e.g. "1d 2h 30m").
//
// Each component is tracked independently: -1 means the component was never
// entered and is omitted from formatted output, while 0 means an explicit
// zero and is shown. One day equals 8 working hours.
package effort

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MinutesPerDay is the working-day length used for aggregate totals.
const MinutesPerDay = 8 * 60

const unset = -1

var (
	grammarRe = regexp.MustCompile(`^(\d+d\s?)?(\d+h\s?)?(\d+m\s?)?$`)
	daysRe    = regexp.MustCompile(`(\d+)d`)
	hoursRe   = regexp.MustCompile(`(\d+)h`)
	minutesRe = regexp.MustCompile(`(\d+)m`)
)

// Triple holds one duration as day/hour/minute components.
type Triple struct {
	Days    int
	Hours   int
	Minutes int
}

// Unset returns a Triple with every component unset.
func Unset() Triple {
	return Triple{Days: unset, Hours: unset, Minutes: unset}
}

// IsUnset reports whether no component has been entered.
func (t Triple) IsUnset() bool {
	return t.Days < 0 && t.Hours < 0 && t.Minutes < 0
}

// Valid reports whether s matches the duration grammar. The empty string is
// valid and parses to an unset triple.
func Valid(s string) bool {
	return grammarRe.MatchString(strings.TrimSpace(s))
}

// Parse extracts the day/hour/minute components from s. Tokens absent from
// the input yield -1 for that component; a blank input yields a fully unset
// triple. Parse does not re-validate the grammar — that happens at the form
// boundary via Valid.
func Parse(s string) Triple {
	t := Unset()
	s = strings.TrimSpace(s)
	if s == "" {
		return t
	}
	if m := daysRe.FindStringSubmatch(s); m != nil {
		t.Days, _ = strconv.Atoi(m[1])
	}
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		t.Hours, _ = strconv.Atoi(m[1])
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		t.Minutes, _ = strconv.Atoi(m[1])
	}
	return t
}

// Format renders t in fixed d/h/m order, emitting only components that were
// entered. A fully unset triple renders as the empty string.
func (t Triple) Format() string {
	var parts []string
	if t.Days >= 0 {
		parts = append(parts, fmt.Sprintf("%dd", t.Days))
	}
	if t.Hours >= 0 {
		parts = append(parts, fmt.Sprintf("%dh", t.Hours))
	}
	if t.Minutes >= 0 {
		parts = append(parts, fmt.Sprintf("%dm", t.Minutes))
	}
	return strings.Join(parts, " ")
}

// TotalMinutes converts t to working-day minutes, treating unset components
// as zero.
func (t Triple) TotalMinutes() int {
	total := 0
	if t.Days > 0 {
		total += t.Days * MinutesPerDay
	}
	if t.Hours > 0 {
		total += t.Hours * 60
	}
	if t.Minutes > 0 {
		total += t.Minutes
	}
	return total
}

// FormatMinutes renders a working-day minute total back to the canonical
// notation, skipping zero components. Non-positive totals render as "0h".
func FormatMinutes(total int) string {
	if total <= 0 {
		return "0h"
	}
	days := total / MinutesPerDay
	rem := total % MinutesPerDay
	hours := rem / 60
	minutes := rem % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 {
		return "0h"
	}
	return strings.Join(parts, " ")
}
