// Package recur expands recurring-task patterns into concrete calendar dates.
package recur

import (
	"fmt"
	"strings"
	"time"

	"github.com/skoglund/timegrid/internal/date"
)

// Kind selects the recurrence rule family.
type Kind int

const (
	Daily Kind = iota
	Weekly
	MonthlyNth
)

// Occurrence picks which instance of a weekday within a month.
type Occurrence int

const (
	First Occurrence = iota + 1
	Second
	Third
	Fourth
	Last Occurrence = -1
)

var occurrenceNames = map[string]Occurrence{
	"first":  First,
	"second": Second,
	"third":  Third,
	"fourth": Fourth,
	"last":   Last,
}

// Pattern describes when a recurring task generates entries. For MonthlyNth
// the Occurrence and Weekday fields are set; Daily and Weekly ignore them
// (Weekly follows the weekday of the range start).
type Pattern struct {
	Kind       Kind
	Occurrence Occurrence
	Weekday    time.Weekday
}

func (p Pattern) String() string {
	switch p.Kind {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case MonthlyNth:
		name := "last"
		for n, o := range occurrenceNames {
			if o == p.Occurrence {
				name = n
				break
			}
		}
		return fmt.Sprintf("monthly:%s:%d", name, int(p.Weekday))
	}
	return "unknown"
}

// Parse reads a persisted pattern string: "daily", "weekly", or
// "monthly:<occurrence>:<weekday>" with occurrence in
// first/second/third/fourth/last and weekday in 0 (Sunday) to 6.
func Parse(s string) (Pattern, error) {
	switch s {
	case "daily":
		return Pattern{Kind: Daily}, nil
	case "weekly":
		return Pattern{Kind: Weekly}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] != "monthly" {
		return Pattern{}, fmt.Errorf("unrecognized recurrence pattern %q", s)
	}

	occ, ok := occurrenceNames[parts[1]]
	if !ok {
		return Pattern{}, fmt.Errorf("unrecognized occurrence %q in pattern %q", parts[1], s)
	}

	if len(parts[2]) != 1 || parts[2][0] < '0' || parts[2][0] > '6' {
		return Pattern{}, fmt.Errorf("weekday %q out of range in pattern %q", parts[2], s)
	}
	wd := time.Weekday(parts[2][0] - '0')

	return Pattern{Kind: MonthlyNth, Occurrence: occ, Weekday: wd}, nil
}

// ForbiddenFunc reports dates ineligible for logging. A nil func allows all.
type ForbiddenFunc func(date.Date) bool

// Resolve expands the pattern over [start, end] inclusive, dropping
// forbidden dates. An inverted range yields an empty result, not an error.
// The expansion is a pure function of its inputs.
func Resolve(p Pattern, start, end date.Date, forbidden ForbiddenFunc) []date.Date {
	if end.Before(start) {
		return nil
	}
	if forbidden == nil {
		forbidden = func(date.Date) bool { return false }
	}

	var out []date.Date
	switch p.Kind {
	case Daily:
		for d := start; !d.After(end); d = d.AddDays(1) {
			if !forbidden(d) {
				out = append(out, d)
			}
		}
	case Weekly:
		for d := start; !d.After(end); d = d.AddDays(7) {
			if !forbidden(d) {
				out = append(out, d)
			}
		}
	case MonthlyNth:
		for year, month := start.Year, start.Month; ; {
			d, ok := nthWeekday(year, month, p.Weekday, p.Occurrence)
			if ok && !d.Before(start) && !d.After(end) && !forbidden(d) {
				out = append(out, d)
			}

			if year > end.Year || (year == end.Year && month >= end.Month) {
				break
			}
			month++
			if month > time.December {
				month = time.January
				year++
			}
		}
	}
	return out
}

// nthWeekday returns the occurrence-th weekday of the month, or ok=false
// when the month has no such occurrence. Months too short for the requested
// instance are skipped by the caller rather than falling back to the last one.
func nthWeekday(year int, month time.Month, weekday time.Weekday, occ Occurrence) (date.Date, bool) {
	firstOfMonth := date.New(year, month, 1)
	daysUntil := (int(weekday) - int(firstOfMonth.Weekday()) + 7) % 7
	first := firstOfMonth.AddDays(daysUntil)

	if occ == Last {
		d := first
		for {
			next := d.AddDays(7)
			if next.Month != month {
				return d, true
			}
			d = next
		}
	}

	d := first.AddDays(7 * (int(occ) - 1))
	if d.Month != month {
		return date.Date{}, false
	}
	return d, true
}
