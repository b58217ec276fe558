// Package holiday decides which calendar days are eligible for time logging.
// Named holidays come from an iCalendar feed; weekend rules come from config.
package holiday

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/skoglund/timegrid/internal/date"
)

// Rules configures the weekend portion of the eligibility check.
// Sunday is always off; Saturday only when SaturdayOff is set.
type Rules struct {
	SaturdayOff bool
}

// Calendar maps calendar days to holiday names.
type Calendar struct {
	names map[date.Date]string
}

// NewCalendar builds a calendar from explicit (date, name) pairs.
func NewCalendar(names map[date.Date]string) *Calendar {
	if names == nil {
		names = make(map[date.Date]string)
	}
	return &Calendar{names: names}
}

// Lookup returns the holiday name for d, or "" if d is not a holiday.
func (c *Calendar) Lookup(d date.Date) string {
	if c == nil {
		return ""
	}
	return c.names[d]
}

func (c *Calendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// All returns the holidays sorted by date.
func (c *Calendar) All() []Entry {
	if c == nil {
		return nil
	}
	entries := make([]Entry, 0, len(c.names))
	for d, name := range c.names {
		entries = append(entries, Entry{Date: d, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries
}

type Entry struct {
	Date date.Date
	Name string
}

// IsForbidden reports whether d is ineligible for time logging: Sunday
// always, Saturday per rules, or any named holiday.
func IsForbidden(d date.Date, rules Rules, cal *Calendar) bool {
	switch d.Weekday() {
	case time.Sunday:
		return true
	case time.Saturday:
		if rules.SaturdayOff {
			return true
		}
	}
	return cal.Lookup(d) != ""
}

// Annotate builds the display metadata for a seven-day week.
func Annotate(week [7]date.Date, rules Rules, cal *Calendar) [7]date.Day {
	today := date.Today()
	var days [7]date.Day
	for i, d := range week {
		wd := d.Weekday()
		days[i] = date.Day{
			Date:        d,
			IsToday:     d.Equal(today),
			IsWeekend:   wd == time.Saturday || wd == time.Sunday,
			HolidayName: cal.Lookup(d),
			Forbidden:   IsForbidden(d, rules, cal),
		}
	}
	return days
}

// Load retrieves and parses an iCalendar holiday feed from a URL or file
// path. Each event contributes one holiday per calendar day it covers;
// events without a summary are skipped.
func Load(ctx context.Context, source string) (*Calendar, error) {
	var r io.ReadCloser

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching holiday calendar: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("holiday calendar fetch returned status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening holiday calendar file: %w", err)
		}
		r = f
	}
	defer r.Close()

	return Parse(r)
}

// Parse decodes iCalendar data into a holiday calendar.
func Parse(r io.Reader) (*Calendar, error) {
	dec := ical.NewDecoder(r)
	names := make(map[date.Date]string)

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing holiday calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(nil)
			if err != nil {
				continue // skip malformed events
			}
			summary, _ := event.Props.Text(ical.PropSummary)
			if summary == "" {
				continue
			}

			first := date.FromTime(start)
			last := first
			// All-day events carry an exclusive DTEND; multi-day holidays
			// cover every day up to but not including it.
			if end, err := event.DateTimeEnd(nil); err == nil && end.After(start) {
				last = date.FromTime(end.Add(-time.Second))
			}

			for d := first; !d.After(last); d = d.AddDays(1) {
				names[d] = summary
			}
		}
	}

	return NewCalendar(names), nil
}
