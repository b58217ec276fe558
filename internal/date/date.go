// Package date provides a calendar-day value type. Dates are plain
// (year, month, day) triples and are never converted through a zoned
// timestamp, so weekday and arithmetic results cannot drift by a day
// depending on the local timezone.
package date

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Date is a single calendar day with no time-of-day and no timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// StartOfWeek selects which weekday begins the seven-day week view.
type StartOfWeek int

const (
	StartMonday StartOfWeek = iota
	StartSunday
)

func New(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Parse reads a date in YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// FromTime truncates a time.Time to its calendar day in the time's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func Today() Date {
	return FromTime(time.Now())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalJSON encodes the date as its YYYY-MM-DD string. The wire format
// carries no timezone, matching the server's calendar-day semantics.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("parsing date %s: not a JSON string", s)
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// toTime pins the date to UTC midnight. Only used internally for weekday
// and arithmetic; the result never leaks out of the package as a time.Time.
func (d Date) toTime() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday {
	return d.toTime().Weekday()
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.toTime().AddDate(0, 0, n))
}

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) After(other Date) bool {
	return other.Before(d)
}

func (d Date) Equal(other Date) bool {
	return d == other
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Week returns the seven consecutive days of the week containing d,
// beginning on the configured start day.
func Week(d Date, start StartOfWeek) [7]Date {
	offset := int(d.Weekday()) // days since Sunday
	if start == StartMonday {
		offset = (offset + 6) % 7 // days since Monday
	}
	first := d.AddDays(-offset)

	var days [7]Date
	for i := range days {
		days[i] = first.AddDays(i)
	}
	return days
}

// Day annotates a calendar day for the week view.
type Day struct {
	Date        Date
	IsToday     bool
	IsWeekend   bool
	HolidayName string
	Forbidden   bool
}
