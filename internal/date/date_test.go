package date

import (
	"testing"
	"time"
)

func TestParseRoundTrip(t *testing.T) {
	d, err := Parse("2024-02-29")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Year != 2024 || d.Month != time.February || d.Day != 29 {
		t.Errorf("unexpected date: %+v", d)
	}
	if got := d.String(); got != "2024-02-29" {
		t.Errorf("String() = %q, want 2024-02-29", got)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "2023-02-29", "20240101"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestWeekday(t *testing.T) {
	// 2024-02-25 is a Sunday.
	d := New(2024, time.February, 25)
	if d.Weekday() != time.Sunday {
		t.Errorf("Weekday() = %v, want Sunday", d.Weekday())
	}
}

func TestAddDaysAcrossMonth(t *testing.T) {
	d := New(2024, time.January, 31)
	got := d.AddDays(1)
	want := New(2024, time.February, 1)
	if got != want {
		t.Errorf("AddDays(1) = %v, want %v", got, want)
	}

	back := got.AddDays(-1)
	if back != d {
		t.Errorf("AddDays(-1) = %v, want %v", back, d)
	}
}

func TestBeforeAfter(t *testing.T) {
	a := New(2024, time.March, 15)
	b := New(2024, time.March, 16)
	c := New(2024, time.April, 1)

	if !a.Before(b) || !b.Before(c) {
		t.Error("expected a < b < c")
	}
	if b.Before(a) || a.Before(a) {
		t.Error("Before is not strict")
	}
	if !c.After(a) {
		t.Error("expected c after a")
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestWeekMondayStart(t *testing.T) {
	// 2024-03-13 is a Wednesday; its Monday-start week begins 2024-03-11.
	d := New(2024, time.March, 13)
	week := Week(d, StartMonday)

	if week[0] != New(2024, time.March, 11) {
		t.Errorf("week starts at %v, want 2024-03-11", week[0])
	}
	if week[6] != New(2024, time.March, 17) {
		t.Errorf("week ends at %v, want 2024-03-17", week[6])
	}
	for i := 1; i < 7; i++ {
		if week[i] != week[i-1].AddDays(1) {
			t.Fatalf("week days not consecutive at index %d", i)
		}
	}
}

func TestWeekSundayStart(t *testing.T) {
	d := New(2024, time.March, 13)
	week := Week(d, StartSunday)

	if week[0] != New(2024, time.March, 10) {
		t.Errorf("week starts at %v, want 2024-03-10", week[0])
	}
	if week[0].Weekday() != time.Sunday {
		t.Errorf("week starts on %v, want Sunday", week[0].Weekday())
	}
}

func TestWeekContainsItself(t *testing.T) {
	// Every day of a week maps to the same week.
	base := New(2024, time.March, 11)
	want := Week(base, StartMonday)
	for i := 0; i < 7; i++ {
		got := Week(base.AddDays(i), StartMonday)
		if got != want {
			t.Errorf("Week(%v) differs from Week(%v)", base.AddDays(i), base)
		}
	}
}

func TestWeekOnStartDay(t *testing.T) {
	// A Monday maps to a week beginning on itself.
	mon := New(2024, time.March, 11)
	if Week(mon, StartMonday)[0] != mon {
		t.Error("Monday-start week of a Monday should begin on that Monday")
	}
	sun := New(2024, time.March, 10)
	if Week(sun, StartSunday)[0] != sun {
		t.Error("Sunday-start week of a Sunday should begin on that Sunday")
	}
}
