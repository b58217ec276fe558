package grid

import (
	"testing"
	"time"

	"github.com/skoglund/timegrid/internal/api"
	"github.com/skoglund/timegrid/internal/date"
)

// week of Monday 2024-03-11.
func testWeek() [7]date.Date {
	return date.Week(date.New(2024, time.March, 13), date.StartMonday)
}

func TestBuildWeekGroupsByClientProjectTask(t *testing.T) {
	week := testWeek()
	entries := []api.TimeEntry{
		{ID: "e1", Date: week[0], ClientID: "c1", ProjectID: "p1", Task: "Support", Hours: 2},
		{ID: "e2", Date: week[2], ClientID: "c1", ProjectID: "p1", Task: "Support", Hours: 3},
		{ID: "e3", Date: week[1], ClientID: "c1", ProjectID: "p1", Task: "Design", Hours: 1},
	}

	s := BuildWeek(week, entries)
	if len(s.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(s.Rows))
	}

	support := s.Rows[0]
	if support.TaskName != "Support" {
		t.Fatalf("first row task = %q, want Support (first-appearance order)", support.TaskName)
	}
	if support.Cells[week[0]].EntryID != "e1" || support.Cells[week[2]].EntryID != "e2" {
		t.Errorf("support row cells missing entry ids: %+v", support.Cells)
	}
	if support.Cells[week[0]].Hours != 2 || support.Cells[week[2]].Hours != 3 {
		t.Errorf("support row hours wrong: %+v", support.Cells)
	}
	if len(support.Cells) != 2 {
		t.Errorf("support row has %d cells, want 2", len(support.Cells))
	}
}

func TestBuildWeekIgnoresOutOfRangeEntries(t *testing.T) {
	week := testWeek()
	entries := []api.TimeEntry{
		{ID: "old", Date: week[0].AddDays(-7), ClientID: "c1", ProjectID: "p1", Task: "Support", Hours: 2},
	}
	s := BuildWeek(week, entries)
	if len(s.Rows) != 1 || len(s.Rows[0].Cells) != 0 {
		t.Errorf("out-of-week entry leaked into the grid: %+v", s.Rows)
	}
}

func TestBuildWeekEmptyPlaceholder(t *testing.T) {
	s := BuildWeek(testWeek(), nil)
	if len(s.Rows) != 1 {
		t.Fatalf("got %d rows, want 1 placeholder", len(s.Rows))
	}
	if s.Rows[0].ClientID != "" || len(s.Rows[0].Cells) != 0 {
		t.Errorf("placeholder row not empty: %+v", s.Rows[0])
	}
}

func TestPartitionCreatesAndUpdates(t *testing.T) {
	week := testWeek()
	s := BuildWeek(week, []api.TimeEntry{
		{ID: "e1", Date: week[0], ClientID: "c1", ProjectID: "p1", Task: "Support", Hours: 2, Notes: "old note"},
	})

	// Edit the persisted cell and fill a new one.
	s = Apply(s, SetCell{Row: 0, Date: week[0], Hours: 4, Note: "reworked"}, nil)
	s = Apply(s, SetCell{Row: 0, Date: week[1], Hours: 3}, nil)

	ops := Partition(s)
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(ops))
	}

	if ops[0].Kind != OpUpdate || ops[0].EntryID != "e1" || ops[0].Entry.Hours != 4 {
		t.Errorf("first op should update e1 with 4h: %+v", ops[0])
	}
	if ops[1].Kind != OpCreate || ops[1].EntryID != "" || ops[1].Entry.Date != week[1] {
		t.Errorf("second op should create on %s: %+v", week[1], ops[1])
	}
	if ops[1].Entry.ClientID != "c1" || ops[1].Entry.ProjectID != "p1" || ops[1].Entry.Task != "Support" {
		t.Errorf("create op did not inherit row fields: %+v", ops[1].Entry)
	}
}

func TestPartitionSkipsZeroCells(t *testing.T) {
	week := testWeek()
	s := BuildWeek(week, nil)
	s = Apply(s, SetRowField{Row: 0, Field: FieldTask, Value: "Support"}, testCat())
	s = Apply(s, SetCell{Row: 0, Date: week[0], Hours: 3}, nil)
	s = Apply(s, SetCell{Row: 0, Date: week[1], Hours: 0}, nil)

	ops := Partition(s)
	if len(ops) != 1 {
		t.Fatalf("got %d ops, want 1 (zero cell skipped)", len(ops))
	}
	if ops[0].Kind != OpCreate || ops[0].Entry.Date != week[0] || ops[0].Entry.Hours != 3 {
		t.Errorf("unexpected op: %+v", ops[0])
	}
}

func TestPartitionZeroedPersistedCellNotDeleted(t *testing.T) {
	week := testWeek()
	s := BuildWeek(week, []api.TimeEntry{
		{ID: "e1", Date: week[0], ClientID: "c1", ProjectID: "p1", Task: "Support", Hours: 2},
	})
	s = Apply(s, SetCell{Row: 0, Date: week[0], Hours: 0}, nil)

	// The persisted entry is left alone: no update, no delete.
	if ops := Partition(s); len(ops) != 0 {
		t.Errorf("zeroed persisted cell emitted ops: %+v", ops)
	}
}

func TestPartitionNoteFallback(t *testing.T) {
	week := testWeek()
	s := BuildWeek(week, nil)
	s = Apply(s, SetRowField{Row: 0, Field: FieldNote, Value: "weekly standup"}, testCat())
	s = Apply(s, SetCell{Row: 0, Date: week[0], Hours: 1}, nil)
	s = Apply(s, SetCell{Row: 0, Date: week[1], Hours: 1, Note: "own note"}, nil)

	ops := Partition(s)
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(ops))
	}
	if ops[0].Entry.Notes != "weekly standup" {
		t.Errorf("cell without note should fall back to row note, got %q", ops[0].Entry.Notes)
	}
	if ops[1].Entry.Notes != "own note" {
		t.Errorf("cell note should win over row note, got %q", ops[1].Entry.Notes)
	}
}

func TestPartitionOrderRowThenDay(t *testing.T) {
	week := testWeek()
	s := BuildWeek(week, nil)
	s = Apply(s, AddRow{}, nil)
	s = Apply(s, SetCell{Row: 1, Date: week[0], Hours: 1}, nil)
	s = Apply(s, SetCell{Row: 0, Date: week[4], Hours: 1}, nil)
	s = Apply(s, SetCell{Row: 0, Date: week[2], Hours: 1}, nil)

	ops := Partition(s)
	if len(ops) != 3 {
		t.Fatalf("got %d ops, want 3", len(ops))
	}
	if ops[0].Row != 0 || ops[0].Entry.Date != week[2] {
		t.Errorf("op order wrong: %+v", ops[0])
	}
	if ops[1].Row != 0 || ops[1].Entry.Date != week[4] {
		t.Errorf("op order wrong: %+v", ops[1])
	}
	if ops[2].Row != 1 {
		t.Errorf("op order wrong: %+v", ops[2])
	}
}

func TestDayTotals(t *testing.T) {
	week := testWeek()
	s := BuildWeek(week, []api.TimeEntry{
		{ID: "e1", Date: week[0], ClientID: "c1", ProjectID: "p1", Task: "A", Hours: 2},
		{ID: "e2", Date: week[0], ClientID: "c1", ProjectID: "p1", Task: "B", Hours: 3.5},
	})
	totals := DayTotals(s)
	if totals[week[0]] != 5.5 {
		t.Errorf("day total = %v, want 5.5", totals[week[0]])
	}
	if totals[week[1]] != 0 {
		t.Errorf("empty day total = %v, want 0", totals[week[1]])
	}
}

func TestExceedsGoal(t *testing.T) {
	tests := []struct {
		candidate, total, goal float64
		want                   bool
	}{
		{2, 7, 8, true},
		{0, 7, 8, false},
		{1, 6, 8, false},
		{1, 8, 8, true},
		{0, 100, 8, false}, // zero candidate never flags
	}
	for _, tt := range tests {
		if got := ExceedsGoal(tt.candidate, tt.total, tt.goal); got != tt.want {
			t.Errorf("ExceedsGoal(%v, %v, %v) = %v, want %v", tt.candidate, tt.total, tt.goal, got, tt.want)
		}
	}
}
