package grid

import (
	"testing"

	"github.com/skoglund/timegrid/internal/api"
	"github.com/skoglund/timegrid/internal/catalog"
)

func testCat() *catalog.Catalog {
	return catalog.New(&api.Catalog{
		Clients: []api.Client{
			{ID: "c1", Name: "Acme"},
			{ID: "c2", Name: "Globex"},
			{ID: "empty", Name: "Shell Corp"},
		},
		Projects: []api.Project{
			{ID: "p1", Name: "Website", ClientID: "c1"},
			{ID: "p2", Name: "Mobile App", ClientID: "c1"},
			{ID: "p3", Name: "Migration", ClientID: "c2"},
		},
		Tasks: []api.Task{
			{ID: "t1", Name: "Design", ProjectID: "p1"},
			{ID: "t2", Name: "Development", ProjectID: "p1"},
			{ID: "t3", Name: "Planning", ProjectID: "p3"},
		},
	})
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	week := testWeek()
	before := BuildWeek(week, nil)
	after := Apply(before, SetCell{Row: 0, Date: week[0], Hours: 5}, nil)

	if len(before.Rows[0].Cells) != 0 {
		t.Error("Apply mutated the input state")
	}
	if after.Rows[0].Cells[week[0]].Hours != 5 {
		t.Error("Apply did not record the edit")
	}
}

func TestSetCellPreservesEntryID(t *testing.T) {
	week := testWeek()
	s := BuildWeek(week, []api.TimeEntry{
		{ID: "e1", Date: week[0], ClientID: "c1", ProjectID: "p1", Task: "Design", Hours: 2},
	})
	s = Apply(s, SetCell{Row: 0, Date: week[0], Hours: 6, Note: "more"}, nil)

	cell := s.Rows[0].Cells[week[0]]
	if cell.EntryID != "e1" {
		t.Errorf("edit dropped the entry id: %+v", cell)
	}
	if cell.Hours != 6 || cell.Note != "more" {
		t.Errorf("edit not applied: %+v", cell)
	}
}

func TestSetCellIgnoresOutOfWeekDate(t *testing.T) {
	week := testWeek()
	s := BuildWeek(week, nil)
	s2 := Apply(s, SetCell{Row: 0, Date: week[0].AddDays(-7), Hours: 5}, nil)
	if len(s2.Rows[0].Cells) != 0 {
		t.Error("cell outside the week was written")
	}
}

func TestSetCellIgnoresBadRow(t *testing.T) {
	week := testWeek()
	s := BuildWeek(week, nil)
	for _, row := range []int{-1, 1, 99} {
		s2 := Apply(s, SetCell{Row: row, Date: week[0], Hours: 5}, nil)
		if len(s2.Rows[0].Cells) != 0 {
			t.Errorf("row %d edit was applied", row)
		}
	}
}

func TestClientChangeCascades(t *testing.T) {
	s := BuildWeek(testWeek(), nil)
	s = Apply(s, SetRowField{Row: 0, Field: FieldClient, Value: "c1"}, testCat())

	row := s.Rows[0]
	if row.ClientID != "c1" || row.ProjectID != "p1" || row.TaskName != "Design" {
		t.Errorf("client cascade wrong: %+v", row)
	}
}

func TestClientChangeToClientWithoutProjects(t *testing.T) {
	s := BuildWeek(testWeek(), nil)
	s = Apply(s, SetRowField{Row: 0, Field: FieldClient, Value: "c1"}, testCat())
	s = Apply(s, SetRowField{Row: 0, Field: FieldClient, Value: "empty"}, testCat())

	row := s.Rows[0]
	if row.ClientID != "empty" {
		t.Errorf("client not set: %+v", row)
	}
	if row.ProjectID != "" || row.TaskName != "" {
		t.Errorf("stale project/task survived the cascade: %+v", row)
	}
}

func TestProjectChangeResetsTask(t *testing.T) {
	cat := testCat()
	s := BuildWeek(testWeek(), nil)
	s = Apply(s, SetRowField{Row: 0, Field: FieldClient, Value: "c1"}, cat)
	s = Apply(s, SetRowField{Row: 0, Field: FieldTask, Value: "Development"}, cat)
	// Switching to a project with no tasks clears the task.
	s = Apply(s, SetRowField{Row: 0, Field: FieldProject, Value: "p2"}, cat)

	row := s.Rows[0]
	if row.ProjectID != "p2" || row.TaskName != "" {
		t.Errorf("project cascade wrong: %+v", row)
	}
}

func TestProjectFromOtherClientRejected(t *testing.T) {
	cat := testCat()
	s := BuildWeek(testWeek(), nil)
	s = Apply(s, SetRowField{Row: 0, Field: FieldClient, Value: "c1"}, cat)
	// p3 belongs to c2; the edit must leave the row alone.
	s = Apply(s, SetRowField{Row: 0, Field: FieldProject, Value: "p3"}, cat)

	if got := s.Rows[0].ProjectID; got != "p1" {
		t.Errorf("ProjectID = %q, want p1", got)
	}
}

func TestCascadeInvariantHolds(t *testing.T) {
	cat := testCat()
	s := BuildWeek(testWeek(), nil)

	// Arbitrary edit sequence: the containment invariant must hold after each.
	actions := []Action{
		SetRowField{Row: 0, Field: FieldClient, Value: "c1"},
		SetRowField{Row: 0, Field: FieldProject, Value: "p2"},
		SetRowField{Row: 0, Field: FieldClient, Value: "c2"},
		SetRowField{Row: 0, Field: FieldClient, Value: "empty"},
		SetRowField{Row: 0, Field: FieldClient, Value: "c1"},
	}
	for _, a := range actions {
		s = Apply(s, a, cat)
		row := s.Rows[0]
		if row.ProjectID != "" && !cat.ProjectBelongsTo(row.ProjectID, row.ClientID) {
			t.Fatalf("after %+v: project %q not under client %q", a, row.ProjectID, row.ClientID)
		}
	}
}

func TestAddRow(t *testing.T) {
	s := BuildWeek(testWeek(), nil)
	s = Apply(s, AddRow{}, nil)
	if len(s.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(s.Rows))
	}
	if s.Rows[1].Cells == nil {
		t.Error("new row has nil cell map")
	}
}
