package grid

import (
	"github.com/skoglund/timegrid/internal/catalog"
	"github.com/skoglund/timegrid/internal/date"
)

// Action is an edit applied to the grid through Apply.
type Action interface {
	isAction()
}

// SetCell writes a cell's hours and note. The cell's EntryID is preserved;
// editing a persisted cell makes it an update target, never a create.
type SetCell struct {
	Row   int
	Date  date.Date
	Hours float64
	Note  string
}

// RowField selects which row-level field SetRowField changes.
type RowField int

const (
	FieldClient RowField = iota
	FieldProject
	FieldTask
	FieldNote
)

// SetRowField changes a row's client, project, task, or fallback note.
// Client and project changes cascade so task ⊆ project ⊆ client holds after
// every edit: a new client resets the project to that client's first project
// and the task to that project's first task; a new project resets the task.
type SetRowField struct {
	Row   int
	Field RowField
	Value string
}

// AddRow appends an empty row.
type AddRow struct{}

func (SetCell) isAction()     {}
func (SetRowField) isAction() {}
func (AddRow) isAction()      {}

// Apply returns the state after the action. The input state is not
// modified; out-of-range row indexes and dates outside the week are
// ignored and return the state unchanged.
func Apply(s State, a Action, cat *catalog.Catalog) State {
	switch act := a.(type) {
	case SetCell:
		if act.Row < 0 || act.Row >= len(s.Rows) {
			return s
		}
		if !s.contains(act.Date) {
			return s
		}

		rows := s.cloneRows()
		cell := rows[act.Row].Cells[act.Date]
		cell.Hours = act.Hours
		cell.Note = act.Note
		rows[act.Row].Cells[act.Date] = cell
		return State{Week: s.Week, Rows: rows}

	case SetRowField:
		if act.Row < 0 || act.Row >= len(s.Rows) {
			return s
		}

		rows := s.cloneRows()
		row := &rows[act.Row]

		switch act.Field {
		case FieldClient:
			row.ClientID = act.Value
			row.ProjectID = cat.FirstProjectID(act.Value)
			row.TaskName = cat.FirstTaskName(row.ProjectID)
		case FieldProject:
			if row.ClientID != "" && !cat.ProjectBelongsTo(act.Value, row.ClientID) {
				return s
			}
			row.ProjectID = act.Value
			row.TaskName = cat.FirstTaskName(act.Value)
		case FieldTask:
			row.TaskName = act.Value
		case FieldNote:
			row.Note = act.Value
		}
		return State{Week: s.Week, Rows: rows}

	case AddRow:
		rows := s.cloneRows()
		rows = append(rows, emptyRow())
		return State{Week: s.Week, Rows: rows}
	}

	return s
}

func (s State) contains(d date.Date) bool {
	for _, day := range s.Week {
		if day == d {
			return true
		}
	}
	return false
}
