// Package grid implements the weekly timesheet grid: rows keyed by
// (client, project, task) with one editable cell per weekday, rebuilt from
// the server's entries on load and partitioned into create and update
// operations on submit.
package grid

import (
	"github.com/skoglund/timegrid/internal/api"
	"github.com/skoglund/timegrid/internal/date"
)

// Cell is one editable (row, day) slot. A non-empty EntryID marks the cell
// as backed by a persisted entry, making it an update target.
type Cell struct {
	Hours   float64
	Note    string
	EntryID string
}

// Row is one (client, project, task) line across the week. Note is the
// row-level fallback used for cells without their own note.
type Row struct {
	ClientID  string
	ProjectID string
	TaskName  string
	Note      string
	Cells     map[date.Date]Cell
}

func (r Row) clone() Row {
	cells := make(map[date.Date]Cell, len(r.Cells))
	for d, c := range r.Cells {
		cells[d] = c
	}
	r.Cells = cells
	return r
}

// State is the full grid for one week. It is treated as immutable: edits go
// through Apply, which returns a new state.
type State struct {
	Week [7]date.Date
	Rows []Row
}

func (s State) cloneRows() []Row {
	rows := make([]Row, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = r.clone()
	}
	return rows
}

type rowKey struct {
	clientID  string
	projectID string
	task      string
}

// BuildWeek derives the grid from the week's persisted entries. Entries
// sharing (client, project, task) collapse into one row, in order of first
// appearance; entries outside the week are ignored. With no entries at all
// the grid gets a single empty placeholder row.
func BuildWeek(week [7]date.Date, entries []api.TimeEntry) State {
	inWeek := make(map[date.Date]bool, 7)
	for _, d := range week {
		inWeek[d] = true
	}

	var rows []Row
	index := make(map[rowKey]int)

	for _, e := range entries {
		if !inWeek[e.Date] {
			continue
		}

		key := rowKey{clientID: e.ClientID, projectID: e.ProjectID, task: e.Task}
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, Row{
				ClientID:  e.ClientID,
				ProjectID: e.ProjectID,
				TaskName:  e.Task,
				Cells:     make(map[date.Date]Cell, 7),
			})
		}

		rows[i].Cells[e.Date] = Cell{
			Hours:   e.Hours,
			Note:    e.Notes,
			EntryID: e.ID,
		}
	}

	if len(rows) == 0 {
		rows = append(rows, emptyRow())
	}

	return State{Week: week, Rows: rows}
}

func emptyRow() Row {
	return Row{Cells: make(map[date.Date]Cell, 7)}
}
