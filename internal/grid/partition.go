package grid

import (
	"github.com/skoglund/timegrid/internal/api"
	"github.com/skoglund/timegrid/internal/date"
)

type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
)

func (k OpKind) String() string {
	if k == OpUpdate {
		return "update"
	}
	return "create"
}

// Op is one submit operation for a single cell. Entry carries the full
// field set for creates; updates additionally carry the target EntryID.
// Row is the originating row index, kept for failure attribution.
type Op struct {
	Kind    OpKind
	EntryID string
	Row     int
	Entry   api.EntryRequest
}

// Partition walks the grid in row order, then day order within each row,
// and emits one operation per cell with hours > 0: a create when the cell
// has no backing entry, an update when it does. Zero-hour cells produce
// nothing; clearing a persisted cell to zero does not delete its entry.
func Partition(s State) []Op {
	var ops []Op

	for i, row := range s.Rows {
		for _, day := range s.Week {
			cell, ok := row.Cells[day]
			if !ok || cell.Hours <= 0 {
				continue
			}

			note := cell.Note
			if note == "" {
				note = row.Note
			}

			op := Op{
				Row: i,
				Entry: api.EntryRequest{
					Date:      day,
					ClientID:  row.ClientID,
					ProjectID: row.ProjectID,
					Task:      row.TaskName,
					Hours:     cell.Hours,
					Notes:     note,
				},
			}
			if cell.EntryID != "" {
				op.Kind = OpUpdate
				op.EntryID = cell.EntryID
			}

			ops = append(ops, op)
		}
	}

	return ops
}

// DayTotals sums the grid's hours per day, including pending edits.
func DayTotals(s State) map[date.Date]float64 {
	totals := make(map[date.Date]float64, 7)
	for _, row := range s.Rows {
		for _, day := range s.Week {
			if cell, ok := row.Cells[day]; ok {
				totals[day] += cell.Hours
			}
		}
	}
	return totals
}
