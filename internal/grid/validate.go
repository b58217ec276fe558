package grid

import "fmt"

// FieldError attributes a validation failure to a row and field.
type FieldError struct {
	Row     int
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row+1, e.Field, e.Message)
}

// ValidationResult collects the per-field errors for a grid. Both the
// quick-add flow and the grid submit consume the same result shape.
type ValidationResult struct {
	Errors []FieldError
}

func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// RowOK reports whether the given row passed validation; rows with errors
// submit nothing.
func (r ValidationResult) RowOK(row int) bool {
	for _, e := range r.Errors {
		if e.Row == row {
			return false
		}
	}
	return true
}

const maxHoursPerCell = 24

// Validate checks every row that has hours entered: client, project, and
// task must be set, and each cell's hours must be a sane positive amount.
// Rows with no hours anywhere are left alone; an untouched placeholder row
// is not an error.
func Validate(s State) ValidationResult {
	var result ValidationResult

	for i, row := range s.Rows {
		active := false
		for _, day := range s.Week {
			cell, ok := row.Cells[day]
			if !ok {
				continue
			}
			if cell.Hours != 0 {
				active = true
			}
			if cell.Hours < 0 {
				result.Errors = append(result.Errors, FieldError{
					Row: i, Field: "hours",
					Message: fmt.Sprintf("negative hours on %s", day),
				})
			}
			if cell.Hours > maxHoursPerCell {
				result.Errors = append(result.Errors, FieldError{
					Row: i, Field: "hours",
					Message: fmt.Sprintf("more than %d hours on %s", maxHoursPerCell, day),
				})
			}
		}

		if !active {
			continue
		}

		if row.ClientID == "" {
			result.Errors = append(result.Errors, FieldError{Row: i, Field: "client", Message: "client is required"})
		}
		if row.ProjectID == "" {
			result.Errors = append(result.Errors, FieldError{Row: i, Field: "project", Message: "project is required"})
		}
		if row.TaskName == "" {
			result.Errors = append(result.Errors, FieldError{Row: i, Field: "task", Message: "task is required"})
		}
	}

	return result
}
