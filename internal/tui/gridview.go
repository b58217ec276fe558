package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skoglund/timegrid/internal/grid"
)

func (a *GridApp) View() string {
	switch a.state {
	case gridNavView:
		return a.navView()
	case gridCellEditView:
		return a.navView() + "\n" + a.cellInput.View()
	case gridPickerView:
		return a.picker.View()
	case gridSubmitView:
		return a.spinner.View() + " Submitting entries..."
	case gridDoneView:
		return a.doneView()
	}
	return ""
}

func (a *GridApp) navView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Week %s – %s", a.gridState.Week[0], a.gridState.Week[6])))
	sb.WriteString("\n")

	// Column headers: weekday abbreviation and day of month.
	sb.WriteString(fmt.Sprintf("%-30s", ""))
	for _, day := range a.days {
		label := fmt.Sprintf("%-6s", fmt.Sprintf("%s %2d", day.Date.Weekday().String()[:3], day.Date.Day))
		switch {
		case day.IsToday:
			label = selectedStyle.Render(label)
		case day.Forbidden:
			label = dimStyle.Render(label)
		}
		sb.WriteString(label)
		sb.WriteString(" ")
	}
	sb.WriteString("\n")

	for i, row := range a.gridState.Rows {
		sb.WriteString(a.rowLabel(i, row))
		for j, day := range a.gridState.Week {
			cell := row.Cells[day]
			text := fmt.Sprintf("%6s", formatHours(cell.Hours))
			switch {
			case i == a.row && j == a.col:
				text = highlightStyle.Render(text)
			case a.days[j].Forbidden:
				text = dimStyle.Render(text)
			case cell.EntryID != "":
				text = savedStyle.Render(text)
			}
			sb.WriteString(text)
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}

	// Totals with goal advisory.
	totals := grid.DayTotals(a.gridState)
	sb.WriteString(dimStyle.Render(fmt.Sprintf("%-30s", "Total")))
	for _, day := range a.gridState.Week {
		text := fmt.Sprintf("%6s", formatHours(totals[day]))
		if a.goal > 0 && totals[day] > a.goal {
			text = warningStyle.Render(text)
		} else {
			text = dimStyle.Render(text)
		}
		sb.WriteString(text)
		sb.WriteString(" ")
	}
	sb.WriteString("\n")

	for _, day := range a.days {
		if day.HolidayName != "" {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("%s: %s", day.Date, day.HolidayName)))
			sb.WriteString("\n")
		}
	}

	if a.errMsg != "" {
		sb.WriteString(errorStyle.Render(a.errMsg))
		sb.WriteString("\n")
	}
	for _, e := range a.validation.Errors {
		sb.WriteString(warningStyle.Render("  " + e.Error()))
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("arrows: move • Enter: edit cell • c/p/t: client/project/task • n: row note • a: add row • s: submit • q: quit"))

	return boxStyle.Render(sb.String())
}

func (a *GridApp) rowLabel(i int, row grid.Row) string {
	label := "(new row)"
	if row.ClientID != "" || row.TaskName != "" {
		parts := []string{}
		if name := a.cat.ClientName(row.ClientID); name != "" {
			parts = append(parts, name)
		}
		if name := a.cat.ProjectName(row.ProjectID); name != "" {
			parts = append(parts, name)
		}
		if row.TaskName != "" {
			parts = append(parts, row.TaskName)
		}
		label = strings.Join(parts, " / ")
	}
	if len(label) > 28 {
		label = label[:27] + "…"
	}

	text := fmt.Sprintf("%-30s", label)
	if i == a.row {
		return selectedStyle.Render(text)
	}
	return text
}

func (a *GridApp) doneView() string {
	var sb strings.Builder

	failed := 0
	for _, r := range a.result.Results {
		if r.Err != nil {
			failed++
		}
	}

	if failed == 0 {
		sb.WriteString(successStyle.Render(fmt.Sprintf("Submitted %d operations.", len(a.result.Results))))
	} else {
		sb.WriteString(warningStyle.Render(fmt.Sprintf("Submitted %d of %d operations; %d failed.",
			len(a.result.Results)-failed, len(a.result.Results), failed)))
		sb.WriteString("\n\n")
		for _, r := range a.result.Results {
			if r.Err == nil {
				continue
			}
			sb.WriteString(errorStyle.Render(fmt.Sprintf("  row %d, %s (%s): %v",
				r.Op.Row+1, r.Op.Entry.Date, r.Op.Kind, r.Err)))
			sb.WriteString("\n")
		}
		sb.WriteString(dimStyle.Render("Failed operations were saved; run 'timegrid retry' to resubmit."))
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Press any key to exit"))
	return sb.String()
}

func formatHours(h float64) string {
	if h == 0 {
		return "·"
	}
	return strconv.FormatFloat(h, 'g', 4, 64)
}
