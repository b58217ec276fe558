package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skoglund/timegrid/internal/catalog"
	"github.com/skoglund/timegrid/internal/date"
	"github.com/skoglund/timegrid/internal/grid"
	"github.com/skoglund/timegrid/internal/submit"
)

type gridViewState int

const (
	gridNavView gridViewState = iota
	gridCellEditView
	gridPickerView
	gridSubmitView
	gridDoneView
)

type submitDoneMsg struct {
	results []submit.Result
}

// Result reports what the grid session did once the program exits.
type Result struct {
	Submitted bool
	Results   []submit.Result
}

// GridApp is the Bubbletea model for the weekly grid editor.
type GridApp struct {
	state      gridViewState
	gridState  grid.State
	days       [7]date.Day
	cat        *catalog.Catalog
	submitter  *submit.Submitter
	goal       float64
	validation grid.ValidationResult

	row, col    int
	cellInput   textinput.Model
	editingNote bool
	picker      pickerModel
	pickerField grid.RowField
	spinner     spinner.Model

	result *Result
	errMsg string
}

func NewGridApp(
	state grid.State,
	days [7]date.Day,
	cat *catalog.Catalog,
	submitter *submit.Submitter,
	goal float64,
) *GridApp {
	s := spinner.New()
	s.Spinner = spinner.Dot

	ti := textinput.New()
	ti.CharLimit = 120
	ti.Width = 40

	return &GridApp{
		state:     gridNavView,
		gridState: state,
		days:      days,
		cat:       cat,
		submitter: submitter,
		goal:      goal,
		cellInput: ti,
		spinner:   s,
	}
}

func (a *GridApp) Init() tea.Cmd {
	return a.spinner.Tick
}

func (a *GridApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.result = &Result{}
			return a, tea.Quit
		}
	case submitDoneMsg:
		a.result = &Result{Submitted: true, Results: msg.results}
		a.state = gridDoneView
		return a, nil
	}

	switch a.state {
	case gridNavView:
		return a.updateNav(msg)
	case gridCellEditView:
		return a.updateCellEdit(msg)
	case gridPickerView:
		return a.updatePicker(msg)
	case gridSubmitView:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case gridDoneView:
		if _, ok := msg.(tea.KeyMsg); ok {
			return a, tea.Quit
		}
	}

	return a, nil
}

func (a *GridApp) GetResult() *Result {
	return a.result
}

func (a *GridApp) updateNav(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	switch keyMsg.String() {
	case "q", "esc":
		a.result = &Result{}
		return a, tea.Quit
	case "up", "k":
		if a.row > 0 {
			a.row--
		}
	case "down", "j":
		if a.row < len(a.gridState.Rows)-1 {
			a.row++
		}
	case "left", "h":
		if a.col > 0 {
			a.col--
		}
	case "right", "l":
		if a.col < 6 {
			a.col++
		}
	case "enter":
		return a.startCellEdit()
	case "c":
		return a.startPicker(grid.FieldClient)
	case "p":
		return a.startPicker(grid.FieldProject)
	case "t":
		return a.startPicker(grid.FieldTask)
	case "n":
		return a.startNoteEdit()
	case "a":
		a.gridState = grid.Apply(a.gridState, grid.AddRow{}, a.cat)
		a.row = len(a.gridState.Rows) - 1
	case "s":
		return a.startSubmit()
	}

	return a, nil
}

func (a *GridApp) startCellEdit() (tea.Model, tea.Cmd) {
	day := a.gridState.Week[a.col]
	cell := a.gridState.Rows[a.row].Cells[day]

	value := ""
	if cell.Hours != 0 {
		value = formatHours(cell.Hours)
		if cell.Note != "" {
			value += "; " + cell.Note
		}
	}
	a.cellInput.SetValue(value)
	a.cellInput.Placeholder = "hours[; note]"
	a.state = gridCellEditView
	return a, a.cellInput.Focus()
}

func (a *GridApp) startNoteEdit() (tea.Model, tea.Cmd) {
	a.cellInput.SetValue(a.gridState.Rows[a.row].Note)
	a.cellInput.Placeholder = "Row note (used for cells without their own)"
	a.editingNote = true
	a.state = gridCellEditView
	return a, a.cellInput.Focus()
}

func (a *GridApp) updateCellEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			a.applyCellEdit()
			a.cellInput.Blur()
			a.state = gridNavView
			return a, nil
		case "esc":
			a.cellInput.Blur()
			a.editingNote = false
			a.state = gridNavView
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.cellInput, cmd = a.cellInput.Update(msg)
	return a, cmd
}

func (a *GridApp) applyCellEdit() {
	value := strings.TrimSpace(a.cellInput.Value())

	if a.editingNote {
		a.gridState = grid.Apply(a.gridState, grid.SetRowField{
			Row: a.row, Field: grid.FieldNote, Value: value,
		}, a.cat)
		a.editingNote = false
		return
	}

	hoursPart := value
	note := ""
	if i := strings.Index(value, ";"); i >= 0 {
		hoursPart = strings.TrimSpace(value[:i])
		note = strings.TrimSpace(value[i+1:])
	}

	hours := 0.0
	if hoursPart != "" {
		v, err := strconv.ParseFloat(hoursPart, 64)
		if err != nil {
			a.errMsg = fmt.Sprintf("invalid hours %q", hoursPart)
			return
		}
		hours = v
	}

	a.errMsg = ""
	day := a.gridState.Week[a.col]

	if a.goal > 0 {
		rest := grid.DayTotals(a.gridState)[day] - a.gridState.Rows[a.row].Cells[day].Hours
		if grid.ExceedsGoal(hours, rest, a.goal) {
			a.errMsg = fmt.Sprintf("heads up: %s goes over the %gh goal", day, a.goal)
		}
	}

	a.gridState = grid.Apply(a.gridState, grid.SetCell{
		Row: a.row, Date: day, Hours: hours, Note: note,
	}, a.cat)
}

func (a *GridApp) startPicker(field grid.RowField) (tea.Model, tea.Cmd) {
	row := a.gridState.Rows[a.row]
	var title string
	var items []pickerItem

	switch field {
	case grid.FieldClient:
		title = "Select Client"
		for _, c := range a.cat.Clients() {
			items = append(items, pickerItem{id: c.ID, label: c.Name})
		}
	case grid.FieldProject:
		if row.ClientID == "" {
			a.errMsg = "pick a client first"
			return a, nil
		}
		title = "Select Project"
		for _, p := range a.cat.ProjectsFor(row.ClientID) {
			items = append(items, pickerItem{id: p.ID, label: p.Name})
		}
	case grid.FieldTask:
		if row.ProjectID == "" {
			a.errMsg = "pick a project first"
			return a, nil
		}
		title = "Select Task"
		for _, t := range a.cat.TasksFor(row.ProjectID) {
			items = append(items, pickerItem{id: t.Name, label: t.Name})
		}
	}

	a.errMsg = ""
	a.picker = newPickerModel(title, items)
	a.pickerField = field
	a.state = gridPickerView
	return a, textinput.Blink
}

func (a *GridApp) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)

	if a.picker.canceled {
		a.state = gridNavView
		return a, nil
	}
	if a.picker.chosen != nil {
		a.gridState = grid.Apply(a.gridState, grid.SetRowField{
			Row: a.row, Field: a.pickerField, Value: a.picker.chosen.id,
		}, a.cat)
		a.state = gridNavView
		return a, nil
	}

	return a, cmd
}

func (a *GridApp) startSubmit() (tea.Model, tea.Cmd) {
	a.validation = grid.Validate(a.gridState)
	if !a.validation.OK() {
		a.errMsg = fmt.Sprintf("%d validation errors, nothing submitted", len(a.validation.Errors))
		return a, nil
	}

	ops := grid.Partition(a.gridState)
	if len(ops) == 0 {
		a.errMsg = "nothing to submit"
		return a, nil
	}

	a.errMsg = ""
	a.state = gridSubmitView
	return a, tea.Batch(a.spinner.Tick, a.dispatch(ops))
}

func (a *GridApp) dispatch(ops []grid.Op) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		results := a.submitter.Submit(ctx, ops)
		return submitDoneMsg{results: results}
	}
}
