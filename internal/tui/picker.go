package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// pickerItem is one selectable id/label pair.
type pickerItem struct {
	id    string
	label string
}

// pickerModel is a filterable single-select list used for choosing the
// client, project, or task of a grid row.
type pickerModel struct {
	title     string
	items     []pickerItem
	filtered  []pickerItem
	cursor    int
	textInput textinput.Model

	chosen   *pickerItem
	canceled bool
}

func newPickerModel(title string, items []pickerItem) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Focus()

	return pickerModel{
		title:     title,
		items:     items,
		filtered:  items,
		textInput: ti,
	}
}

func (m pickerModel) Update(msg tea.Msg) (pickerModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			if m.cursor < len(m.filtered) {
				item := m.filtered[m.cursor]
				m.chosen = &item
			}
			return m, nil
		case "esc":
			m.canceled = true
			return m, nil
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)

	query := strings.ToLower(m.textInput.Value())
	m.filtered = nil
	for _, item := range m.items {
		if strings.Contains(strings.ToLower(item.label), query) {
			m.filtered = append(m.filtered, item)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
	}

	return m, cmd
}

func (m pickerModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")
	sb.WriteString(m.textInput.View())
	sb.WriteString("\n\n")

	if len(m.filtered) == 0 {
		sb.WriteString(dimStyle.Render("  (no matches)"))
		sb.WriteString("\n")
	}

	limit := 8
	if len(m.filtered) < limit {
		limit = len(m.filtered)
	}
	for i := 0; i < limit; i++ {
		prefix := "  "
		line := fmt.Sprintf("%s%s", prefix, m.filtered[i].label)
		if i == m.cursor {
			line = highlightStyle.Render("> " + m.filtered[i].label)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Enter: select • Esc: cancel • ↑/↓: move"))

	return boxStyle.Render(sb.String())
}
