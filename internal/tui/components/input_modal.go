package components

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/datapass/internal/tui/styles"
)

// IDModal asks for a widget id
type IDModal struct {
	visible bool
	title   string
	invalid bool
	input   textinput.Model
}

// NewIDModal creates a new id modal
func NewIDModal() IDModal {
	ti := textinput.New()
	ti.Placeholder = "widget id"
	ti.CharLimit = 9
	ti.Width = 20
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	ti.Validate = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.Atoi(s)
		return err
	}

	return IDModal{input: ti}
}

// Show displays the modal with a title
func (m *IDModal) Show(title string) {
	m.visible = true
	m.title = title
	m.invalid = false
	m.input.SetValue("")
	m.input.Focus()
}

// Hide dismisses the modal
func (m *IDModal) Hide() {
	m.visible = false
	m.input.Blur()
}

// IsVisible returns whether the modal is shown
func (m IDModal) IsVisible() bool {
	return m.visible
}

// Update handles input events. It returns the entered id once a
// positive number is submitted.
func (m IDModal) Update(msg tea.Msg) (IDModal, tea.Cmd, int, bool) {
	if !m.visible {
		return m, nil, 0, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			id, err := strconv.Atoi(m.input.Value())
			if err != nil || id <= 0 {
				m.invalid = true
				return m, nil, 0, false
			}
			m.Hide()
			return m, nil, id, true
		case "esc":
			m.Hide()
			return m, nil, 0, false
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.invalid = false
	return m, cmd, 0, false
}

// View renders the modal
func (m IDModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 28
	bg := lipgloss.NewStyle().Width(modalWidth).Background(styles.SlateDark)

	lines := []string{
		bg.Foreground(styles.White).Bold(true).Render(m.title),
		bg.Render(""),
		bg.Render(m.input.View()),
	}
	if m.invalid {
		lines = append(lines, bg.Foreground(styles.Red).Render("enter a positive number"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.GaugeOrange).
		Background(styles.SlateDark).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
