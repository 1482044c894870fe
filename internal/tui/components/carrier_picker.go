package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/datapass/internal/carrier"
	"github.com/mmcdole/datapass/internal/tui/styles"
)

// Suggester ranks carriers against a typed query
type Suggester interface {
	Suggest(query string) []carrier.Supplier
}

// CarrierChoice is a confirmed picker selection
type CarrierChoice struct {
	WidgetID  int
	CarrierID string
}

// CarrierPicker filters the supported carriers as the user types
type CarrierPicker struct {
	visible  bool
	widgetID int
	current  string
	cursor   int
	options  []carrier.Supplier
	input    textinput.Model
	suggest  Suggester
}

// NewCarrierPicker creates a picker backed by s
func NewCarrierPicker(s Suggester) CarrierPicker {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.CharLimit = 40
	ti.Width = 24
	ti.Prompt = "> "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	return CarrierPicker{input: ti, suggest: s}
}

// Show opens the picker for a widget whose carrier is current
func (m *CarrierPicker) Show(widgetID int, current string) {
	m.visible = true
	m.widgetID = widgetID
	m.current = current
	m.input.SetValue("")
	m.input.Focus()
	m.filter()
	m.cursor = 0
	for i, s := range m.options {
		if s.ID() == current {
			m.cursor = i
			break
		}
	}
}

// Hide dismisses the picker
func (m *CarrierPicker) Hide() {
	m.visible = false
	m.input.Blur()
}

// IsVisible returns whether the picker is shown
func (m CarrierPicker) IsVisible() bool {
	return m.visible
}

// Options returns the carriers currently listed
func (m CarrierPicker) Options() []carrier.Supplier {
	return m.options
}

func (m *CarrierPicker) filter() {
	if m.suggest == nil {
		m.options = nil
		return
	}
	m.options = m.suggest.Suggest(m.input.Value())
	if m.cursor >= len(m.options) {
		m.cursor = max(len(m.options)-1, 0)
	}
}

// Update handles input. A non-nil choice means the user confirmed.
func (m CarrierPicker) Update(msg tea.Msg) (CarrierPicker, tea.Cmd, *CarrierChoice) {
	if !m.visible {
		return m, nil, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "down", "ctrl+n", "tab":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
			return m, nil, nil
		case "up", "ctrl+p", "shift+tab":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil, nil
		case "enter":
			if len(m.options) == 0 {
				return m, nil, nil
			}
			choice := &CarrierChoice{WidgetID: m.widgetID, CarrierID: m.options[m.cursor].ID()}
			m.Hide()
			return m, nil, choice
		case "esc":
			m.Hide()
			return m, nil, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filter()
	return m, cmd, nil
}

// View renders the picker
func (m CarrierPicker) View() string {
	if !m.visible {
		return ""
	}

	const width = 26
	lines := []string{m.input.View(), ""}
	if len(m.options) == 0 {
		lines = append(lines, styles.DimStyle.Render("no matching carrier"))
	}
	for i, s := range m.options {
		prefix := "  "
		if s.ID() == m.current {
			prefix = "✓ "
		}
		text := styles.Pad(prefix+s.Name(), width)
		switch {
		case i == m.cursor:
			lines = append(lines, lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight).Render(text))
		case s.ID() == m.current:
			lines = append(lines, styles.AccentStyle.Render(text))
		default:
			lines = append(lines, styles.SubtitleStyle.Render(text))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.GaugeOrange).
		Background(styles.SlateDark).
		Padding(0, 1).
		Render(styles.ModalTitleStyle.Render("Carrier") + "\n" + strings.Join(lines, "\n"))
}
