package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/datapass/internal/tile"
	"github.com/mmcdole/datapass/internal/tui/components"
	"github.com/mmcdole/datapass/internal/tui/styles"
)

// View renders the board
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}
	if m.State == StateHelp {
		return m.renderHelp()
	}

	header := styles.TitleStyle.Render("datapass")
	if m.Tiles != nil {
		header += "  " + renderTile(m.Tile)
	}

	var body string
	if len(m.Widgets) == 0 {
		body = styles.DimStyle.Render("No widgets placed. Press a to add one.")
	} else {
		now := m.Now()
		cards := make([]string, len(m.Widgets))
		for i, inst := range m.Widgets {
			cards[i] = m.card(inst).View(i == m.Selected, now)
		}
		body = components.JoinCards(cards, m.Width)
	}

	bodyHeight := max(m.Height-2, 0)
	view := lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body),
		m.renderFooter(),
	)

	if m.Picker.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.Picker.View())
	}
	if m.IDModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.IDModal.View())
	}
	return view
}

func renderTile(t tile.Tile) string {
	style := styles.DimStyle
	switch t.State {
	case tile.StateActive:
		style = styles.SuccessStyle
	case tile.StateUnavailable:
		style = styles.SpinnerStyle
	}
	return style.Render("[" + t.Label + "]")
}

// renderFooter renders a single-line footer: status left, hints right
func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	right := styles.HelpKeyStyle.Render("?") + styles.HelpDescStyle.Render(" help")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
WIDGETS                        OTHER
  h/l        Previous/next       t      Update tile
  Enter/r    Update selected     ?      This help
  R          Update all          q      Quit
  a          Add widget
  A          Add widget by id
  x          Remove widget
  c          Choose carrier

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}
