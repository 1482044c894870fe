package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateHelp {
		m.State = StateBoard
		return m, nil
	}

	if handled, newModel, cmd := m.routeToModal(msg); handled {
		return newModel, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Left):
		if m.Selected > 0 {
			m.Selected--
		}
		return m, nil

	case key.Matches(msg, Keys.Right):
		if m.Selected < len(m.Widgets)-1 {
			m.Selected++
		}
		return m, nil

	case key.Matches(msg, Keys.Tap):
		inst, ok := m.selected()
		if !ok {
			return m, nil
		}
		// an animating widget ignores taps
		if !m.card(inst).Clickable() {
			return m, nil
		}
		return m, TapCmd(m.Board, inst.ID)

	case key.Matches(msg, Keys.RefreshAll):
		if len(m.Widgets) == 0 {
			return m, nil
		}
		return m, RefreshAllCmd(m.Board)

	case key.Matches(msg, Keys.Add):
		return m, PlaceWidgetCmd(m.Board, m.nextID())

	case key.Matches(msg, Keys.AddWithID):
		m.IDModal.Show("Place widget")
		return m, nil

	case key.Matches(msg, Keys.Delete):
		if inst, ok := m.selected(); ok {
			return m, RemoveWidgetCmd(m.Board, inst.ID)
		}
		return m, nil

	case key.Matches(msg, Keys.Carrier):
		if inst, ok := m.selected(); ok {
			m.Picker.Show(inst.ID, inst.CarrierID)
		}
		return m, nil

	case key.Matches(msg, Keys.Tile):
		if m.Tiles != nil && m.Tile.Clickable() {
			return m, TileClickCmd(m.Tiles)
		}
		return m, nil
	}

	return m, nil
}

// routeToModal sends the key to an open modal
func (m Model) routeToModal(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch {
	case m.Picker.IsVisible():
		picker, cmd, choice := m.Picker.Update(msg)
		m.Picker = picker
		if choice != nil {
			return true, m, ReassignCarrierCmd(m.Board, choice.WidgetID, choice.CarrierID)
		}
		return true, m, cmd

	case m.IDModal.IsVisible():
		modal, cmd, id, ok := m.IDModal.Update(msg)
		m.IDModal = modal
		if ok {
			return true, m, PlaceWidgetCmd(m.Board, id)
		}
		return true, m, cmd
	}
	return false, m, nil
}
