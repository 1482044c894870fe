package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/datapass/internal/domain"
)

// Command factories for board operations

// PlaceWidgetCmd registers id and triggers its first refresh
func PlaceWidgetCmd(b Board, id int) tea.Cmd {
	return func() tea.Msg {
		inst, res, err := b.Place(id)
		if err != nil {
			return ErrMsg{Err: err, Context: "adding widget"}
		}
		return WidgetPlacedMsg{Widget: inst, Result: res}
	}
}

// RemoveWidgetCmd unregisters id
func RemoveWidgetCmd(b Board, id int) tea.Cmd {
	return func() tea.Msg {
		if err := b.Remove(id); err != nil {
			return ErrMsg{Err: err, Context: "removing widget"}
		}
		return WidgetRemovedMsg{ID: id}
	}
}

// ReassignCarrierCmd changes the carrier of id
func ReassignCarrierCmd(b Board, id int, carrierID string) tea.Cmd {
	return func() tea.Msg {
		if err := b.Reassign(id, carrierID); err != nil {
			return ErrMsg{Err: err, Context: "changing carrier"}
		}
		return CarrierChangedMsg{ID: id, Carrier: carrierID}
	}
}

// TapCmd asks for a regular refresh of id
func TapCmd(b Board, id int) tea.Cmd {
	return func() tea.Msg {
		return RefreshRequestedMsg{ID: id, Result: b.RequestRefresh(id, domain.UpdateRegular)}
	}
}

// RefreshAllCmd asks for a regular refresh of every widget
func RefreshAllCmd(b Board) tea.Cmd {
	return func() tea.Msg {
		b.RefreshAll(domain.UpdateRegular)
		return nil
	}
}

// TileClickCmd updates the tile; the result arrives through the bridge
func TileClickCmd(t TileService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		t.Click(ctx)
		return nil
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
