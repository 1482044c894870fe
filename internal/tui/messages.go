package tui

import (
	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/scheduler"
	"github.com/mmcdole/datapass/internal/tile"
)

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// FrameMsg carries one rendered widget frame
type FrameMsg struct {
	Frame domain.Frame
}

// NotificationMsg carries a toast raised by a refresh
type NotificationMsg struct {
	Notification domain.Notification
}

// TileMsg carries a new tile state
type TileMsg struct {
	Tile tile.Tile
}

// WidgetPlacedMsg signals that a widget was added or re-placed
type WidgetPlacedMsg struct {
	Widget domain.WidgetInstance
	Result scheduler.RequestResult
}

// WidgetRemovedMsg signals that a widget was removed
type WidgetRemovedMsg struct {
	ID int
}

// CarrierChangedMsg signals that a widget got a new carrier
type CarrierChangedMsg struct {
	ID      int
	Carrier string
}

// RefreshRequestedMsg reports the scheduler's answer to a tap
type RefreshRequestedMsg struct {
	ID     int
	Result scheduler.RequestResult
}

// TickMsg is sent periodically to update relative timestamps
type TickMsg struct{}

// ClearStatusMsg signals to clear the status message
type ClearStatusMsg struct{}

// bridgeClosedMsg ends the listen loop
type bridgeClosedMsg struct{}
