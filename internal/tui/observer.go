package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/tile"
)

// Bridge adapts renderer, notifier and tile callbacks to a channel the
// Bubble Tea loop drains. Intermediate animation frames are dropped when
// the channel is full; settled frames, notifications and tiles are not.
type Bridge struct {
	ch   chan tea.Msg
	done chan struct{}
}

// NewBridge creates a bridge with the given buffer size
func NewBridge(size int) *Bridge {
	return &Bridge{ch: make(chan tea.Msg, size), done: make(chan struct{})}
}

// Close stops delivery; pending senders return
func (b *Bridge) Close() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}

func (b *Bridge) Render(f domain.Frame) {
	if f.ClickEnabled {
		b.send(FrameMsg{Frame: f})
		return
	}
	select {
	case b.ch <- FrameMsg{Frame: f}:
	default:
	}
}

func (b *Bridge) Notify(_ context.Context, n domain.Notification) {
	b.send(NotificationMsg{Notification: n})
}

// ShowTile matches the tile service's show callback
func (b *Bridge) ShowTile(t tile.Tile) {
	b.send(TileMsg{Tile: t})
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

// Listen reads the next message from the bridge
func (b *Bridge) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return bridgeClosedMsg{}
		}
	}
}
