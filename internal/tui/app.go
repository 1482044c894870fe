// Package tui renders the widget board in a terminal.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/scheduler"
	"github.com/mmcdole/datapass/internal/tile"
	"github.com/mmcdole/datapass/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBoard ApplicationState = iota
	StateHelp
)

const (
	tickInterval  = time.Second
	statusTimeout = 3 * time.Second
)

// Board is the widget host the TUI drives
type Board interface {
	Place(id int) (domain.WidgetInstance, scheduler.RequestResult, error)
	Remove(id int) error
	Reassign(id int, carrierID string) error
	RequestRefresh(id int, mode domain.UpdateMode) scheduler.RequestResult
	RefreshAll(mode domain.UpdateMode)
	Widgets() []domain.WidgetInstance
}

// TileService is the quick-settings tile
type TileService interface {
	Current() tile.Tile
	Click(ctx context.Context) bool
}

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Ready bool

	Board  Board
	Tiles  TileService // nil hides the tile
	bridge *Bridge

	Picker  components.CarrierPicker
	IDModal components.IDModal

	Widgets  []domain.WidgetInstance
	Frames   map[int]domain.Frame
	Tile     tile.Tile
	Selected int

	Width  int
	Height int

	StatusMsg   string
	StatusIsErr bool

	Now func() time.Time
}

// NewModel creates the board model. bridge and tiles may be nil.
func NewModel(board Board, carriers components.Suggester, tiles TileService, bridge *Bridge) Model {
	m := Model{
		State:   StateBoard,
		Board:   board,
		Tiles:   tiles,
		bridge:  bridge,
		Picker:  components.NewCarrierPicker(carriers),
		IDModal: components.NewIDModal(),
		Frames:  make(map[int]domain.Frame),
		Now:     time.Now,
	}
	if tiles != nil {
		m.Tile = tiles.Current()
	}
	m.reloadWidgets()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), TickCmd(tickInterval))
}

func (m Model) listen() tea.Cmd {
	if m.bridge == nil {
		return nil
	}
	return m.bridge.Listen()
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case FrameMsg:
		m.Frames[msg.Frame.WidgetID] = msg.Frame
		if msg.Frame.ClickEnabled {
			m.reloadWidgets()
		}
		return m, m.listen()

	case NotificationMsg:
		n := msg.Notification
		m.StatusMsg = fmt.Sprintf("#%d: %s", n.WidgetID, n.Message)
		m.StatusIsErr = n.Kind != domain.NotifySuccess
		return m, tea.Batch(m.listen(), ClearStatusCmd(statusTimeout))

	case TileMsg:
		m.Tile = msg.Tile
		return m, m.listen()

	case bridgeClosedMsg:
		return m, nil

	case WidgetPlacedMsg:
		m.reloadWidgets()
		m.selectWidget(msg.Widget.ID)
		m.StatusMsg = fmt.Sprintf("Widget #%d placed (%s)", msg.Widget.ID, msg.Result)
		m.StatusIsErr = false
		return m, ClearStatusCmd(statusTimeout)

	case WidgetRemovedMsg:
		delete(m.Frames, msg.ID)
		m.reloadWidgets()
		m.StatusMsg = fmt.Sprintf("Widget #%d removed", msg.ID)
		m.StatusIsErr = false
		return m, ClearStatusCmd(statusTimeout)

	case CarrierChangedMsg:
		m.reloadWidgets()
		m.StatusMsg = fmt.Sprintf("Widget #%d now uses %s", msg.ID, msg.Carrier)
		m.StatusIsErr = false
		return m, ClearStatusCmd(statusTimeout)

	case RefreshRequestedMsg:
		switch msg.Result {
		case scheduler.Accepted:
			return m, nil
		case scheduler.Debounced:
			m.StatusMsg = "Updated moments ago, try again shortly"
		case scheduler.Busy:
			m.StatusMsg = "Already updating"
		default:
			m.StatusMsg = fmt.Sprintf("Widget #%d is gone", msg.ID)
		}
		m.StatusIsErr = false
		return m, ClearStatusCmd(statusTimeout)

	case TickMsg:
		m.reloadWidgets()
		return m, TickCmd(tickInterval)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case ErrMsg:
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(statusTimeout)
	}

	return m, nil
}

func (m *Model) reloadWidgets() {
	if m.Board == nil {
		return
	}
	m.Widgets = m.Board.Widgets()
	if m.Selected >= len(m.Widgets) {
		m.Selected = max(len(m.Widgets)-1, 0)
	}
}

func (m *Model) selectWidget(id int) {
	for i, w := range m.Widgets {
		if w.ID == id {
			m.Selected = i
			return
		}
	}
}

// selected returns the highlighted widget
func (m Model) selected() (domain.WidgetInstance, bool) {
	if len(m.Widgets) == 0 {
		return domain.WidgetInstance{}, false
	}
	return m.Widgets[m.Selected], true
}

func (m Model) card(inst domain.WidgetInstance) components.Card {
	f, ok := m.Frames[inst.ID]
	return components.Card{Widget: inst, Frame: f, Drawn: ok}
}

// nextID picks an id one above the highest placed widget
func (m Model) nextID() int {
	next := 1
	for _, w := range m.Widgets {
		if w.ID >= next {
			next = w.ID + 1
		}
	}
	return next
}
