// Package tile implements the quick-settings tile: a one-line usage
// readout for the carrier currently in use.
package tile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mmcdole/datapass/internal/carrier"
	"github.com/mmcdole/datapass/internal/domain"
)

// State of the tile
type State int

const (
	StateInactive    State = iota // failed, clickable
	StateActive                   // showing a percentage
	StateUnavailable              // updating, not clickable
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateUnavailable:
		return "unavailable"
	default:
		return "inactive"
	}
}

const (
	keyPercentage  = "trafficWastedPercentage"
	notInitialized = -1

	labelPrefix   = "Data"
	labelUpdating = "Updating…"
	labelError    = "Error"
)

// Tile is what the surface shows
type Tile struct {
	State      State  `json:"-"`
	StateName  string `json:"state"`
	Label      string `json:"label"`
	Percentage int    `json:"percentage"`
}

// Clickable reports whether a tap should start an update
func (t Tile) Clickable() bool { return t.State != StateUnavailable }

type resolver interface {
	Detect(operator string) string
	Resolve(id string) carrier.Supplier
}

// Service updates the tile on demand
type Service struct {
	resolver resolver
	kv       domain.KeyValueStore
	operator func() string
	show     func(Tile)
	logger   *slog.Logger

	busy    atomic.Bool
	mu      sync.RWMutex
	current Tile
}

// New creates a tile service. show receives every tile change and may be nil.
func New(r resolver, kv domain.KeyValueStore, operator func() string, show func(Tile), logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if show == nil {
		show = func(Tile) {}
	}
	return &Service{
		resolver: r,
		kv:       kv,
		operator: operator,
		show:     show,
		logger:   logger,
		current:  newTile(StateInactive, labelError, notInitialized),
	}
}

func newTile(state State, label string, pct int) Tile {
	return Tile{State: state, StateName: state.String(), Label: label, Percentage: pct}
}

// Current returns the tile as last shown
func (s *Service) Current() Tile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) set(t Tile) {
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()
	s.show(t)
}

// OnAdded shows the stored reading, updating first if there is none
func (s *Service) OnAdded(ctx context.Context) {
	pct := s.kv.GetInt(keyPercentage, notInitialized)
	if pct == notInitialized {
		s.Click(ctx)
		return
	}
	s.set(newTile(StateActive, label(pct), pct))
}

// Click updates the tile. It returns false when an update is already
// running.
func (s *Service) Click(ctx context.Context) bool {
	if !s.busy.CompareAndSwap(false, true) {
		return false
	}
	defer s.busy.Store(false)

	s.set(newTile(StateUnavailable, labelUpdating, s.Current().Percentage))

	id := s.resolver.Detect(s.operator())
	outcome := s.resolver.Resolve(id).Fetch(ctx)

	switch outcome.Kind {
	case domain.OutcomeSuccess, domain.OutcomeWasted:
		pct := 100
		if outcome.Kind == domain.OutcomeSuccess {
			pct = outcome.Snapshot.WastedPercentage
		}
		if err := s.kv.PutInt(keyPercentage, pct); err != nil {
			s.logger.Error("failed to store tile percentage", "error", err)
		}
		s.set(newTile(StateActive, label(pct), pct))
	default:
		s.logger.Warn("tile update failed", "carrier", id, "outcome", outcome.Kind.String(), "error", outcome.Err)
		s.set(newTile(StateInactive, labelError, s.kv.GetInt(keyPercentage, notInitialized)))
	}
	return true
}

func label(pct int) string {
	return fmt.Sprintf("%s: %d%%", labelPrefix, pct)
}
