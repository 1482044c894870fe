// Package scheduler gates and dispatches widget refreshes.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/metrics"
)

// Runner performs one refresh and reports its outcome. It may keep
// rendering after it returns.
type Runner interface {
	Refresh(ctx context.Context, inst domain.WidgetInstance, mode domain.UpdateMode) domain.FetchOutcome
}

// RequestResult says what happened to a refresh request
type RequestResult int

const (
	Accepted  RequestResult = iota
	Debounced               // inside MinInterval of the last refresh
	Busy                    // a refresh for this widget is in flight
	Unknown                 // widget not registered
)

func (r RequestResult) String() string {
	switch r {
	case Accepted:
		return metrics.RequestAccepted
	case Debounced:
		return metrics.RequestDebounced
	case Busy:
		return metrics.RequestBusy
	default:
		return metrics.RequestUnknown
	}
}

// Options configure a Scheduler
type Options struct {
	MinInterval  time.Duration
	SettleDelay  time.Duration
	AutoInterval time.Duration // zero disables periodic refresh

	// AssignCarrier picks the carrier id for a newly placed widget
	AssignCarrier func() string
	// OnRemove runs after a widget is unregistered
	OnRemove func(id int)
	// Now is the clock, time.Now when nil
	Now func() time.Time
}

// Scheduler owns the Idle/Refreshing state of every widget
type Scheduler struct {
	registry *Registry
	runner   Runner
	probe    domain.ConnectivityProbe
	opts     Options
	logger   *slog.Logger

	mu         sync.Mutex
	refreshing map[int]bool
	orphaned   map[int]bool // removed while refreshing, cleaned up by run

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

func New(registry *Registry, runner Runner, probe domain.ConnectivityProbe, opts Options, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AssignCarrier == nil {
		opts.AssignCarrier = func() string { return domain.CarrierNotSelectedID }
	}
	ctx, cancel := context.WithCancel(context.Background())
	metrics.RegisteredWidgets.Set(float64(registry.Len()))
	return &Scheduler{
		registry:   registry,
		runner:     runner,
		probe:      probe,
		opts:       opts,
		logger:     logger,
		refreshing: make(map[int]bool),
		orphaned:   make(map[int]bool),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Registry exposes the widget set
func (s *Scheduler) Registry() *Registry { return s.registry }

// Widgets lists every registered widget ordered by id
func (s *Scheduler) Widgets() []domain.WidgetInstance { return s.registry.All() }

// ShouldRefresh reports whether inst is outside the debounce window
func (s *Scheduler) ShouldRefresh(inst domain.WidgetInstance) bool {
	if inst.LastRefreshTimestamp.IsZero() {
		return true
	}
	return s.opts.Now().Sub(inst.LastRefreshTimestamp) > s.opts.MinInterval
}

// IsRefreshing reports whether a refresh of id is in flight
func (s *Scheduler) IsRefreshing(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshing[id]
}

// RequestRefresh starts a refresh of id unless it is in flight or
// was refreshed within MinInterval.
func (s *Scheduler) RequestRefresh(id int, mode domain.UpdateMode) RequestResult {
	result := s.request(id, mode)
	metrics.RefreshRequestsTotal.WithLabelValues(result.String()).Inc()
	return result
}

func (s *Scheduler) request(id int, mode domain.UpdateMode) RequestResult {
	s.mu.Lock()
	if s.refreshing[id] {
		s.mu.Unlock()
		s.logger.Debug("refresh dropped, already running", "widget", id)
		return Busy
	}
	inst, ok := s.registry.Get(id)
	if !ok {
		s.mu.Unlock()
		return Unknown
	}
	if !s.ShouldRefresh(inst) {
		s.mu.Unlock()
		s.logger.Debug("refresh debounced", "widget", id, "last", inst.LastRefreshTimestamp)
		return Debounced
	}
	s.refreshing[id] = true
	s.mu.Unlock()

	job := uuid.NewString()
	s.logger.Info("refresh accepted", "widget", id, "carrier", inst.CarrierID, "mode", mode.String(), "job", job)

	s.wg.Add(1)
	go s.run(job, inst, mode)
	return Accepted
}

func (s *Scheduler) run(job string, inst domain.WidgetInstance, mode domain.UpdateMode) {
	defer s.wg.Done()

	start := time.Now()
	outcome := s.runner.Refresh(s.ctx, inst, mode)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	metrics.FetchOutcomesTotal.WithLabelValues(outcome.Kind.String()).Inc()

	if err := s.registry.Touch(inst.ID, s.opts.Now()); err != nil && !errors.Is(err, domain.ErrWidgetNotFound) {
		s.logger.Error("failed to record refresh", "widget", inst.ID, "error", err)
	}

	s.mu.Lock()
	delete(s.refreshing, inst.ID)
	orphaned := s.orphaned[inst.ID]
	delete(s.orphaned, inst.ID)
	s.mu.Unlock()

	if orphaned {
		s.cleanup(inst.ID)
	}

	s.logger.Info("refresh finished", "widget", inst.ID, "outcome", outcome.Kind.String(), "job", job, "elapsed", time.Since(start))
}

// Place registers a new widget and refreshes it. An id that is
// already placed gets a silent refresh instead.
func (s *Scheduler) Place(id int) (domain.WidgetInstance, RequestResult, error) {
	if id <= 0 {
		return domain.WidgetInstance{}, Unknown, domain.ErrInvalidWidgetID
	}
	if inst, ok := s.registry.Get(id); ok {
		return inst, s.RequestRefresh(id, domain.UpdateSilent), nil
	}

	inst, added, err := s.registry.Register(id, s.opts.AssignCarrier())
	if err != nil {
		return domain.WidgetInstance{}, Unknown, err
	}
	if !added {
		return inst, s.RequestRefresh(id, domain.UpdateSilent), nil
	}
	metrics.RegisteredWidgets.Set(float64(s.registry.Len()))
	s.logger.Info("widget placed", "widget", id, "carrier", inst.CarrierID)
	return inst, s.RequestRefresh(id, domain.UpdateRegular), nil
}

// Remove unregisters a widget. OnRemove runs once any in-flight
// refresh of id has written its result.
func (s *Scheduler) Remove(id int) error {
	if err := s.registry.Remove(id); err != nil {
		return err
	}
	metrics.RegisteredWidgets.Set(float64(s.registry.Len()))
	s.logger.Info("widget removed", "widget", id)

	s.mu.Lock()
	busy := s.refreshing[id]
	if busy {
		s.orphaned[id] = true
	}
	s.mu.Unlock()
	if !busy {
		s.cleanup(id)
	}
	return nil
}

func (s *Scheduler) cleanup(id int) {
	if s.opts.OnRemove != nil {
		s.opts.OnRemove(id)
	}
}

// Reassign changes the carrier used by the next refresh of id
func (s *Scheduler) Reassign(id int, carrierID string) error {
	if err := s.registry.SetCarrier(id, carrierID); err != nil {
		return err
	}
	s.logger.Info("carrier reassigned", "widget", id, "carrier", carrierID)
	return nil
}

// OnConnectivityChange refreshes every widget once the new network has
// settled. Only cellular and WiFi trigger; cellular refreshes animate,
// WiFi refreshes render directly.
func (s *Scheduler) OnConnectivityChange() {
	conn := s.probe.Current()
	var mode domain.UpdateMode
	switch conn {
	case domain.ConnectivityCellular:
		mode = domain.UpdateSilent
	case domain.ConnectivityWiFi:
		mode = domain.UpdateUltraSilent
	default:
		s.logger.Debug("connectivity change ignored", "type", conn.String())
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if s.opts.SettleDelay > 0 {
			t := time.NewTimer(s.opts.SettleDelay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-s.ctx.Done():
				return
			}
		}
		s.RefreshAll(mode)
	}()
}

// RefreshAll requests a refresh of every widget
func (s *Scheduler) RefreshAll(mode domain.UpdateMode) {
	for _, inst := range s.registry.All() {
		s.RequestRefresh(inst.ID, mode)
	}
}

// Start begins the periodic silent refresh. Calling it again is a no-op.
func (s *Scheduler) Start() {
	if s.opts.AutoInterval <= 0 {
		return
	}
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.loop()
	})
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.AutoInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.logger.Debug("periodic refresh", "widgets", s.registry.Len())
			s.RefreshAll(domain.UpdateSilent)
		case <-s.ctx.Done():
			return
		}
	}
}

// Stop cancels in-flight work and waits for it to exit
func (s *Scheduler) Stop() {
	s.stopOnce.Do(s.cancel)
	s.wg.Wait()
}

// Wait blocks until every in-flight refresh has completed. It does not
// return while the periodic loop is running.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
