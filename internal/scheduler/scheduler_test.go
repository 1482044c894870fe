package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/log"
	"github.com/mmcdole/datapass/internal/scheduler"
	"github.com/mmcdole/datapass/internal/store"
)

type call struct {
	inst domain.WidgetInstance
	mode domain.UpdateMode
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	block   chan struct{} // nil = return immediately
	started chan int
}

func (r *fakeRunner) Refresh(ctx context.Context, inst domain.WidgetInstance, mode domain.UpdateMode) domain.FetchOutcome {
	r.mu.Lock()
	r.calls = append(r.calls, call{inst, mode})
	block := r.block
	r.mu.Unlock()
	if r.started != nil {
		select {
		case r.started <- inst.ID:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}
	return domain.Success(domain.UsageSnapshot{WastedPercentage: 10})
}

func (r *fakeRunner) snapshot() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

type fixedProbe struct{ c domain.ConnectivityType }

func (p fixedProbe) Current() domain.ConnectivityType { return p.c }

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newKV(t *testing.T) domain.KeyValueStore {
	t.Helper()
	s, err := store.NewBoltStore("")
	if err != nil {
		t.Fatal(err)
	}
	return s.Namespace(domain.NamespaceMisc)
}

func newScheduler(t *testing.T, r scheduler.Runner, probe domain.ConnectivityProbe, clk *clock) *scheduler.Scheduler {
	t.Helper()
	s := scheduler.New(scheduler.LoadRegistry(newKV(t)), r, probe, scheduler.Options{
		MinInterval:   15 * time.Second,
		AssignCarrier: func() string { return "telekom" },
		Now:           clk.Now,
	}, log.NullLogger())
	t.Cleanup(s.Stop)
	return s
}

func TestRequestRefresh_Debounce(t *testing.T) {
	clk := &clock{t: time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)}
	r := &fakeRunner{}
	s := newScheduler(t, r, fixedProbe{}, clk)

	if _, res, err := s.Place(1); err != nil || res != scheduler.Accepted {
		t.Fatalf("Place = %v, %v", res, err)
	}
	s.Wait()

	clk.Advance(10 * time.Second)
	if res := s.RequestRefresh(1, domain.UpdateRegular); res != scheduler.Debounced {
		t.Errorf("second request = %v, want debounced", res)
	}
	clk.Advance(5 * time.Second)
	if res := s.RequestRefresh(1, domain.UpdateRegular); res != scheduler.Debounced {
		t.Errorf("request at exactly MinInterval = %v, want debounced", res)
	}
	clk.Advance(time.Millisecond)
	if res := s.RequestRefresh(1, domain.UpdateRegular); res != scheduler.Accepted {
		t.Errorf("request after MinInterval = %v, want accepted", res)
	}
	s.Wait()

	if n := len(r.snapshot()); n != 2 {
		t.Errorf("runner calls = %d, want 2", n)
	}
}

func TestRequestRefresh_DropWhileRefreshing(t *testing.T) {
	clk := &clock{t: time.Now()}
	r := &fakeRunner{block: make(chan struct{}), started: make(chan int, 4)}
	s := newScheduler(t, r, fixedProbe{}, clk)

	s.Place(1)
	<-r.started
	if !s.IsRefreshing(1) {
		t.Error("widget not marked refreshing")
	}
	clk.Advance(time.Hour)
	if res := s.RequestRefresh(1, domain.UpdateRegular); res != scheduler.Busy {
		t.Errorf("request during refresh = %v, want busy", res)
	}
	close(r.block)
	s.Wait()

	if s.IsRefreshing(1) {
		t.Error("widget still refreshing after completion")
	}
	if n := len(r.snapshot()); n != 1 {
		t.Errorf("runner calls = %d, want 1", n)
	}
	inst, _ := s.Registry().Get(1)
	if !inst.LastRefreshTimestamp.Equal(clk.Now()) {
		t.Errorf("timestamp = %v, want completion time %v", inst.LastRefreshTimestamp, clk.Now())
	}
}

func TestRequestRefresh_ParallelAcrossWidgets(t *testing.T) {
	clk := &clock{t: time.Now()}
	r := &fakeRunner{block: make(chan struct{}), started: make(chan int, 4)}
	s := newScheduler(t, r, fixedProbe{}, clk)

	s.Place(1)
	s.Place(2)
	got := map[int]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-r.started:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("refreshes did not run in parallel")
		}
	}
	close(r.block)
	s.Wait()
	if !got[1] || !got[2] {
		t.Errorf("started = %v", got)
	}
}

func TestRequestRefresh_Unknown(t *testing.T) {
	s := newScheduler(t, &fakeRunner{}, fixedProbe{}, &clock{t: time.Now()})
	if res := s.RequestRefresh(42, domain.UpdateRegular); res != scheduler.Unknown {
		t.Errorf("result = %v, want unknown", res)
	}
}

func TestPlace(t *testing.T) {
	clk := &clock{t: time.Now()}
	r := &fakeRunner{}
	s := newScheduler(t, r, fixedProbe{}, clk)

	inst, _, err := s.Place(3)
	if err != nil {
		t.Fatal(err)
	}
	if inst.CarrierID != "telekom" {
		t.Errorf("carrier = %q", inst.CarrierID)
	}
	s.Wait()

	clk.Advance(time.Minute)
	s.Reassign(3, "congstar")
	if _, res, _ := s.Place(3); res != scheduler.Accepted {
		t.Errorf("re-place result = %v", res)
	}
	s.Wait()

	calls := r.snapshot()
	if len(calls) != 2 {
		t.Fatalf("calls = %d", len(calls))
	}
	if calls[0].mode != domain.UpdateRegular || calls[1].mode != domain.UpdateSilent {
		t.Errorf("modes = %v, %v", calls[0].mode, calls[1].mode)
	}
	if calls[1].inst.CarrierID != "congstar" {
		t.Errorf("reassigned carrier not used: %q", calls[1].inst.CarrierID)
	}

	if _, _, err := s.Place(0); err != domain.ErrInvalidWidgetID {
		t.Errorf("Place(0) err = %v", err)
	}
}

func TestRemove(t *testing.T) {
	var removed []int
	kv := newKV(t)
	s := scheduler.New(scheduler.LoadRegistry(kv), &fakeRunner{}, fixedProbe{}, scheduler.Options{
		MinInterval: time.Second,
		OnRemove:    func(id int) { removed = append(removed, id) },
	}, log.NullLogger())
	defer s.Stop()

	s.Place(5)
	s.Wait()
	if err := s.Remove(5); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(5); err != domain.ErrWidgetNotFound {
		t.Errorf("second remove err = %v", err)
	}
	if len(removed) != 1 || removed[0] != 5 {
		t.Errorf("OnRemove calls = %v", removed)
	}
	if s.Registry().Len() != 0 {
		t.Error("registry not empty")
	}
	if reg := scheduler.LoadRegistry(kv); reg.Len() != 0 {
		t.Error("removal not persisted")
	}
}

// savingRunner writes a result for the widget once released
type savingRunner struct {
	fakeRunner
	mu    sync.Mutex
	saved map[int]int
}

func (r *savingRunner) Refresh(ctx context.Context, inst domain.WidgetInstance, mode domain.UpdateMode) domain.FetchOutcome {
	out := r.fakeRunner.Refresh(ctx, inst, mode)
	r.mu.Lock()
	r.saved[inst.ID] = out.Snapshot.WastedPercentage
	r.mu.Unlock()
	return out
}

func (r *savingRunner) drop(id int) {
	r.mu.Lock()
	delete(r.saved, id)
	r.mu.Unlock()
}

func TestRemove_DuringRefresh(t *testing.T) {
	r := &savingRunner{
		fakeRunner: fakeRunner{block: make(chan struct{}), started: make(chan int, 1)},
		saved:      map[int]int{},
	}
	var mu sync.Mutex
	var removed []int
	s := scheduler.New(scheduler.LoadRegistry(newKV(t)), r, fixedProbe{}, scheduler.Options{
		MinInterval: time.Second,
		OnRemove: func(id int) {
			mu.Lock()
			removed = append(removed, id)
			mu.Unlock()
			r.drop(id)
		},
	}, log.NullLogger())
	defer s.Stop()

	s.Place(5)
	<-r.started
	if err := s.Remove(5); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	early := len(removed)
	mu.Unlock()
	if early != 0 {
		t.Error("cleanup ran before the in-flight refresh finished")
	}

	close(r.block)
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(removed) != 1 || removed[0] != 5 {
		t.Errorf("OnRemove calls = %v", removed)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.saved[5]; ok {
		t.Errorf("removed widget 5 still has a saved result %d", v)
	}
}

func TestOnConnectivityChange(t *testing.T) {
	tests := []struct {
		conn     domain.ConnectivityType
		wantMode domain.UpdateMode
		wantRuns int
	}{
		{domain.ConnectivityCellular, domain.UpdateSilent, 2},
		{domain.ConnectivityWiFi, domain.UpdateUltraSilent, 2},
		{domain.ConnectivityNone, 0, 0},
		{domain.ConnectivityOther, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.conn.String(), func(t *testing.T) {
			kv := newKV(t)
			reg := scheduler.LoadRegistry(kv)
			reg.Register(1, "telekom")
			reg.Register(2, "congstar")

			r := &fakeRunner{}
			s := scheduler.New(reg, r, fixedProbe{tt.conn}, scheduler.Options{
				MinInterval: 15 * time.Second,
				SettleDelay: 5 * time.Millisecond,
			}, log.NullLogger())
			defer s.Stop()

			s.OnConnectivityChange()
			s.Wait()

			calls := r.snapshot()
			if len(calls) != tt.wantRuns {
				t.Fatalf("runs = %d, want %d", len(calls), tt.wantRuns)
			}
			for _, c := range calls {
				if c.mode != tt.wantMode {
					t.Errorf("mode = %v, want %v", c.mode, tt.wantMode)
				}
			}
		})
	}
}

func TestStart_PeriodicRefresh(t *testing.T) {
	reg := scheduler.LoadRegistry(newKV(t))
	reg.Register(1, "telekom")
	r := &fakeRunner{started: make(chan int, 8)}
	s := scheduler.New(reg, r, fixedProbe{}, scheduler.Options{
		MinInterval:  time.Nanosecond,
		AutoInterval: 5 * time.Millisecond,
	}, log.NullLogger())
	s.Start()
	s.Start()

	select {
	case <-r.started:
	case <-time.After(2 * time.Second):
		t.Fatal("no periodic refresh")
	}
	s.Stop()
	for _, c := range r.snapshot() {
		if c.mode != domain.UpdateSilent {
			t.Errorf("periodic mode = %v", c.mode)
		}
	}
}
