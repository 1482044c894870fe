// Package animator drives the loading gauge while a fetch is in flight.
package animator

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/metrics"
)

// Phase of one Animation
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseIndeterminate
	PhaseConverging
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIndeterminate:
		return "indeterminate"
	case PhaseConverging:
		return "converging"
	case PhaseSettled:
		return "settled"
	default:
		return "idle"
	}
}

const DefaultLoadingText = "Loading…"

// Options tune frame timing
type Options struct {
	FramePeriod      time.Duration
	HalfDuration     time.Duration // one full 0 to 100 sweep
	OvershootTension float64
	LoadingText      string
}

func (o Options) withDefaults() Options {
	if o.FramePeriod <= 0 {
		o.FramePeriod = 10 * time.Millisecond
	}
	if o.HalfDuration <= 0 {
		o.HalfDuration = time.Second
	}
	if o.LoadingText == "" {
		o.LoadingText = DefaultLoadingText
	}
	return o
}

// Animator owns at most one running Animation per widget
type Animator struct {
	renderer domain.Renderer
	opts     Options
	logger   *slog.Logger

	mu     sync.Mutex
	active map[int]*Animation
	wg     sync.WaitGroup
}

func New(renderer domain.Renderer, opts Options, logger *slog.Logger) *Animator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Animator{
		renderer: renderer,
		opts:     opts.withDefaults(),
		logger:   logger,
		active:   make(map[int]*Animation),
	}
}

// Start begins the loading animation for widgetID at start percent.
// A still-running animation for the same widget is cancelled.
func (a *Animator) Start(widgetID, start int) *Animation {
	ctx, cancel := context.WithCancel(context.Background())
	an := &Animation{
		widgetID: widgetID,
		anim:     a,
		ctx:      ctx,
		cancel:   cancel,
		result:   make(chan domain.Frame, 1),
		done:     make(chan struct{}),
		last:     -1,
	}

	a.mu.Lock()
	if old := a.active[widgetID]; old != nil {
		old.cancel()
	}
	a.active[widgetID] = an
	a.mu.Unlock()

	a.wg.Add(1)
	go an.run(clamp(float64(start)))
	return an
}

// Cancel stops the running animation for widgetID without a final frame
func (a *Animator) Cancel(widgetID int) {
	a.mu.Lock()
	an := a.active[widgetID]
	a.mu.Unlock()
	if an != nil {
		an.cancel()
		<-an.done
	}
}

// Wait blocks until every started animation has exited
func (a *Animator) Wait() {
	a.wg.Wait()
}

func (a *Animator) release(an *Animation) {
	a.mu.Lock()
	if a.active[an.widgetID] == an {
		delete(a.active, an.widgetID)
	}
	a.mu.Unlock()
}

// Animation is one loading sequence. The final frame is delivered
// through Finish, exactly once.
type Animation struct {
	widgetID int
	anim     *Animator
	ctx      context.Context
	cancel   context.CancelFunc

	result chan domain.Frame
	once   sync.Once
	done   chan struct{}

	drawing atomic.Bool
	phase   atomic.Int32
	last    int // owned by run

	rendered atomic.Int64
	skipped  atomic.Int64
}

// Finish hands over the settled frame. Later calls are ignored.
func (an *Animation) Finish(final domain.Frame) {
	an.once.Do(func() {
		an.result <- final
	})
}

// Done is closed once the animation settled or was cancelled
func (an *Animation) Done() <-chan struct{} { return an.done }

func (an *Animation) Phase() Phase { return Phase(an.phase.Load()) }

// Stats returns rendered and skipped frame counts
func (an *Animation) Stats() (rendered, skipped int64) {
	return an.rendered.Load(), an.skipped.Load()
}

func (an *Animation) run(start float64) {
	defer an.anim.wg.Done()
	defer close(an.done)
	defer an.anim.release(an)

	an.phase.Store(int32(PhaseIndeterminate))

	// The first climb to 100 always completes so even a 0% result is
	// reached through a visible transition.
	cur, _, _, ok := an.sweep(start, 100, AccelerateDecelerate, domain.ColorGray, false)
	if !ok {
		return
	}

	var final domain.Frame
	for got := false; !got; {
		select {
		case final = <-an.result:
			got = true
			continue
		case <-an.ctx.Done():
			return
		default:
		}
		target := 0.0
		if cur < 50 {
			target = 100
		}
		cur, final, got, ok = an.sweep(cur, target, AccelerateDecelerate, domain.ColorGray, true)
		if !ok {
			return
		}
	}

	an.phase.Store(int32(PhaseConverging))
	overshoot := Overshoot(an.anim.opts.OvershootTension)
	if _, _, _, ok := an.sweep(cur, clamp(float64(final.Progress)), overshoot, final.Color, false); !ok {
		return
	}

	// claim the surface so the settled frame lands after any in-flight draw
	for !an.drawing.CompareAndSwap(false, true) {
		time.Sleep(time.Millisecond)
	}
	final.WidgetID = an.widgetID
	final.ClickEnabled = true
	an.anim.renderer.Render(final)
	an.drawing.Store(false)
	an.rendered.Add(1)
	metrics.AnimationFramesTotal.WithLabelValues(metrics.FrameRendered).Inc()

	an.phase.Store(int32(PhaseSettled))
}

// sweep animates from one value to another along curve. With watch set
// it returns early when the final frame arrives. ok is false when the
// animation was cancelled.
func (an *Animation) sweep(from, to float64, curve func(float64) float64, color domain.ColorTag, watch bool) (v float64, final domain.Frame, got bool, ok bool) {
	opts := an.anim.opts
	dur := time.Duration(float64(opts.HalfDuration) * math.Abs(to-from) / 100)
	if dur < opts.FramePeriod {
		dur = opts.FramePeriod
	}

	var results <-chan domain.Frame
	if watch {
		results = an.result
	}

	ticker := time.NewTicker(opts.FramePeriod)
	defer ticker.Stop()

	begin := time.Now()
	v = from
	for {
		select {
		case <-an.ctx.Done():
			return v, final, false, false
		case final = <-results:
			return v, final, true, true
		case <-ticker.C:
		}

		t := float64(time.Since(begin)) / float64(dur)
		if t >= 1 {
			an.emit(to, color)
			return to, final, false, true
		}
		v = from + (to-from)*curve(t)
		an.emit(v, color)
	}
}

// emit renders one frame unless the value is unchanged or the previous
// frame is still being drawn.
func (an *Animation) emit(v float64, color domain.ColorTag) {
	p := int(math.Round(clamp(v)))
	if p == an.last {
		return
	}
	if !an.drawing.CompareAndSwap(false, true) {
		an.skipped.Add(1)
		metrics.AnimationFramesTotal.WithLabelValues(metrics.FrameSkipped).Inc()
		return
	}
	an.last = p
	an.rendered.Add(1)
	metrics.AnimationFramesTotal.WithLabelValues(metrics.FrameRendered).Inc()

	f := domain.Frame{
		WidgetID:    an.widgetID,
		Progress:    p,
		PrimaryText: an.anim.opts.LoadingText,
		Color:       color,
	}
	go func() {
		defer an.drawing.Store(false)
		an.anim.renderer.Render(f)
	}()
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
