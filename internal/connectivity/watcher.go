package connectivity

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/datapass/internal/domain"
)

// Watcher polls a probe and calls onChange whenever the type differs
// from the previous poll. The event carries no payload; receivers query
// the probe themselves.
type Watcher struct {
	probe    domain.ConnectivityProbe
	interval time.Duration
	onChange func()
	logger   *slog.Logger

	once sync.Once
	stop chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(probe domain.ConnectivityProbe, interval time.Duration, onChange func(), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		probe:    probe,
		interval: interval,
		onChange: onChange,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start begins polling. Only the first call has an effect.
func (w *Watcher) Start() {
	w.once.Do(func() {
		w.wg.Add(1)
		go w.run()
	})
}

// Stop halts polling and waits for the loop to exit
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	last := w.probe.Current()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cur := w.probe.Current()
			if cur == last {
				continue
			}
			w.logger.Info("connectivity changed", "from", last.String(), "to", cur.String())
			last = cur
			w.onChange()
		case <-w.stop:
			return
		}
	}
}
