package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/datapass/internal/animator"
	"github.com/mmcdole/datapass/internal/cache"
	"github.com/mmcdole/datapass/internal/carrier"
	"github.com/mmcdole/datapass/internal/config"
	"github.com/mmcdole/datapass/internal/connectivity"
	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/fetch"
	"github.com/mmcdole/datapass/internal/hostapi"
	"github.com/mmcdole/datapass/internal/log"
	"github.com/mmcdole/datapass/internal/notify"
	"github.com/mmcdole/datapass/internal/render"
	"github.com/mmcdole/datapass/internal/scheduler"
	"github.com/mmcdole/datapass/internal/service"
	"github.com/mmcdole/datapass/internal/store"
	"github.com/mmcdole/datapass/internal/tile"
	"github.com/mmcdole/datapass/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		showVersion bool
		headless    bool
		setup       bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&headless, "headless", false, "run without the terminal board")
	flag.BoolVar(&setup, "setup", false, "ask for the network operator before starting")
	flag.Parse()

	if showVersion {
		fmt.Printf("datapass %s\n", Version)
		return
	}

	interactive := !headless && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(interactive, setup); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(interactive, setup bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting datapass", "version", Version, "interactive", interactive)

	if interactive && (setup || (cfg.Carrier.Operator == "" && !cfg.Carrier.MultiSIM)) {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
	}

	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	results := cache.New(st.Namespace(domain.NamespaceResultData))
	resolver := carrier.NewResolver(fetch.NewClient(logger), logger)
	probe := connectivity.SysfsProbe{Root: cfg.Connectivity.SysfsRoot}
	operator := func() string { return cfg.Carrier.Operator }

	// Surfaces: frames always reach the log; the board joins when a
	// terminal is attached.
	var bridge *tui.Bridge
	surface := domain.Renderer(render.Log{Logger: logger})
	notifier := domain.Notifier(notify.New(cfg.Notifications, logger))
	showTile := func(t tile.Tile) {
		logger.Info("tile", "state", t.StateName, "label", t.Label)
	}
	if interactive {
		bridge = tui.NewBridge(256)
		surface = render.Multi{surface, bridge}
		notifier = notify.Fanout{notifier, bridge}
		showTile = bridge.ShowTile
	}
	tracker := render.NewTracker(surface)

	anim := animator.New(tracker, animator.Options{
		FramePeriod:      cfg.Animation.FramePeriod,
		HalfDuration:     cfg.Animation.HalfDuration,
		OvershootTension: cfg.Animation.OvershootTension,
	}, logger)

	updates := service.NewUpdateService(resolver, results, anim, tracker, notifier, probe, operator, logger)

	sched := scheduler.New(
		scheduler.LoadRegistry(st.Namespace(domain.NamespaceMisc)),
		updates,
		probe,
		scheduler.Options{
			MinInterval:  cfg.Refresh.MinInterval,
			SettleDelay:  cfg.Refresh.SettleDelay,
			AutoInterval: cfg.Refresh.AutoInterval,
			AssignCarrier: func() string {
				if cfg.Carrier.MultiSIM {
					return domain.CarrierNotSelectedID
				}
				return resolver.Detect(cfg.Carrier.Operator)
			},
			OnRemove: func(id int) {
				if err := results.Delete(id); err != nil {
					logger.Warn("failed to drop cached result", "widget", id, "error", err)
				}
				tracker.Forget(id)
				anim.Cancel(id)
			},
		},
		logger,
	)
	restored := restoreFrames(sched, results, tracker)
	sched.Start()

	watcher := connectivity.NewWatcher(probe, cfg.Connectivity.PollInterval, sched.OnConnectivityChange, logger)
	watcher.Start()

	tiles := tile.New(resolver, st.Namespace(domain.NamespaceResultData), operator, showTile, logger)
	go tiles.OnAdded(context.Background())

	var api *hostapi.Server
	if cfg.API.Enabled {
		api = hostapi.NewServer(cfg.API.Addr, sched, resolver, tiles, tracker, logger)
		api.Start()
	}

	if interactive {
		model := tui.NewModel(sched, resolver, tiles, bridge)
		maps.Copy(model.Frames, restored)
		p := tea.NewProgram(model, tea.WithAltScreen())

		logger.Info("starting TUI")
		_, err = p.Run()
		bridge.Close()
		if err != nil {
			logger.Error("TUI error", "error", err)
			err = fmt.Errorf("TUI error: %w", err)
		}
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		<-ctx.Done()
		stop()
	}

	logger.Info("shutting down")
	watcher.Stop()
	if api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if serr := api.Shutdown(ctx); serr != nil {
			logger.Error("host API shutdown error", "error", serr)
		}
		cancel()
	}
	sched.Stop()
	anim.Wait()
	return err
}

// restoreFrames seeds the tracker with each widget's cached result so
// surfaces are not empty until the next refresh.
func restoreFrames(sched *scheduler.Scheduler, results *cache.ResultCache, tracker *render.Tracker) map[int]domain.Frame {
	frames := make(map[int]domain.Frame)
	for _, inst := range sched.Widgets() {
		e, ok := results.Load(inst.ID)
		if !ok {
			continue
		}
		f := service.CachedFrame(inst.ID, e)
		tracker.Remember(f)
		frames[inst.ID] = f
	}
	return frames
}

// runSetupFlow asks for the operator name the phone reports and saves it
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to datapass!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Network operator shown by your phone (e.g. Telekom.de, empty to skip): ")
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	cfg.Carrier.Operator = strings.TrimSpace(input)

	fmt.Print("More than one SIM card? [y/N]: ")
	input, err = reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(input))
	cfg.Carrier.MultiSIM = answer == "y" || answer == "yes"

	if err := config.SaveCarrier(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}
