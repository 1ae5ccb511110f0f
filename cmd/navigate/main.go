package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/guidance/sim"
	"github.com/turnwise/navkit/location"
	"github.com/turnwise/navkit/nav"
	"github.com/turnwise/navkit/notify"
	"github.com/turnwise/navkit/observability"
	"github.com/turnwise/navkit/routing"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to session config JSON file (optional)")
		centerLat  = flag.Float64("lat", 0, "Map center latitude (overrides config)")
		centerLon  = flag.Float64("lon", 0, "Map center longitude (overrides config)")
		speed      = flag.Float64("speed", 0, "Simulation speed factor (overrides config)")
		timeout    = flag.Duration("timeout", 5*time.Minute, "Abort the drive after this long")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	cfg := nav.DefaultConfig()
	if *configFile != "" {
		loaded, err := nav.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if *centerLat != 0 || *centerLon != 0 {
		cfg.MapCenter = geo.NewCoordinates(*centerLat, *centerLon)
	}
	if *speed > 0 {
		cfg.Simulated.SpeedFactor = *speed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := sim.New()
	planner := routing.NewOfflinePlanner()
	provider := location.NewManualProvider()

	text := &notify.LatestText{}
	speech := &notify.SpeechQueue{}

	session, err := nav.New(ctx, &cfg, engine, planner, provider,
		nav.WithTextSink(text),
		nav.WithSpeechSink(speech),
	)
	if err != nil {
		log.Fatalf("Failed to create navigation session: %v", err)
	}
	defer session.Close()

	// The dialog signal drives the scripted confirmation below.
	dialogs := make(chan nav.Dialog, 8)
	cancelSub := session.DialogState().Subscribe(func(d nav.Dialog) {
		select {
		case dialogs <- d:
		default:
		}
	})
	defer cancelSub()

	if err := session.RequestRoute(true); err != nil {
		log.Fatalf("Route request rejected: %v", err)
	}

	deadline := time.After(*timeout)
	confirmed := false
	lastLine := ""

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			log.Fatalf("Drive did not finish within %v", *timeout)
		case d := <-dialogs:
			switch d.Kind {
			case nav.DialogError:
				log.Fatalf("%s: %s", d.Title, d.Message)
			case nav.DialogRouteConfirmation:
				fmt.Printf("Route proposed: %s (simulated=%t)\n", d.Summary, d.IsSimulated)
				if err := session.ConfirmRoute(); err != nil {
					log.Fatalf("Failed to confirm route: %v", err)
				}
				confirmed = true
				fmt.Println("Navigation started")
			}
		case <-ticker.C:
			if line := text.Current(); line != "" && line != lastLine {
				fmt.Printf("  %s\n", line)
				lastLine = line
			}
			for {
				utterance, ok := speech.Next()
				if !ok {
					break
				}
				fmt.Printf("  [voice] %s\n", utterance)
			}
			if confirmed && session.State() == nav.StateStopped {
				fmt.Println("Destination reached")
				printMetrics(session.Metrics())
				return
			}
		}
	}
}

func printMetrics(m nav.MetricsSnapshot) {
	fmt.Printf("\nSession metrics:\n")
	fmt.Printf("  events routed:     %d\n", m.EventsRouted)
	fmt.Printf("  routes proposed:   %d\n", m.RoutesProposed)
	fmt.Printf("  traffic refreshes: %d\n", m.TrafficRefreshes)
	fmt.Printf("  reroute proposals: %d\n", m.Reroutes)
	fmt.Printf("  deviations:        %d\n", m.Deviations)
}
