package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	runvision "github.com/gopeace88/RunVision-Wear"
	"github.com/gopeace88/RunVision-Wear/internal/domain"
	"github.com/gopeace88/RunVision-Wear/internal/service/sim"
	"github.com/gopeace88/RunVision-Wear/internal/service/storage"
)

// consoleDisplay renders the per-second snapshot as a single line.
type consoleDisplay struct{}

func (consoleDisplay) Show(m domain.RunningMetrics) {
	pace := "--:--"
	if m.Pace > 0 {
		pace = fmt.Sprintf("%d:%02d", m.Pace/60, m.Pace%60)
	}
	fmt.Printf("\r%4ds | %7.1f m | %s /km | %3d bpm | %3d spm ",
		m.ElapsedSeconds, m.Distance, pace, m.HeartRate, m.Cadence)
}

func main() {
	dbPath := flag.String("db", "runvision.db", "path to the sqlite database")
	hud := flag.Bool("hud", false, "scan for and stream to a HUD accessory")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	store, err := storage.NewService(*dbPath)
	if err != nil {
		slog.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	// The only sensor source in this build is the simulator; on-device
	// builds plug the platform's fused source in here.
	sensors := sim.NewRunner()

	app := runvision.NewApp(store, sensors, consoleDisplay{})

	if *hud {
		if err := app.ConnectHUD(); err != nil {
			slog.Error("hud scan failed", "error", err)
		}
	}

	fmt.Println("RunVision Wear - press Ctrl+C to finish the session")
	app.StartSession()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	fmt.Println()
	fmt.Println(app.FinishSession())
	app.DisconnectHUD()
}
