package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChrozaGaming/sbpappv2/internal/config"
	"github.com/ChrozaGaming/sbpappv2/internal/locate"
	"github.com/ChrozaGaming/sbpappv2/internal/logging"
	"github.com/ChrozaGaming/sbpappv2/internal/session"
	"github.com/ChrozaGaming/sbpappv2/internal/tui"
	"github.com/ChrozaGaming/sbpappv2/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("sbp " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "logout":
			return runLogout()
		}
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	log, err := logging.Open(dir)
	if err != nil {
		return err
	}

	deviceID, err := config.DeviceID(dir)
	if err != nil {
		// A missing device ID only loses the X-Device-Id header.
		log.Warn().Err(err).Msg("device id unavailable")
	}

	c := client.New(cfg.APIURL)
	c.SetLogger(log)
	if deviceID != "" {
		c.SetDeviceID(deviceID)
	}

	store := session.NewStore(filepath.Join(dir, "session.json"))
	guard := session.NewGuard(store, c)

	var locator locate.Locator = locate.Unsupported{}
	if cfg.Location.Lat != nil && cfg.Location.Lng != nil {
		locator = locate.Static{Lat: *cfg.Location.Lat, Lng: *cfg.Location.Lng}
	}

	app := tui.NewApp(tui.Deps{
		Client:     c,
		Store:      store,
		Guard:      guard,
		Locator:    locator,
		HealthGate: cfg.HealthGate,
		Log:        log,
	})

	log.Info().Str("version", version).Str("api_url", cfg.APIURL).Msg("starting")

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogout() error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	store := session.NewStore(filepath.Join(dir, "session.json"))
	if _, ok := store.Get(); !ok {
		fmt.Println("Already logged out.")
		return nil
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

func printHelp() {
	fmt.Print(`sbp — attendance terminal client

Usage:
  sbp            launch the app
  sbp logout     clear the stored session
  sbp version    print the version
  sbp help       show this help

Environment:
  SBP_API_URL      backend base URL (overrides config)
  SBP_HEALTH_GATE  "block" or "advisory"
  SBP_LOCATION     fixed device position, "lat,lng"
  SBP_DEBUG        set to 1 for debug logging

Config file: ~/.sbp/config.toml
`)
}
