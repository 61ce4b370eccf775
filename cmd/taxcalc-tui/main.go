package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/rgehrsitz/taxcalc/internal/app"
	"github.com/rgehrsitz/taxcalc/internal/config"
	"github.com/rgehrsitz/taxcalc/internal/logging"
	"github.com/rgehrsitz/taxcalc/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: ./taxcalc.yaml)")
	flag.Parse()

	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Printf("Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Log lines would corrupt the alternate screen; only errors get through.
	cfg.Logging.Level = "error"
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Create the application model
	model := tui.NewModel(application.Engine)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
