package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/internal/game"
	"github.com/robalobadob/pairs/internal/symbols"
)

const releaseVersion = "0.1.0"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	err := newCmd(cfg).ExecuteContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("pairs exited")
	}
	if cfg.closeLog != nil {
		_ = cfg.closeLog()
	}
	if err != nil {
		os.Exit(1)
	}
}

// setupLogging configures the global zerolog logger. The terminal client owns
// the screen, so it logs to --log-file or nowhere. A log file is left open in
// cfg.closeLog for main to close on exit.
func setupLogging(cfg *Config, terminal bool) error {
	lvl, err := zerolog.ParseLevel(cfg.logLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stderr
	switch {
	case cfg.logFile != "":
		f, err := os.OpenFile(cfg.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		out = f
		cfg.closeLog = f.Close
	case terminal:
		out = io.Discard
	}
	if cfg.pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: cfg.logFile != ""}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// loadCatalog reads the symbol catalog and checks it can fill the board.
func loadCatalog(cfg *Config) (*symbols.Catalog, error) {
	catalog, err := symbols.Load(cfg.symbolsFile)
	if err != nil {
		return nil, err
	}
	if !catalog.Fits(cfg.cards()) {
		return nil, fmt.Errorf("%w: %d cards need %d symbols, catalog has %d",
			game.ErrConfiguration, cfg.cards(), cfg.cards()/2, catalog.Count())
	}
	return catalog, nil
}
