package main

import (
	"context"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/internal/daily"
	"github.com/robalobadob/pairs/internal/game"
	"github.com/robalobadob/pairs/internal/tui"
)

// runPlay starts the terminal client.
func runPlay(ctx context.Context, cfg *Config) error {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	clock := quartz.NewReal()

	mode := game.ModeClassic
	if cfg.daily {
		mode = game.ModeDaily
	}
	factory := func(onEvent func(game.Event)) (*game.Game, error) {
		opts := game.Options{
			Mode:        mode,
			Symbols:     catalog.All(),
			Cards:       cfg.cards(),
			RevertDelay: cfg.revertDelay,
			Clock:       clock,
			OnEvent:     onEvent,
		}
		if mode == game.ModeDaily {
			opts.Seed = daily.Seed(clock.Now(), cfg.dailySalt)
		}
		return game.New(opts)
	}

	log.Info().Str("mode", string(mode)).Int("cards", cfg.cards()).Msg("starting terminal game")
	return tui.Run(ctx, factory)
}
