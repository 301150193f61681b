package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/pairs/internal/httpserver"
	"github.com/robalobadob/pairs/internal/results"
	"github.com/robalobadob/pairs/internal/store"
)

const shutdownTimeout = 5 * time.Second

// runServe serves the web client and API until ctx is cancelled, then drains
// connections and drops every game.
func runServe(ctx context.Context, cfg *Config) error {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	res, err := results.Open(ctx, cfg.resultsDB)
	if err != nil {
		return err
	}
	defer res.Close()

	clock := quartz.NewReal()
	mem := store.NewMemoryStore()
	srv := httpserver.New(httpserver.Options{
		Store:        mem,
		Results:      res,
		Catalog:      catalog,
		Clock:        clock,
		Cards:        cfg.cards(),
		RevertDelay:  cfg.revertDelay,
		JWTSecret:    cfg.jwtSecret,
		DailySalt:    cfg.dailySalt,
		PublicURL:    cfg.publicURL,
		ClientOrigin: cfg.clientOrigin,
		Version:      releaseVersion,
	})
	defer srv.Close()

	// No WriteTimeout: websocket streams stay open for the whole game.
	httpSrv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           srv.Handler(),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", httpSrv.Addr).Int("cards", cfg.cards()).Str("results", cfg.resultsDB).Msg("starting pairs server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := mem.Reap(ctx, clock, cfg.sessionTimeout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Close()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
