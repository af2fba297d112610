package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/stockpulse/internal/api"
	"github.com/wonny/stockpulse/internal/dashboard"
	"github.com/wonny/stockpulse/internal/domain/market"
	"github.com/wonny/stockpulse/internal/infra/alpaca"
	"github.com/wonny/stockpulse/internal/infra/identity"
	"github.com/wonny/stockpulse/internal/pkg/config"
	"github.com/wonny/stockpulse/internal/pkg/scheduler"
	"github.com/wonny/stockpulse/internal/service/quotes"
	"github.com/wonny/stockpulse/internal/service/session"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 5 * time.Minute
)

// App is the assembled server
type App struct {
	cfg       *config.Config
	server    *http.Server
	refresher *quotes.Refresher
	broker    *quotes.Broker
	sessions  *session.Service
	registry  *dashboard.Registry
}

// NewGateway builds the market data gateway from configuration
func NewGateway(cfg *config.Config) market.Gateway {
	return alpaca.NewClient(alpaca.Config{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
		BaseURL:   cfg.Alpaca.BaseURL,
		Timeout:   cfg.Alpaca.Timeout,
	})
}

// New wires every component; gw is used as the market data source
func New(cfg *config.Config, gw market.Gateway, version string) (*App, error) {
	watchlist := cfg.Dashboard.Watchlist
	if len(watchlist) == 0 {
		watchlist = market.DefaultWatchlist
	}

	board := quotes.NewBoard(watchlist)
	broker := quotes.NewBroker(0)
	refresher := quotes.NewRefresher(gw, board, broker, quotes.WithInterval(cfg.Dashboard.RefreshInterval))

	registry := dashboard.NewRegistry(gw, board, cfg.Dashboard.DefaultSymbol, market.ParseTimeframe(cfg.Dashboard.DefaultTimeframe))

	provider := identity.NewGoogleProvider(identity.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	})
	sessions := session.NewService(session.NewStore(cfg.Server.SessionTTL), provider)

	router, err := api.NewRouter(cfg, api.Deps{
		Gateway:  gw,
		Board:    board,
		Broker:   broker,
		Registry: registry,
		Sessions: sessions,
	}, version)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	return &App{
		cfg: cfg,
		server: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router.Handler(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
		refresher: refresher,
		broker:    broker,
		sessions:  sessions,
		registry:  registry,
	}, nil
}

// Run serves HTTP and refreshes quotes until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("addr", a.server.Addr).
			Bool("sign_in", a.sessions.Available()).
			Msg("🚀 StockPulse server starting")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.refresher.Run(ctx)
	})

	g.Go(func() error {
		return a.maintain(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("🛑 Shutdown signal received, stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// closing subscriptions ends open streams before Shutdown waits on them
		a.broker.Close()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
			return err
		}
		return nil
	})

	err := g.Wait()
	log.Info().Msg("👋 StockPulse server stopped")
	return err
}

// maintain expires idle sessions and their dashboard state
func (a *App) maintain(ctx context.Context) error {
	s := scheduler.New()
	err := s.Every("session-sweep", sweepInterval, func() {
		removed := a.sessions.Store().Sweep()
		for _, id := range removed {
			a.registry.Remove(id)
		}
		orphans := a.registry.Sweep(a.cfg.Server.SessionTTL)
		if len(removed) > 0 || orphans > 0 {
			log.Info().Int("sessions", len(removed)).Int("orphans", orphans).Msg("Expired idle sessions")
		}
	})
	if err != nil {
		return err
	}
	s.Start()

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(stopCtx)
	return nil
}
