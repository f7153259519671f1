package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"food-storefront/config"
	"food-storefront/db"
	"food-storefront/log"
	"food-storefront/middlewares"
	"food-storefront/mock"
	"food-storefront/notify"
	"food-storefront/routes"
	"food-storefront/services"
	"food-storefront/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	sessionSweep    = 10 * time.Minute
)

func fixtureSeed() (store.Seed, error) {
	acct, err := mock.LoadUserAccount()
	if err != nil {
		return store.Seed{}, err
	}
	dash, err := mock.LoadAdminDashboard()
	if err != nil {
		return store.Seed{}, err
	}
	return store.Seed{Account: acct, Dashboard: dash}, nil
}

// openStore builds the configured store, seeded with the fixtures.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	seed, err := fixtureSeed()
	if err != nil {
		return nil, err
	}
	if cfg.Store != config.StorePostgres {
		return store.NewMemory(seed), nil
	}

	if err := db.Init(ctx, cfg.DB); err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := applyMigrations(ctx, db.Pool, nil); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	pg := store.NewPostgres(db.Pool)
	if err := pg.Seed(ctx, seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return pg, nil
}

func openNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Telegram.Token == "" || cfg.Telegram.AdminChatID == 0 {
		return notify.Nop{}
	}
	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID)
	if err != nil {
		l := log.WithComponent("notify")
		l.Warn().Err(err).Msg("telegram unavailable, admin notifications disabled")
		return notify.Nop{}
	}
	return tg
}

// sweepSessions drops expired sessions until ctx is done.
func sweepSessions(ctx context.Context, st store.Store) {
	logger := log.WithComponent("sessions")
	t := time.NewTicker(sessionSweep)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := st.DeleteExpiredSessions(ctx, now)
			if err != nil {
				logger.Error().Err(err).Msg("sweep expired sessions")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("deleted", n).Msg("swept expired sessions")
			}
		}
	}
}

func buildDeps(st store.Store, n notify.Notifier, cfg *config.Config) (routes.Deps, error) {
	menu, err := services.NewMenu(st)
	if err != nil {
		return routes.Deps{}, err
	}
	subs, err := services.NewSubscriptions(st, n)
	if err != nil {
		return routes.Deps{}, err
	}
	return routes.Deps{
		Menu:          menu,
		Cart:          services.NewCart(st, menu, n, cfg.Delivery.Fee),
		Subscriptions: subs,
		Catering:      services.NewCatering(st, menu, n),
		Accounts:      services.NewAccounts(st, services.NewLoginThrottle(), cfg.Session.Secret, cfg.Session.TTL),
		Admin:         services.NewAdmin(st, menu, n),
		AdminToken:    cfg.Admin.Token,
		RateLimiter:   middlewares.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
		SecureCookie:  cfg.Session.SecureCookie,
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := log.WithComponent("server")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer st.Close()

	n := openNotifier(cfg)
	defer n.Close()

	deps, err := buildDeps(st, n, cfg)
	if err != nil {
		return err
	}
	if cfg.Admin.Token == "" {
		logger.Warn().Msg("ADMIN_TOKEN not set, admin dashboard is open")
	}
	if cfg.Session.Secret == config.DefaultSessionSecret {
		logger.Warn().Msg("SESSION_SECRET not set, session tokens are signed with the development secret")
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweepSessions(ctx, st)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Str("store", cfg.Store).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
