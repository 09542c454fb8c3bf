package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/roomrelay/internal/adapters/http"
	"github.com/dkeye/roomrelay/internal/adapters/content"
	"github.com/dkeye/roomrelay/internal/adapters/rtc"
	wsignal "github.com/dkeye/roomrelay/internal/adapters/signal"
	"github.com/dkeye/roomrelay/internal/app"
	"github.com/dkeye/roomrelay/internal/app/orch"
	"github.com/dkeye/roomrelay/internal/config"
)

func main() {
	cmd := &cobra.Command{
		Use:   "roomrelay",
		Short: "Room presence and signaling relay for collaborative calls",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			setupLogger(cfg)
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cfg)
		},
		SilenceUsage: true,
	}
	config.RegisterFlags(cmd.Flags())

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Mode != "debug" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	reg := app.NewRegistry(cfg.Capacity)
	relay := &app.Relay{Classify: rtc.ClassifySignal}

	var svc app.ContentService
	if cfg.ContentEnabled() {
		svc = content.NewClient(cfg.Content.BaseURL, cfg.Content.AuthScheme, cfg.Content.Timeout)
	} else {
		log.Warn().Str("module", "main").Msg("content service not configured, edits are not persisted")
	}
	fwd := app.NewForwarder(svc, cfg.Content.Timeout)

	o := orch.New(reg, relay, fwd, orch.Routes{PostsPrefix: cfg.Content.PostsPrefix})

	var policy app.Policy = app.SimplePolicy{}
	if cfg.Backpressure == "drop" {
		policy = app.LenientPolicy{}
	}
	hub := wsignal.NewHub(o, policy)
	ws := wsignal.NewServer(hub, wsignal.Options{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		SendBuffer:     cfg.SendBuffer,
		AllowedOrigins: cfg.CORSOrigins,
	})

	r := router.SetupRouter(cfg, router.Deps{
		Registry: reg,
		WS:       ws,
		Limiter:  wsignal.NewConnectLimiter(cfg.ConnectRate.Limit, cfg.ConnectRate.Interval),
	})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.WithCORS(cfg, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error {
		log.Info().Str("module", "main").Str("addr", addr).Int("capacity", cfg.Capacity).Msg("roomrelay started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Str("module", "main").Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	ws.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	fwd.Close(drainCtx)

	log.Info().Str("module", "main").Msg("server exited gracefully")
	return err
}
