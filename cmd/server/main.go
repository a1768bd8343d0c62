package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/config"
	"github.com/kazu-source/Stream-Record-Tracker/internal/constants"
	fxmodules "github.com/kazu-source/Stream-Record-Tracker/internal/fx"
	"github.com/kazu-source/Stream-Record-Tracker/internal/logger"
	"github.com/kazu-source/Stream-Record-Tracker/internal/middleware"
	"github.com/kazu-source/Stream-Record-Tracker/internal/server"
	"github.com/kazu-source/Stream-Record-Tracker/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
		fx.Invoke(runCaptureScheduler),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	recordServer *server.RecordServer,
	cfg *config.Config,
	db *sql.DB,
	log zerolog.Logger,
) {
	log = log.Level(logger.ParseLevel(cfg.LogLevel))

	mux := http.NewServeMux()
	mux.HandleFunc("/record", recordServer.HandleRecord)
	mux.HandleFunc("/healthz", recordServer.HandleHealthz)

	// Nightbot fetches cross-origin; the response is a public plain-text line.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	requestIDMiddleware := middleware.RequestID(log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: requestIDMiddleware(c.Handler(mux)),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

// runCaptureScheduler drives the auto-capture state machine on a fixed tick
// so the starting rating is sampled at the live edge even when no chat query
// has arrived yet.
func runCaptureScheduler(
	lc fx.Lifecycle,
	captureSvc *service.CaptureService,
	cfg *config.Config,
	log zerolog.Logger,
) {
	tickCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Dur("interval", cfg.CaptureInterval).Msg("capture scheduler starting")
				ticker := time.NewTicker(cfg.CaptureInterval)
				defer ticker.Stop()

				for {
					select {
					case <-tickCtx.Done():
						return
					case <-ticker.C:
						func() {
							c, done := context.WithTimeout(tickCtx, constants.RequestTimeout)
							defer done()
							if err := captureSvc.Tick(c); err != nil {
								log.Error().Err(err).Msg("capture tick failed")
							}
						}()
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			log.Info().Msg("capture scheduler stopped")
			return nil
		},
	})
}
