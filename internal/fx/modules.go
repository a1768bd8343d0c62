package fx

import (
	"database/sql"

	"github.com/kazu-source/Stream-Record-Tracker/internal/api"
	"github.com/kazu-source/Stream-Record-Tracker/internal/config"
	"github.com/kazu-source/Stream-Record-Tracker/internal/database"
	"github.com/kazu-source/Stream-Record-Tracker/internal/logger"
	"github.com/kazu-source/Stream-Record-Tracker/internal/repository"
	"github.com/kazu-source/Stream-Record-Tracker/internal/server"
	"github.com/kazu-source/Stream-Record-Tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideKV(db *sql.DB, log zerolog.Logger) repository.KV {
	return repository.NewSQLiteKV(db, log)
}

func ProvideRiotAPI(c *api.RiotClient) service.RiotAPI { return c }

func ProvideTwitchAPI(c *api.TwitchClient) service.TwitchAPI { return c }

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// store
	fx.Provide(ProvideKV),
	fx.Provide(repository.NewSessionRepository),
	fx.Provide(repository.NewCaptureRepository),
	// api clients
	fx.Provide(api.NewRiotClient),
	fx.Provide(api.NewTwitchClient),
	fx.Provide(ProvideRiotAPI),
	fx.Provide(ProvideTwitchAPI),
	// svc
	fx.Provide(service.NewSessionResolver),
	fx.Provide(service.NewRegistry),
	fx.Provide(service.NewCaptureService),
	// server
	fx.Provide(server.NewRecordServer),
)
