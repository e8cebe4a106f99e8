package fx

import (
	"github.com/StevenSuh/feeder/internal/config"
	"github.com/StevenSuh/feeder/internal/database"
	"github.com/StevenSuh/feeder/internal/logger"
	"github.com/StevenSuh/feeder/internal/repository"
	"github.com/StevenSuh/feeder/internal/riot"
	"github.com/StevenSuh/feeder/internal/server"
	"github.com/StevenSuh/feeder/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// store
	fx.Provide(repository.NewFeederRepository),
	fx.Provide(func(r *repository.FeederRepository) service.FeederStore { return r }),
	// riot client
	fx.Provide(riot.NewClient),
	fx.Provide(func(c *riot.Client) service.MatchAPI { return c }),
	// svc
	fx.Provide(service.NewAggregator),
	fx.Provide(service.NewRosterService),
	// http
	fx.Provide(func(s *service.RosterService) server.Roster { return s }),
	fx.Provide(server.NewServer),
)
