package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/robosim/internal/core/config"
	"github.com/zeusync/robosim/internal/core/events/bus"
	"github.com/zeusync/robosim/internal/core/observability/log"
	"github.com/zeusync/robosim/internal/core/world"
	"github.com/zeusync/robosim/internal/server"
)

// ProviderSet builds a world and its collaborators from a scenario.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	bus.New,
	ProvideWorld,
)

// Simulation is a built scenario ready to be stepped.
type Simulation struct {
	Scenario *config.Scenario
	World    *world.World
	Events   bus.EventBus
	Logger   log.Log
}

// ProvideLogger returns the process logger at the scenario's level.
func ProvideLogger(scenario *config.Scenario) (log.Log, error) {
	level, err := log.ParseLevel(scenario.Run.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := log.Provide()
	logger.SetLevel(level)
	return logger, nil
}

func ProvideWorld(scenario *config.Scenario, logger log.Log, events bus.EventBus) (*world.World, error) {
	return scenario.Build(logger, events)
}

// ProvideServer fills the step size from the scenario unless cfg sets one.
func ProvideServer(cfg server.Config, scenario *config.Scenario, w *world.World, events bus.EventBus, logger log.Log) (*server.Server, error) {
	if cfg.DT == 0 {
		cfg.DT = scenario.Run.DT
	}
	return server.NewServer(cfg, w, events, logger)
}
