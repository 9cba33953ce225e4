//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/robosim/internal/core/config"
	"github.com/zeusync/robosim/internal/server"
)

func InitializeSimulation(scenario *config.Scenario) (*Simulation, error) {
	wire.Build(ProviderSet, wire.Struct(new(Simulation), "*"))
	return nil, nil
}

func InitializeServer(scenario *config.Scenario, cfg server.Config) (*server.Server, error) {
	wire.Build(ProviderSet, ProvideServer)
	return nil, nil
}
