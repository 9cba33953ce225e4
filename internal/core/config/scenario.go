package config

import (
	"fmt"

	"github.com/zeusync/robosim/internal/core/events/bus"
	"github.com/zeusync/robosim/internal/core/observability/log"
	"github.com/zeusync/robosim/internal/core/sensors"
	"github.com/zeusync/robosim/internal/core/systems/physics"
	"github.com/zeusync/robosim/internal/core/world"
)

// Scenario is a complete simulation setup.
type Scenario struct {
	World  world.Options        `json:"world" yaml:"world"`
	Robots []world.RobotOptions `json:"robots" yaml:"robots"`
	Run    RunOptions           `json:"run" yaml:"run"`
}

// RunOptions control a headless or served run.
type RunOptions struct {
	Ticks int `json:"ticks" yaml:"ticks" default:"100"`
	// DT is how much simulation time one update advances.
	DT       float64 `json:"dt" yaml:"dt" default:"0.05"`
	LogLevel string  `json:"logLevel" yaml:"logLevel" default:"info"`
	// SnapshotEvery writes pictures every N ticks; 0 only after the last.
	SnapshotEvery int `json:"snapshotEvery" yaml:"snapshotEvery"`
}

func (s *Scenario) Validate() error {
	if err := s.World.Validate(); err != nil {
		return err
	}
	if s.Run.DT <= 0 {
		return fmt.Errorf("run: dt must be positive, got %v", s.Run.DT)
	}
	if _, err := log.ParseLevel(s.Run.LogLevel); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// Build creates the world and registers every robot in document order.
func (s *Scenario) Build(logger log.Log, events bus.EventBus) (*world.World, error) {
	w, err := world.New(s.World, logger, events)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	for i, ro := range s.Robots {
		r, err := world.NewRobot(ro, logger)
		if err != nil {
			return nil, fmt.Errorf("build robot %d: %w", i, err)
		}
		if err = w.AddRobot(r); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Default is the scenario used when none is given: one robot with a camera
// and two range sensors in an arena with a few boxes.
func Default() *Scenario {
	s := &Scenario{
		World: world.Options{
			Boxes: []world.BoxOptions{
				{Color: []int{0, 0, 255}, P1: point(200, 40), P2: point(240, 90)},
				{Color: []int{255, 255, 0}, P1: point(340, 150), P2: point(400, 200)},
			},
		},
		Robots: []world.RobotOptions{{
			Name:  "Robbie",
			X:     100,
			Y:     125,
			Color: []int{255, 0, 0},
			Body:  [][]float64{{10, 10}, {-10, 10}, {-10, -10}, {10, -10}},
			Cameras: []sensors.CameraOptions{
				{Type: sensors.TypeCamera},
			},
			RangeSensors: []sensors.RangeOptions{
				{Direction: 0.5},
				{Direction: -0.5},
			},
		}},
	}
	scenario, err := finish(s)
	if err != nil {
		panic(err)
	}
	return scenario
}

func point(x, y float64) physics.Point {
	return physics.Point{X: x, Y: y}
}
