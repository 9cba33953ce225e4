package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/robosim/internal/core/events/bus"
	"github.com/zeusync/robosim/internal/core/observability/log"
	"github.com/zeusync/robosim/internal/core/sensors"
)

func TestLoadFileFormatsAgree(t *testing.T) {
	fromYAML, err := LoadFile(filepath.Join("testdata", "two_robots.yaml"))
	require.NoError(t, err)
	fromJSON, err := LoadFile(filepath.Join("testdata", "two_robots.json"))
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromYAML)
}

func TestLoadAppliesDefaults(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "two_robots.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 400.0, s.World.Width)
	assert.Equal(t, []int{128, 0, 128}, s.World.BoundaryColor)
	assert.Equal(t, RunOptions{Ticks: 20, DT: 0.1, LogLevel: "debug", SnapshotEvery: 5}, s.Run)

	require.Len(t, s.Robots, 2)
	scout, rover := s.Robots[0], s.Robots[1]
	require.Len(t, scout.RangeSensors, 1)
	assert.Equal(t, 0.0, *scout.RangeSensors[0].Width)
	assert.Equal(t, 10.0, *scout.RangeSensors[0].Position)
	require.Len(t, scout.Cameras, 2)
	assert.Equal(t, 60.0, scout.Cameras[0].Angle)
	assert.True(t, *scout.Cameras[0].ReflectSky)

	assert.Equal(t, []int{255, 0, 0}, rover.Color)
	assert.False(t, *rover.Trace)
	assert.Equal(t, 1000, rover.MaxTraceLength)
}

func TestLoadEmptyYAML(t *testing.T) {
	s, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 500.0, s.World.Width)
	assert.Equal(t, 250.0, s.World.Height)
	assert.Equal(t, 100, s.Run.Ticks)
	assert.Equal(t, 0.05, s.Run.DT)
	assert.Equal(t, "info", s.Run.LogLevel)
	assert.Empty(t, s.Robots)
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "bad_schema.json"))
	require.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "colour")

	_, err = LoadYAML(strings.NewReader("run:\n  logLevel: loud\n"))
	require.ErrorIs(t, err, ErrSchema)

	_, err = LoadJSON(strings.NewReader(`{"robots": [{"cameras": [{"width": 0}]}]}`))
	require.ErrorIs(t, err, ErrSchema, "camera width minimum")
}

func TestLoadDropsCameraWithoutType(t *testing.T) {
	doc := `{"robots":[{"name":"eye","cameras":[
		{"width":8,"height":4},
		{"type":"Camera","width":8,"height":4}
	]}]}`
	s, err := Load(strings.NewReader(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, s.Robots[0].Cameras, 2)

	w, err := s.Build(log.NewNop(), nil)
	require.NoError(t, err)
	cameras := w.Robots()[0].Cameras()
	require.Len(t, cameras, 1)
	assert.Equal(t, sensors.TypeCamera, cameras[0].Type())
	width, height := cameras[0].Shape()
	assert.Equal(t, 8, width)
	assert.Equal(t, 4, height)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := LoadFile("scenario.toml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(strings.NewReader("{}"), Format("ini"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	format, err := FormatOf("a/b/c.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, format)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuild(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "two_robots.json"))
	require.NoError(t, err)

	events := bus.New()
	added := 0
	_, err = events.SubscribeTopic(bus.TopicSimulation, bus.EventRobotAdded, func(bus.Event) error {
		added++
		return nil
	})
	require.NoError(t, err)

	w, err := s.Build(log.NewNop(), events)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	require.Len(t, w.Robots(), 2)
	assert.Len(t, w.Walls(), 4+1+2)

	scout := w.Robots()[0]
	require.Len(t, scout.Cameras(), 1, "unknown camera type dropped")
	assert.Equal(t, sensors.TypeDepthCamera, scout.Cameras()[0].Type())

	w.Update(s.Run.DT)
	assert.InDelta(t, 50, scout.RangeSensors()[0].Distance(), 0.2)
}

func TestDefaultScenario(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	w, err := s.Build(nil, nil)
	require.NoError(t, err)
	require.Len(t, w.Robots(), 1)
	assert.Len(t, w.Robots()[0].RangeSensors(), 2)
	assert.Len(t, w.Robots()[0].Cameras(), 1)
}
