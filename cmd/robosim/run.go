package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/zeusync/robosim/internal/core/observability/log"
	"github.com/zeusync/robosim/internal/core/render/raster"
	"github.com/zeusync/robosim/internal/core/world"
	"github.com/zeusync/robosim/internal/injector"
	"github.com/zeusync/robosim/pkg/concurrent"
)

// cameraScale is the pixel block size of camera snapshots.
const cameraScale = 2

type runOptions struct {
	OutDir string
	Scale  float64
}

// run steps the simulation scenario.Run.Ticks times. With an output
// directory it writes snapshots every snapshotEvery ticks and after the last.
func run(ctx context.Context, sim *injector.Simulation, opts runOptions) error {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return err
		}
	}

	logger := sim.Logger.With(log.String("component", "runner"))
	w := sim.World
	runCfg := sim.Scenario.Run

	logger.Info("Run started",
		log.Int("ticks", runCfg.Ticks),
		log.Float64("dt", runCfg.DT),
		log.Int("robots", len(w.Robots())))

	for tick := 1; tick <= runCfg.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.Update(float64(tick) * runCfg.DT)

		due := runCfg.SnapshotEvery > 0 && tick%runCfg.SnapshotEvery == 0
		if opts.OutDir != "" && (due || tick == runCfg.Ticks) {
			if err := snapshot(ctx, w, opts, tick); err != nil {
				return err
			}
			logger.Debug("Snapshot written", log.Int("tick", tick))
		}
	}

	for _, r := range w.Robots() {
		x, y, dir := r.Pose()
		logger.Info("Robot finished",
			log.String("robot", r.Name()),
			log.Float64("x", x),
			log.Float64("y", y),
			log.Float64("direction", dir),
			log.Bool("stalled", r.Stalled()))
	}
	logger.Info("Run finished", log.Uint64("ticks", w.Ticks()), log.Float64("time", w.Time()))

	return nil
}

// snapshot writes world-NNNNNN.png and one PNG per camera as
// <robot index>-<robot name>-cam<camera index>-NNNNNN.png.
func snapshot(ctx context.Context, w *world.World, opts runOptions, tick int) error {
	c := raster.New(int(math.Ceil(w.Width()*opts.Scale)), int(math.Ceil(w.Height()*opts.Scale)), opts.Scale)
	w.Draw(c)
	if err := writePNG(filepath.Join(opts.OutDir, fmt.Sprintf("world-%06d.png", tick)), c); err != nil {
		return err
	}

	type job struct {
		robot  *world.Robot
		camera int
	}
	var jobs []job
	for _, r := range w.Robots() {
		for i := range r.Cameras() {
			jobs = append(jobs, job{robot: r, camera: i})
		}
	}

	return concurrent.ForEach(ctx, len(jobs), 0, func(_ context.Context, i int) error {
		j := jobs[i]
		pic := j.robot.Cameras()[j.camera].TakePicture()
		cc := raster.New(pic.Width*cameraScale, pic.Height*cameraScale, 1)
		cc.Picture(pic, 0, 0, cameraScale)
		name := fmt.Sprintf("%d-%s-cam%d-%06d.png", j.robot.Index(), j.robot.Name(), j.camera, tick)
		return writePNG(filepath.Join(opts.OutDir, name), cc)
	})
}

func writePNG(path string, c *raster.Canvas) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = c.EncodePNG(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
