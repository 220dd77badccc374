// Package main is the quadsim command, which drives bodies around a quadtree-indexed world.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go.viam.com/spatialindex/config"
	"go.viam.com/spatialindex/draw"
	"go.viam.com/spatialindex/quadtree"
	"go.viam.com/spatialindex/sim"
)

const (
	// Flags.
	flagConfig = "config"
	flagDebug  = "debug"
	flagQuiet  = "quiet"
	flagFrames = "frames"
	flagOut    = "out"
	flagScale  = "scale"
	flagDelete = "delete"
)

func main() {
	if err := newApp(clock.New()).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(clk clock.Clock) *cli.App {
	var logger golog.Logger

	return &cli.App{
		Name:  "quadsim",
		Usage: "simulate moving bodies indexed by a region quadtree",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging and index verification",
			},
			&cli.BoolFlag{
				Name:    flagQuiet,
				Aliases: []string{"q"},
				Usage:   "disable logging",
			},
		},
		Before: func(c *cli.Context) error {
			switch {
			case c.Bool(flagQuiet):
				logger = zap.NewNop().Sugar()
			case c.Bool(flagDebug):
				logger = golog.NewDebugLogger("quadsim")
			default:
				logger = golog.NewDevelopmentLogger("quadsim")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the simulation headless, logging index statistics",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagFrames,
						Usage: "number of frames to run, overriding the config",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c, logger)
					if err != nil {
						return err
					}
					world, err := runWorld(c, cfg, clk, logger)
					if err != nil {
						return err
					}
					s, err := world.Stats()
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "ran %d frames: %d bodies in %d nodes (max depth %d)\n",
						s.Frame, s.Bodies, s.Nodes, s.MaxDepth)
					return nil
				},
			},
			{
				Name:  "snapshot",
				Usage: "run the simulation, then render the index to a PNG",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagFrames,
						Usage: "number of frames to run before rendering, overriding the config",
					},
					&cli.StringFlag{
						Name:     flagOut,
						Aliases:  []string{"o"},
						Usage:    "write the image to `PNG`",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  flagScale,
						Value: 1,
						Usage: "pixels per world unit",
					},
					&cli.BoolFlag{
						Name:  flagDelete,
						Usage: "delete the bodies under the selection box before rendering",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c, logger)
					if err != nil {
						return err
					}
					world, err := runWorld(c, cfg, clk, logger)
					if err != nil {
						return err
					}

					bounds := cfg.Bounds()
					selection := quadtree.Region{Center: bounds.Center, Half: cfg.SelectHalf()}
					if c.Bool(flagDelete) {
						removed := world.DeleteUnder(selection.Center, selection.Half)
						logger.Infow("deleted bodies under selection", "count", removed, "selection", selection)
					} else {
						logger.Infow("selected bodies", "count", len(world.Select(selection.Center, selection.Half)))
					}

					out := c.String(flagOut)
					if err := draw.SavePNG(out, world.Index(), draw.Options{
						Scale:     c.Float64(flagScale),
						Highlight: &selection,
					}); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "wrote %s after %d frames\n", out, world.Frame())
					return nil
				},
			},
		},
	}
}

func loadConfig(c *cli.Context, logger golog.Logger) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(c.Context, path, logger); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}
	if c.Bool(flagDebug) {
		cfg.Index.Debug = true
	}
	if c.IsSet(flagFrames) {
		if c.Int(flagFrames) < 0 {
			return nil, errors.Errorf("--%s must not be negative", flagFrames)
		}
		cfg.Frames = c.Int(flagFrames)
	}
	return cfg, nil
}

// runWorld builds a world from cfg, spawns its bodies, and runs it until the frames are done
// or the process is interrupted.
func runWorld(c *cli.Context, cfg *config.Config, clk clock.Clock, logger golog.Logger) (*sim.World, error) {
	world, err := sim.NewWorld(cfg.SimConfig(), logger)
	if err != nil {
		return nil, err
	}
	spawned := world.SpawnRandom(cfg.Bodies.Count)
	logger.Infow("spawned bodies", "requested", cfg.Bodies.Count, "spawned", spawned, "config", cfg.String())

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &sim.Runner{
		World:      world,
		Clock:      clk,
		Interval:   cfg.FrameInterval(),
		StatsEvery: cfg.StatsEvery,
		Logger:     logger,
	}
	if err := runner.Run(ctx, cfg.Frames); err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}
	return world, nil
}
