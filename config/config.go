// Package config defines the configuration of a quadsim run.
package config

import (
	"fmt"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/spatialindex/quadtree"
	"go.viam.com/spatialindex/sim"
)

// Config describes a simulated world, the index behind it, and how long to run it.
type Config struct {
	World      WorldConfig  `json:"world"`
	Index      IndexConfig  `json:"index"`
	Bodies     BodiesConfig `json:"bodies"`
	Select     SelectConfig `json:"select"`
	Frames     int          `json:"frames"`
	FrameMs    int          `json:"frame_ms"`
	StatsEvery int          `json:"stats_every"`

	ConfigFilePath string `json:"-"`
}

// WorldConfig is the size of the world. Its top-left corner is the origin and y grows downward.
type WorldConfig struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IndexConfig tunes the quadtree.
type IndexConfig struct {
	Capacity     int  `json:"capacity"`
	InitialNodes int  `json:"initial_nodes"`
	MaxDepth     int  `json:"max_depth"`
	Debug        bool `json:"debug"`
}

// BodiesConfig describes the bodies spawned at startup.
type BodiesConfig struct {
	Count int     `json:"count"`
	Speed float64 `json:"speed"`
	Seed  int64   `json:"seed"`
}

// SelectConfig is the half size of the selection box used for highlighting and deletion.
type SelectConfig struct {
	HalfWidth  float64 `json:"half_width"`
	HalfHeight float64 `json:"half_height"`
}

// Defaults used when a field is left out.
const (
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultBodies     = 10000
	DefaultSpeed      = 0.6
	DefaultFrames     = 600
	DefaultFrameMs    = 16
	DefaultStatsEvery = 60
	DefaultSelectHalf = 50
)

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.World.Width == 0 {
		c.World.Width = DefaultWidth
	}
	if c.World.Height == 0 {
		c.World.Height = DefaultHeight
	}
	if c.Index.Capacity == 0 {
		c.Index.Capacity = quadtree.DefaultCapacity
	}
	if c.Index.InitialNodes == 0 {
		c.Index.InitialNodes = quadtree.DefaultInitialNodes
	}
	if c.Index.MaxDepth == 0 {
		c.Index.MaxDepth = quadtree.DefaultMaxDepth
	}
	if c.Bodies.Count == 0 {
		c.Bodies.Count = DefaultBodies
	}
	if c.Bodies.Speed == 0 {
		c.Bodies.Speed = DefaultSpeed
	}
	if c.Frames == 0 {
		c.Frames = DefaultFrames
	}
	if c.FrameMs == 0 {
		c.FrameMs = DefaultFrameMs
	}
	if c.StatsEvery == 0 {
		c.StatsEvery = DefaultStatsEvery
	}
	if c.Select.HalfWidth == 0 {
		c.Select.HalfWidth = DefaultSelectHalf
	}
	if c.Select.HalfHeight == 0 {
		c.Select.HalfHeight = DefaultSelectHalf
	}
}

// Ensure fills in defaults and ensures all parts of the config are valid.
func (c *Config) Ensure() error {
	c.applyDefaults()

	if err := c.World.Validate("world"); err != nil {
		return err
	}
	if err := c.Index.Validate("index"); err != nil {
		return err
	}
	if err := c.Bodies.Validate("bodies"); err != nil {
		return err
	}
	if err := c.Select.Validate("select"); err != nil {
		return err
	}
	for _, field := range []struct {
		name  string
		value int
	}{{"frames", c.Frames}, {"frame_ms", c.FrameMs}, {"stats_every", c.StatsEvery}} {
		if field.value < 0 {
			return utils.NewConfigValidationError(field.name, errors.Errorf("must not be negative, got %d", field.value))
		}
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (wc *WorldConfig) Validate(path string) error {
	if wc.Width <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("width must be positive, got %v", wc.Width))
	}
	if wc.Height <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("height must be positive, got %v", wc.Height))
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (ic *IndexConfig) Validate(path string) error {
	if ic.Capacity < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("capacity must be at least 1, got %d", ic.Capacity))
	}
	if ic.InitialNodes < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("initial_nodes must be at least 1, got %d", ic.InitialNodes))
	}
	if ic.MaxDepth < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("max_depth must be at least 1, got %d", ic.MaxDepth))
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (bc *BodiesConfig) Validate(path string) error {
	if bc.Count < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("count must not be negative, got %d", bc.Count))
	}
	if bc.Speed < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("speed must not be negative, got %v", bc.Speed))
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (sc *SelectConfig) Validate(path string) error {
	if sc.HalfWidth < 0 || sc.HalfHeight < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("half extents must not be negative, got (%v, %v)", sc.HalfWidth, sc.HalfHeight))
	}
	return nil
}

// Bounds returns the world as a region.
func (c *Config) Bounds() quadtree.Region {
	half := r2.Point{X: c.World.Width / 2, Y: c.World.Height / 2}
	return quadtree.Region{Center: half, Half: half}
}

// SelectHalf returns the half extents of the selection box.
func (c *Config) SelectHalf() r2.Point {
	return r2.Point{X: c.Select.HalfWidth, Y: c.Select.HalfHeight}
}

// FrameInterval returns the pause between frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameMs) * time.Millisecond
}

// SimConfig converts the config into what the simulation needs.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Bounds: c.Bounds(),
		Index: quadtree.Config{
			Capacity:     c.Index.Capacity,
			InitialNodes: c.Index.InitialNodes,
			MaxDepth:     c.Index.MaxDepth,
			Debug:        c.Index.Debug,
		},
		Speed: c.Bodies.Speed,
		Seed:  c.Bodies.Seed,
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%vx%v world, %d bodies, capacity %d, %d frames",
		c.World.Width, c.World.Height, c.Bodies.Count, c.Index.Capacity, c.Frames)
}
