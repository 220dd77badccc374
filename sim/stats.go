package sim

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"go.viam.com/spatialindex/quadtree"
)

// Stats summarizes the shape of the index at one frame.
type Stats struct {
	Frame      int
	Bodies     int
	Nodes      int
	Leaves     int
	MaxDepth   int
	ArenaSlots int
	ArenaGrows int

	// Depth of the node holding each point.
	MeanPointDepth float64
	P95PointDepth  float64
	// Points per occupied node.
	MeanOccupancy float64
}

// Stats walks the index and summarizes it.
func (w *World) Stats() (Stats, error) {
	s := Stats{
		Frame:      w.frame,
		Bodies:     len(w.bodies),
		Nodes:      w.index.NodeCount(),
		ArenaSlots: w.index.ArenaSlots(),
		ArenaGrows: w.index.ArenaGrows(),
	}

	var depths, occupancy stats.Float64Data
	w.index.Traverse(func(v quadtree.NodeView) bool {
		if !v.Divided {
			s.Leaves++
		}
		if v.Depth > s.MaxDepth {
			s.MaxDepth = v.Depth
		}
		if len(v.Points) == 0 {
			return true
		}
		occupancy = append(occupancy, float64(len(v.Points)))
		for range v.Points {
			depths = append(depths, float64(v.Depth))
		}
		return true
	})
	if len(depths) == 0 {
		return s, nil
	}

	var err error
	if s.MeanPointDepth, err = depths.Mean(); err != nil {
		return s, errors.Wrap(err, "failed to compute mean point depth")
	}
	if s.P95PointDepth, err = depths.Percentile(95); err != nil {
		return s, errors.Wrap(err, "failed to compute point depth percentile")
	}
	if s.MeanOccupancy, err = occupancy.Mean(); err != nil {
		return s, errors.Wrap(err, "failed to compute node occupancy")
	}
	return s, nil
}
