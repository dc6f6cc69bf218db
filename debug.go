package canvas

import (
	"log/slog"
	"time"
)

// RebuildStats describes the most recent successful rebuild.
type RebuildStats struct {
	Reasons     DirtyReason
	LayoutTime  time.Duration
	PaintTime   time.Duration
	AtlasTime   time.Duration
	BatchTime   time.Duration
	Meshes      int
	Vertices    int
	Indices     int
	DrawRanges  int
	Uploads     int
	AtlasLayers int
	Evictions   int
}

// Total returns the summed duration of all rebuild phases.
func (s RebuildStats) Total() time.Duration {
	return s.LayoutTime + s.PaintTime + s.AtlasTime + s.BatchTime
}

// LogValue implements slog.LogValuer.
func (s RebuildStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("reasons", s.Reasons.String()),
		slog.Duration("layout", s.LayoutTime),
		slog.Duration("paint", s.PaintTime),
		slog.Duration("atlas", s.AtlasTime),
		slog.Duration("batch", s.BatchTime),
		slog.Duration("total", s.Total()),
		slog.Int("meshes", s.Meshes),
		slog.Int("vertices", s.Vertices),
		slog.Int("draws", s.DrawRanges),
		slog.Int("uploads", s.Uploads),
		slog.Int("layers", s.AtlasLayers),
		slog.Int("evictions", s.Evictions),
	)
}

// globalDebug mirrors the debug flag of the most recently configured
// renderer so that view operations, which lack a renderer pointer, can
// check it cheaply.
var globalDebug bool

// SetDebugMode enables tree sanity warnings and per-rebuild stats logging
// at debug level.
func (r *Renderer) SetDebugMode(enabled bool) {
	r.cfg.Debug = enabled
	globalDebug = enabled
}

const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns if the tree depth exceeds the threshold.
func debugCheckTreeDepth(v View) {
	depth := 0
	for p := v; p != nil; p = p.Node().parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("view tree too deep", "depth", depth, "threshold", debugMaxTreeDepth, "view", v.Node().Name)
	}
}

const debugMaxSubviewCount = 1000

// debugCheckSubviewCount warns if a view has more than 1000 subviews.
func debugCheckSubviewCount(b *Base) {
	if len(b.subviews) > debugMaxSubviewCount {
		Logger().Warn("view has many subviews", "view", b.Name, "count", len(b.subviews), "threshold", debugMaxSubviewCount)
	}
}

func (r *Renderer) debugLog(stats RebuildStats) {
	if !r.cfg.Debug {
		return
	}
	Logger().Debug("canvas rebuild", "stats", stats)
}
