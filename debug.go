package globe

import (
	"fmt"
	"log/slog"
	"time"
)

// debugStats holds per-frame timing and draw-call metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	drawTime      time.Duration
	nodeCount     int
	triangleCount int
	drawCallCount int
}

// debugLog logs frame stats at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	s.logger.Debug("frame",
		slog.Duration("draw", stats.drawTime),
		slog.Int("nodes", stats.nodeCount),
		slog.Int("triangles", stats.triangleCount),
		slog.Int("draw_calls", stats.drawCallCount),
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode; in release mode callers
// skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("globe debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		slog.Warn("tree depth exceeds threshold",
			slog.Int("depth", depth), slog.Int("threshold", debugMaxTreeDepth), slog.String("node", n.Name))
	}
}

// debugCheckChildCount warns if a node has more children than a globe scene
// should ever need; a growing count usually means overlays are leaking.
const debugMaxChildCount = 64

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		slog.Warn("node child count exceeds threshold",
			slog.String("node", n.Name), slog.Int("children", len(n.children)), slog.Int("threshold", debugMaxChildCount))
	}
}
