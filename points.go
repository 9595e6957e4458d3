package globe

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r3"
	"github.com/hajimehoshi/ebiten/v2"
)

// PointCloud is a set of world-space points drawn as small screen-aligned
// squares in a single draw call.
type PointCloud struct {
	Positions []r3.Vector
	// Size is the point size in world units; points are at least 1px.
	Size      float64
	Color     Color
	BlendMode BlendMode

	verts []ebiten.Vertex
	idx   []uint16
}

// maxPoints keeps four vertices per point addressable by uint16 indices.
const maxPoints = 65536 / 4

// NewStarField scatters count points uniformly in a cube of the given
// half-extent. The seed makes the layout reproducible.
func NewStarField(name string, count int, extent float64, seed uint64) *Node {
	count = min(max(count, 0), maxPoints)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pts := make([]r3.Vector, count)
	for i := range pts {
		pts[i] = r3.Vector{
			X: (rng.Float64()*2 - 1) * extent,
			Y: (rng.Float64()*2 - 1) * extent,
			Z: (rng.Float64()*2 - 1) * extent,
		}
	}
	return NewPoints(name, &PointCloud{
		Positions: pts,
		Size:      0.5,
		Color:     Color{1, 1, 1, 0.8},
		BlendMode: BlendAdd,
	})
}

// buildFrame emits one quad per visible point.
func (pc *PointCloud) buildFrame(v *viewTransform, rotationY, alpha float64) ([]ebiten.Vertex, []uint16) {
	pc.verts = pc.verts[:0]
	pc.idx = pc.idx[:0]
	a := pc.Color.A * alpha
	cr, cg, cb, ca := float32(pc.Color.R*a), float32(pc.Color.G*a), float32(pc.Color.B*a), float32(a)

	n := min(len(pc.Positions), maxPoints)
	for _, p := range pc.Positions[:n] {
		sx, sy, z, ok := v.project(rotateY(p, rotationY))
		if !ok {
			continue
		}
		half := float32(math.Max(0.5, pc.Size*v.f/z/2))
		x, y := float32(sx), float32(sy)
		base := uint16(len(pc.verts))
		pc.verts = append(pc.verts,
			ebiten.Vertex{DstX: x - half, DstY: y - half, SrcX: 0, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
			ebiten.Vertex{DstX: x + half, DstY: y - half, SrcX: 1, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
			ebiten.Vertex{DstX: x + half, DstY: y + half, SrcX: 1, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
			ebiten.Vertex{DstX: x - half, DstY: y + half, SrcX: 0, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		)
		pc.idx = append(pc.idx, base, base+1, base+2, base, base+2, base+3)
	}
	return pc.verts, pc.idx
}
