package canvas

import "fmt"

// DrawRange is a contiguous span of the index buffer drawn with one atlas
// layer bound: a single DrawIndexed call.
type DrawRange struct {
	Layer int
	Start int // first index
	Count int // number of indices
}

// Buffers is one complete set of batched geometry. A Renderer keeps two:
// the published set the backend draws from and the set being rebuilt.
type Buffers struct {
	Vertices  []Vertex
	Indices   []uint32
	Draws     []DrawRange
	IndexType IndexType

	// Generation increases every time this set is published, so backends
	// can skip re-uploading unchanged buffers.
	Generation uint64
}

// Batcher merges view meshes into a Buffers set, rewriting each mesh's local
// UVs into the normalized coordinates of its texture's atlas region.
type Batcher struct {
	layerSize   int
	maxVertices int

	reallocs int
}

// NewBatcher creates a batcher for atlas layers of the given size.
// maxVertices 0 means unlimited growth.
func NewBatcher(layerSize, maxVertices int) *Batcher {
	return &Batcher{layerSize: layerSize, maxVertices: maxVertices}
}

// Reallocations returns how many times a buffer had to grow.
func (b *Batcher) Reallocations() int { return b.reallocs }

// Build rewrites dst from meshes in paint order. Consecutive meshes on the
// same layer share one DrawRange. lookup must return the packed region of
// every mesh texture. On error dst is left with zero lengths.
func (b *Batcher) Build(dst *Buffers, meshes []ViewMesh, lookup func(*Texture) (Region, bool)) error {
	dst.Vertices = dst.Vertices[:0]
	dst.Indices = dst.Indices[:0]
	dst.Draws = dst.Draws[:0]
	dst.IndexType = IndexUint32

	nv, ni := 0, 0
	for i := range meshes {
		if len(meshes[i].Indices) == 0 {
			continue
		}
		nv += len(meshes[i].Vertices)
		ni += len(meshes[i].Indices)
	}
	if b.maxVertices > 0 && nv > b.maxVertices {
		return fmt.Errorf("%w: %d vertices exceeds limit %d", ErrBufferAllocationFailed, nv, b.maxVertices)
	}
	if cap(dst.Vertices) < nv {
		dst.Vertices = make([]Vertex, 0, b.grow(cap(dst.Vertices), nv))
	}
	if cap(dst.Indices) < ni {
		dst.Indices = make([]uint32, 0, b.grow(cap(dst.Indices), ni))
	}

	size := float32(b.layerSize)
	for i := range meshes {
		m := &meshes[i]
		if len(m.Indices) == 0 {
			continue
		}
		tex := m.Texture
		if tex == nil {
			tex = whiteTexture
		}
		r, ok := lookup(tex)
		if !ok {
			dst.Vertices = dst.Vertices[:0]
			dst.Indices = dst.Indices[:0]
			dst.Draws = dst.Draws[:0]
			return fmt.Errorf("canvas: texture %d has no atlas region", tex.ID())
		}

		rx, ry := float32(r.X), float32(r.Y)
		rw, rh := float32(r.Width), float32(r.Height)
		base := uint32(len(dst.Vertices))
		for _, v := range m.Vertices {
			v.U = (rx + v.U*rw) / size
			v.V = (ry + v.V*rh) / size
			dst.Vertices = append(dst.Vertices, v)
		}

		start := len(dst.Indices)
		for _, idx := range m.Indices {
			dst.Indices = append(dst.Indices, base+uint32(idx))
		}

		if k := len(dst.Draws); k > 0 && dst.Draws[k-1].Layer == r.Layer {
			dst.Draws[k-1].Count += len(m.Indices)
		} else {
			dst.Draws = append(dst.Draws, DrawRange{Layer: r.Layer, Start: start, Count: len(m.Indices)})
		}
	}
	return nil
}

// grow returns the capacity to allocate for need elements, doubling from cur.
func (b *Batcher) grow(cur, need int) int {
	b.reallocs++
	c := max(cur, 64)
	for c < need {
		c *= 2
	}
	return c
}
