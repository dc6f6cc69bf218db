package canvas

// Vertex is one entry of the shared vertex buffer. Positions are in screen
// pixels; U and V are normalized atlas-layer coordinates once batched.
// Color is straight (not premultiplied) alpha.
type Vertex struct {
	X, Y       float32
	U, V       float32
	R, G, B, A float32
}

// ViewMesh is the geometry produced for one textured piece of a view:
// screen-space vertices whose U/V are local to Texture (0..1 across the
// texture), plus triangle indices into Vertices.
//
// A view emits one ViewMesh per texture it draws; a label emits one per
// visible glyph.
type ViewMesh struct {
	Vertices []Vertex
	Indices  []uint16
	Texture  *Texture
}

// quadIndices is the index pattern of a quad laid out TL, TR, BL, BR.
var quadIndices = [6]uint16{0, 1, 2, 1, 3, 2}

// QuadMesh builds a textured quad covering r with the given tint. Vertex
// order is TL, TR, BL, BR.
func QuadMesh(r Rect, tex *Texture, c Color) ViewMesh {
	x0, y0, x1, y1 := r.X, r.Y, r.Right(), r.Bottom()
	return ViewMesh{
		Vertices: []Vertex{
			{X: x0, Y: y0, U: 0, V: 0, R: c.R, G: c.G, B: c.B, A: c.A},
			{X: x1, Y: y0, U: 1, V: 0, R: c.R, G: c.G, B: c.B, A: c.A},
			{X: x0, Y: y1, U: 0, V: 1, R: c.R, G: c.G, B: c.B, A: c.A},
			{X: x1, Y: y1, U: 1, V: 1, R: c.R, G: c.G, B: c.B, A: c.A},
		},
		Indices: quadIndices[:],
		Texture: tex,
	}
}
