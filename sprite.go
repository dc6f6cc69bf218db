package canvas

// Sprite draws a texture stretched over its bounds, tinted by its color.
// A nil texture draws a solid rectangle.
type Sprite struct {
	Base
	texture *Texture
}

// NewSprite creates a sprite sized to tex, or to 0x0 when tex is nil.
func NewSprite(name string, tex *Texture) *Sprite {
	s := &Sprite{texture: tex}
	s.init(s, name)
	if tex != nil {
		s.size = Vec2{X: float32(tex.Width()), Y: float32(tex.Height())}
	} else {
		s.size = Vec2{}
	}
	return s
}

// NewRect creates an untextured sprite of the given size and color.
func NewRect(name string, w, h float32, c Color) *Sprite {
	s := NewSprite(name, nil)
	s.size = Vec2{X: w, Y: h}
	s.color = c
	return s
}

// Texture returns the sprite's texture, which may be nil.
func (s *Sprite) Texture() *Texture { return s.texture }

// SetTexture replaces the texture. The size is left unchanged.
func (s *Sprite) SetTexture(tex *Texture) {
	if s.texture == tex {
		return
	}
	s.texture = tex
	s.MarkDirty()
}

// Paint implements View.
func (s *Sprite) Paint(dst []ViewMesh) []ViewMesh {
	if s.bounds.Empty() {
		return dst
	}
	return append(dst, QuadMesh(s.bounds, s.texture, s.color))
}
