package canvas

// Container groups subviews. It paints a solid background only when its
// color has a non-zero alpha.
type Container struct {
	Base
}

// NewContainer creates a transparent container that fills its parent.
func NewContainer(name string) *Container {
	c := &Container{}
	c.init(c, name)
	c.color = Color{}
	return c
}

// Paint implements View.
func (c *Container) Paint(dst []ViewMesh) []ViewMesh {
	if c.color.A <= 0 || c.bounds.Empty() {
		return dst
	}
	return append(dst, QuadMesh(c.bounds, nil, c.color))
}
