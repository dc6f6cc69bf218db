package canvas

import "strings"

// DirtyReason records why a rebuild was requested.
type DirtyReason uint8

const (
	// DirtyLayout means a view property or the tree structure changed.
	DirtyLayout DirtyReason = 1 << iota
	// DirtyResize means the canvas size changed.
	DirtyResize
	// DirtyTexture means a texture was released or replaced.
	DirtyTexture
	// DirtyExplicit means MarkCanvasDirty was called.
	DirtyExplicit
)

func (r DirtyReason) String() string {
	if r == 0 {
		return "clean"
	}
	var parts []string
	for _, p := range [...]struct {
		bit  DirtyReason
		name string
	}{
		{DirtyLayout, "layout"},
		{DirtyResize, "resize"},
		{DirtyTexture, "texture"},
		{DirtyExplicit, "explicit"},
	} {
		if r&p.bit != 0 {
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, "|")
}

// dirtyTracker accumulates rebuild requests. The reasons survive until a
// rebuild and publish both succeed.
type dirtyTracker struct {
	reasons DirtyReason
}

func (d *dirtyTracker) mark(r DirtyReason) { d.reasons |= r }

func (d *dirtyTracker) dirty() bool { return d.reasons != 0 }

// pending returns the reasons without clearing them.
func (d *dirtyTracker) pending() DirtyReason { return d.reasons }

// clear drops only the reasons that were rebuilt; requests made during the
// rebuild stay pending.
func (d *dirtyTracker) clear(handled DirtyReason) { d.reasons &^= handled }
