package canvas

import (
	"fmt"
	"math"
)

// nodeID addresses an atlasNode in the packer's arena.
type nodeID int32

const noNode nodeID = -1

// atlasNode is a rectangle of one atlas layer. A node is either a leaf (free
// or used) or split into exactly two children that tile it without overlap.
type atlasNode struct {
	x, y, w, h int
	layer      int
	parent     nodeID
	children   [2]nodeID
	used       bool
	live       bool   // arena slot holds a node reachable from a root
	gen        uint32 // bumped each time the slot is reused
}

func (n *atlasNode) leaf() bool { return n.children[0] == noNode }

// Region is a packed rectangle handed out by a Packer. X, Y, Width and Height
// describe the texture's content rect in layer pixels; padding lies outside it.
type Region struct {
	Layer               int
	X, Y, Width, Height int

	node nodeID
	gen  uint32
}

// UV returns the normalized texture coordinates of the region's corners for a
// square layer of the given size.
func (r Region) UV(layerSize int) (u0, v0, u1, v1 float32) {
	s := float32(layerSize)
	return float32(r.X) / s, float32(r.Y) / s,
		float32(r.X+r.Width) / s, float32(r.Y+r.Height) / s
}

// Overlaps reports whether r and o share any pixel on the same layer.
func (r Region) Overlaps(o Region) bool {
	if r.Layer != o.Layer {
		return false
	}
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

func (r Region) String() string {
	return fmt.Sprintf("Region(layer %d, %d,%d %dx%d)", r.Layer, r.X, r.Y, r.Width, r.Height)
}

// Packer allocates rectangles from a stack of square atlas layers using one
// binary packing tree per layer. Nodes live in an arena and reference each
// other by index; released slots are recycled through a free list.
//
// Packer is not safe for concurrent use.
type Packer struct {
	layerSize int
	maxLayers int
	padding   int

	nodes []atlasNode
	free  []nodeID
	roots []nodeID

	allocated int // live used leaves
}

// NewPacker creates a packer with no layers. maxLayers 0 means unlimited.
func NewPacker(layerSize, maxLayers, padding int) *Packer {
	if layerSize <= 0 {
		panic("canvas: atlas layer size must be positive")
	}
	return &Packer{
		layerSize: layerSize,
		maxLayers: maxLayers,
		padding:   max(padding, 0),
	}
}

// LayerSize returns the edge length of each layer in pixels.
func (p *Packer) LayerSize() int { return p.layerSize }

// Layers returns the number of layers created so far.
func (p *Packer) Layers() int { return len(p.roots) }

// Allocated returns the number of live regions.
func (p *Packer) Allocated() int { return p.allocated }

// NewLayer adds an empty layer and returns its index. It ignores the layer
// cap; Allocate checks the cap before growing.
func (p *Packer) NewLayer() int {
	layer := len(p.roots)
	root := p.newNode(0, 0, p.layerSize, p.layerSize, layer, noNode)
	p.roots = append(p.roots, root)
	Logger().Info("atlas layer created", "layer", layer, "size", p.layerSize)
	return layer
}

// Allocate reserves a w×h region, creating a new layer when no existing
// layer has room. It fails with ErrAtlasExhausted only when a layer cap is
// configured and reached.
func (p *Packer) Allocate(w, h int) (Region, error) {
	if r, ok, err := p.allocateExisting(w, h); err != nil || ok {
		return r, err
	}
	if p.maxLayers > 0 && len(p.roots) >= p.maxLayers {
		return Region{}, fmt.Errorf("%w: no room for %dx%d in %d layers", ErrAtlasExhausted, w, h, len(p.roots))
	}
	p.NewLayer()
	r, ok, err := p.allocateExisting(w, h)
	if err != nil {
		return Region{}, err
	}
	if !ok {
		// An empty layer always fits a request that passed the size check.
		panic("canvas: allocation failed on an empty layer")
	}
	return r, nil
}

// TryAllocate reserves a w×h region in the existing layers only.
func (p *Packer) TryAllocate(w, h int) (Region, bool, error) {
	return p.allocateExisting(w, h)
}

func (p *Packer) allocateExisting(w, h int) (Region, bool, error) {
	if w <= 0 || h <= 0 {
		return Region{}, false, fmt.Errorf("canvas: invalid region size %dx%d", w, h)
	}
	if w > p.layerSize || h > p.layerSize {
		return Region{}, false, fmt.Errorf("%w: %dx%d exceeds %d", ErrTextureTooLarge, w, h, p.layerSize)
	}
	for _, root := range p.roots {
		best, bestWaste := noNode, math.MaxInt
		p.bestFit(root, w, h, &best, &bestWaste)
		if best == noNode {
			continue
		}
		sw, sh, _ := p.slot(&p.nodes[best], w, h)
		id := p.place(best, sw, sh)
		n := &p.nodes[id]
		p.allocated++
		return Region{Layer: n.layer, X: n.x, Y: n.y, Width: w, Height: h, node: id, gen: n.gen}, true, nil
	}
	return Region{}, false, nil
}

// slot returns the space a w×h request takes in leaf n: the request plus the
// padding gutter, except that the gutter shrinks to whatever is left when the
// leaf runs to the layer edge.
func (p *Packer) slot(n *atlasNode, w, h int) (sw, sh int, ok bool) {
	if n.w < w || n.h < h {
		return 0, 0, false
	}
	sw, sh = w+p.padding, h+p.padding
	if sw > n.w {
		if n.x+n.w != p.layerSize {
			return 0, 0, false
		}
		sw = n.w
	}
	if sh > n.h {
		if n.y+n.h != p.layerSize {
			return 0, 0, false
		}
		sh = n.h
	}
	return sw, sh, true
}

// bestFit searches the subtree for the free leaf that fits w×h with the least
// leftover area. It returns true when an exact fit was found, which ends the
// search early.
func (p *Packer) bestFit(id nodeID, w, h int, best *nodeID, bestWaste *int) bool {
	n := &p.nodes[id]
	if n.w < w || n.h < h {
		return false
	}
	if !n.leaf() {
		c0, c1 := n.children[0], n.children[1]
		return p.bestFit(c0, w, h, best, bestWaste) || p.bestFit(c1, w, h, best, bestWaste)
	}
	if n.used {
		return false
	}
	sw, sh, ok := p.slot(n, w, h)
	if !ok {
		return false
	}
	waste := n.w*n.h - sw*sh
	if waste < *bestWaste {
		*best, *bestWaste = id, waste
	}
	return waste == 0
}

// place splits the free leaf id until a child exactly matches w×h, marks that
// child used and returns it. Each split produces two children: the first holds
// the request along the split axis, the second is the free remainder.
func (p *Packer) place(id nodeID, w, h int) nodeID {
	for {
		n := p.nodes[id]
		dw, dh := n.w-w, n.h-h
		if dw == 0 && dh == 0 {
			p.nodes[id].used = true
			return id
		}
		var c0, c1 nodeID
		if splitVertical(n.w, n.h, dw, dh) {
			c0 = p.newNode(n.x, n.y, w, n.h, n.layer, id)
			c1 = p.newNode(n.x+w, n.y, dw, n.h, n.layer, id)
		} else {
			c0 = p.newNode(n.x, n.y, n.w, h, n.layer, id)
			c1 = p.newNode(n.x, n.y+h, n.w, dh, n.layer, id)
		}
		p.nodes[id].children = [2]nodeID{c0, c1}
		id = c0
	}
}

// splitVertical picks the cut for a w×h leaf with dw/dh pixels to spare.
// A vertical cut leaves a dw×h strip, a horizontal cut a w×dh strip; the
// larger strip wins and ties go to the squarer one.
func splitVertical(w, h, dw, dh int) bool {
	if dw == 0 {
		return false
	}
	if dh == 0 {
		return true
	}
	va, ha := dw*h, w*dh
	if va != ha {
		return va > ha
	}
	return squareness(dw, h) >= squareness(w, dh)
}

// squareness is min/max of the sides: 1 for a square, near 0 for a sliver.
func squareness(w, h int) float64 {
	if w > h {
		w, h = h, w
	}
	return float64(w) / float64(h)
}

// Release returns r's space to its layer and merges free sibling leaves back
// into their parent, walking up as far as possible.
func (p *Packer) Release(r Region) error {
	id := r.node
	if id < 0 || int(id) >= len(p.nodes) {
		return fmt.Errorf("%w: %v", ErrUnknownRegion, r)
	}
	n := &p.nodes[id]
	if !n.live || n.gen != r.gen || !n.used || !n.leaf() || n.layer != r.Layer || n.x != r.X || n.y != r.Y {
		return fmt.Errorf("%w: %v", ErrUnknownRegion, r)
	}
	n.used = false
	p.allocated--

	for parent := n.parent; parent != noNode; {
		pn := &p.nodes[parent]
		c0, c1 := pn.children[0], pn.children[1]
		if !p.freeLeaf(c0) || !p.freeLeaf(c1) {
			break
		}
		p.freeNode(c0)
		p.freeNode(c1)
		pn = &p.nodes[parent]
		pn.children = [2]nodeID{noNode, noNode}
		parent = pn.parent
	}
	return nil
}

func (p *Packer) freeLeaf(id nodeID) bool {
	n := &p.nodes[id]
	return n.leaf() && !n.used
}

// FreeArea returns the number of unused pixels in a layer, padding included.
func (p *Packer) FreeArea(layer int) int {
	if layer < 0 || layer >= len(p.roots) {
		return 0
	}
	area := 0
	p.walkLeaves(p.roots[layer], func(n *atlasNode) {
		if !n.used {
			area += n.w * n.h
		}
	})
	return area
}

// Regions returns every live region. Order follows the tree, layer by layer.
func (p *Packer) Regions() []Region {
	var out []Region
	for _, root := range p.roots {
		p.walkLeaves(root, func(n *atlasNode) {
			if n.used {
				out = append(out, Region{Layer: n.layer, X: n.x, Y: n.y, Width: n.w, Height: n.h})
			}
		})
	}
	return out
}

func (p *Packer) walkLeaves(id nodeID, fn func(*atlasNode)) {
	n := &p.nodes[id]
	if n.leaf() {
		fn(n)
		return
	}
	c0, c1 := n.children[0], n.children[1]
	p.walkLeaves(c0, fn)
	p.walkLeaves(c1, fn)
}

// Reset drops every layer and region.
func (p *Packer) Reset() {
	p.nodes = p.nodes[:0]
	p.free = p.free[:0]
	p.roots = p.roots[:0]
	p.allocated = 0
}

func (p *Packer) newNode(x, y, w, h, layer int, parent nodeID) nodeID {
	n := atlasNode{
		x: x, y: y, w: w, h: h,
		layer:    layer,
		parent:   parent,
		children: [2]nodeID{noNode, noNode},
		live:     true,
	}
	if k := len(p.free); k > 0 {
		id := p.free[k-1]
		p.free = p.free[:k-1]
		n.gen = p.nodes[id].gen + 1
		p.nodes[id] = n
		return id
	}
	p.nodes = append(p.nodes, n)
	return nodeID(len(p.nodes) - 1)
}

func (p *Packer) freeNode(id nodeID) {
	n := &p.nodes[id]
	n.live = false
	n.used = false
	n.children = [2]nodeID{noNode, noNode}
	p.free = append(p.free, id)
}
