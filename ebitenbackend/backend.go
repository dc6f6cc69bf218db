// Package ebitenbackend draws a canvas.Renderer with Ebitengine and feeds it
// mouse, touch and keyboard input.
package ebitenbackend

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/canvas"
)

// maxTextureSize is the largest atlas layer Ebitengine handles on every
// platform it supports.
const maxTextureSize = 4096

// Backend implements canvas.Backend with one ebiten.Image per atlas layer.
// Call SetTarget with the screen before Renderer.Draw.
type Backend struct {
	layers    []*ebiten.Image
	layerSize int

	target  *ebiten.Image
	verts   []ebiten.Vertex
	indices []uint32
	bound   *ebiten.Image

	drawCalls int
}

var _ canvas.Backend = (*Backend)(nil)

// New creates a backend with no layers.
func New() *Backend {
	return &Backend{}
}

// SetTarget sets the image DrawIndexed draws into.
func (b *Backend) SetTarget(img *ebiten.Image) {
	b.target = img
	b.drawCalls = 0
}

// DrawCalls returns the number of DrawIndexed calls since SetTarget.
func (b *Backend) DrawCalls() int { return b.drawCalls }

// Layers returns the number of created atlas layers.
func (b *Backend) Layers() int { return len(b.layers) }

// Layer returns the image of atlas layer i, for debugging.
func (b *Backend) Layer(i int) *ebiten.Image { return b.layers[i] }

// MaxTextureSize implements canvas.Backend.
func (b *Backend) MaxTextureSize() int { return maxTextureSize }

// CreateAtlasLayer implements canvas.Backend.
func (b *Backend) CreateAtlasLayer(index, size int) error {
	if index != len(b.layers) {
		return fmt.Errorf("ebitenbackend: layer %d created out of order, have %d", index, len(b.layers))
	}
	if b.layerSize != 0 && size != b.layerSize {
		return fmt.Errorf("ebitenbackend: layer size %d differs from %d", size, b.layerSize)
	}
	b.layerSize = size
	b.layers = append(b.layers, ebiten.NewImage(size, size))
	canvas.Logger().Debug("atlas layer created", "index", index, "size", size)
	return nil
}

// UploadAtlasRegion implements canvas.Backend.
func (b *Backend) UploadAtlasRegion(layer, x, y int, img *image.RGBA) error {
	if layer < 0 || layer >= len(b.layers) {
		return fmt.Errorf("ebitenbackend: upload to unknown layer %d", layer)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	r := image.Rect(x, y, x+w, y+h)
	if !r.In(image.Rect(0, 0, b.layerSize, b.layerSize)) {
		return fmt.Errorf("ebitenbackend: region %v outside layer", r)
	}
	pix := img.Pix
	if img.Stride != 4*w || len(pix) != 4*w*h {
		pix = make([]byte, 4*w*h)
		for row := 0; row < h; row++ {
			off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+row)
			copy(pix[row*4*w:(row+1)*4*w], img.Pix[off:off+4*w])
		}
	}
	// image.RGBA is premultiplied, as WritePixels expects.
	b.layers[layer].SubImage(r).(*ebiten.Image).WritePixels(pix)
	return nil
}

// BindVertexBuffer implements canvas.Backend. Normalized UVs become layer
// pixels and colors are premultiplied.
func (b *Backend) BindVertexBuffer(vertices []canvas.Vertex) error {
	size := float32(b.layerSize)
	b.verts = b.verts[:0]
	for _, v := range vertices {
		b.verts = append(b.verts, ebiten.Vertex{
			DstX:   v.X,
			DstY:   v.Y,
			SrcX:   v.U * size,
			SrcY:   v.V * size,
			ColorR: v.R * v.A,
			ColorG: v.G * v.A,
			ColorB: v.B * v.A,
			ColorA: v.A,
		})
	}
	return nil
}

// BindIndexBuffer implements canvas.Backend.
func (b *Backend) BindIndexBuffer(indices []uint32, t canvas.IndexType) error {
	if t != canvas.IndexUint32 {
		return fmt.Errorf("ebitenbackend: unsupported index type %v", t)
	}
	b.indices = indices
	return nil
}

// BindAtlasLayer implements canvas.Backend.
func (b *Backend) BindAtlasLayer(layer int) error {
	if layer < 0 || layer >= len(b.layers) {
		return fmt.Errorf("ebitenbackend: bind unknown layer %d", layer)
	}
	b.bound = b.layers[layer]
	return nil
}

// DrawIndexed implements canvas.Backend.
func (b *Backend) DrawIndexed(start, count int, t canvas.IndexType) error {
	if b.target == nil {
		return fmt.Errorf("ebitenbackend: no draw target")
	}
	if b.bound == nil {
		return fmt.Errorf("ebitenbackend: no atlas layer bound")
	}
	if t != canvas.IndexUint32 {
		return fmt.Errorf("ebitenbackend: unsupported index type %v", t)
	}
	if start < 0 || start+count > len(b.indices) {
		return fmt.Errorf("ebitenbackend: index range [%d, %d) outside buffer of %d", start, start+count, len(b.indices))
	}
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	b.target.DrawTriangles32(b.verts, b.indices[start:start+count], b.bound, &op)
	b.drawCalls++
	return nil
}
