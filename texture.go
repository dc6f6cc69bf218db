package canvas

import (
	"image"
	"image/color"
	"sync/atomic"

	"golang.org/x/image/draw"
)

var textureIDCounter atomic.Uint64

// Texture is a source image packed into the canvas atlas on first use.
// Identity is the pointer: two Textures with equal pixels occupy two regions.
// Pixels must not be modified after the texture has been drawn; create a new
// Texture instead.
type Texture struct {
	id  uint64
	img *image.RGBA
}

// NewTexture copies img into a new texture with its origin at (0, 0).
func NewTexture(img image.Image) *Texture {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return newTextureRGBA(dst)
}

// newTextureRGBA wraps dst without copying. dst must start at (0, 0).
func newTextureRGBA(dst *image.RGBA) *Texture {
	return &Texture{id: textureIDCounter.Add(1), img: dst}
}

// NewSolidTexture creates a w×h texture filled with c.
func NewSolidTexture(w, h int, c color.Color) *Texture {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return newTextureRGBA(dst)
}

// ID returns the texture's process-unique identifier, used as the atlas cache key.
func (t *Texture) ID() uint64 { return t.id }

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.img.Rect.Dx() }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.img.Rect.Dy() }

// Empty reports whether the texture has no pixels.
func (t *Texture) Empty() bool { return t.img.Rect.Empty() }

// Image returns the texture pixels. The returned image must not be mutated.
func (t *Texture) Image() *image.RGBA { return t.img }

// whiteTexture is a 1x1 white texture used for untextured sprites.
var whiteTexture = NewSolidTexture(1, 1, color.White)

// WhiteTexture returns the shared 1x1 white texture. Solid-colored sprites
// reference it so they batch with textured views on the same layer.
func WhiteTexture() *Texture { return whiteTexture }
