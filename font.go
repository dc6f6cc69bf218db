package canvas

import (
	"fmt"
	"image"

	"github.com/hashicorp/golang-lru/simplelru"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Glyph is one rasterized character. Texture is nil for glyphs with no
// visible pixels, such as a space, which still advance the pen.
type Glyph struct {
	Texture *Texture
	// BearingX is the offset from the pen position to the bitmap's left edge.
	BearingX float32
	// BearingY is the distance from the baseline up to the bitmap's top edge.
	BearingY float32
	Width    float32
	Height   float32
	Advance  float32
}

// FontMetrics describes the vertical extent of a font at one size.
type FontMetrics struct {
	Ascent     float32
	Descent    float32
	LineHeight float32
}

// Font supplies glyph bitmaps and metrics to labels. Implementations must
// return the same *Texture for repeated lookups of a cached glyph so the
// atlas does not pack it twice.
type Font interface {
	Glyph(r rune, size int) (Glyph, bool)
	Kern(a, b rune, size int) float32
	Metrics(size int) FontMetrics
}

// DefaultGlyphCacheSize is the number of rasterized glyphs a FaceFont keeps.
const DefaultGlyphCacheSize = 1024

type glyphKey struct {
	r    rune
	size int
}

// FaceFont adapts golang.org/x/image/font faces to Font, creating one face
// per requested pixel size and caching rasterized glyphs in an LRU.
// A glyph evicted from the LRU keeps its *Texture: the next lookup reuses it,
// so the atlas holds at most one region per distinct glyph.
type FaceFont struct {
	newFace  func(size int) (font.Face, error)
	faces    map[int]font.Face
	glyphs   *simplelru.LRU
	textures map[glyphKey]*Texture
}

// NewFaceFont creates a Font that obtains a face for each size from newFace.
// cacheSize bounds the glyph cache; values <= 0 select DefaultGlyphCacheSize.
func NewFaceFont(newFace func(size int) (font.Face, error), cacheSize int) (*FaceFont, error) {
	if newFace == nil {
		return nil, fmt.Errorf("canvas: nil face constructor")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultGlyphCacheSize
	}
	lru, err := simplelru.NewLRU(cacheSize, nil)
	if err != nil {
		return nil, fmt.Errorf("canvas: glyph cache: %w", err)
	}
	return &FaceFont{
		newFace:  newFace,
		faces:    make(map[int]font.Face),
		glyphs:   lru,
		textures: make(map[glyphKey]*Texture),
	}, nil
}

// NewOpenTypeFont parses TrueType or OpenType data, for example
// golang.org/x/image/font/gofont/goregular.TTF.
func NewOpenTypeFont(data []byte, cacheSize int) (*FaceFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("canvas: parse font: %w", err)
	}
	return NewFaceFont(func(size int) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}, cacheSize)
}

// NewBasicFont returns the fixed 7x13 bitmap font for every size. It needs
// no font data and suits tests and debug overlays.
func NewBasicFont() *FaceFont {
	f, _ := NewFaceFont(func(int) (font.Face, error) {
		return basicfont.Face7x13, nil
	}, 0)
	return f
}

func (f *FaceFont) face(size int) font.Face {
	if face, ok := f.faces[size]; ok {
		return face
	}
	face, err := f.newFace(size)
	if err != nil {
		Logger().Warn("font face unavailable", "size", size, "err", err)
		face = nil
	}
	f.faces[size] = face
	return face
}

// Glyph implements Font.
func (f *FaceFont) Glyph(r rune, size int) (Glyph, bool) {
	key := glyphKey{r: r, size: size}
	if v, ok := f.glyphs.Get(key); ok {
		return v.(Glyph), true
	}
	face := f.face(size)
	if face == nil {
		return Glyph{}, false
	}
	dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{}, false
	}
	g := Glyph{
		BearingX: float32(dr.Min.X),
		BearingY: float32(-dr.Min.Y),
		Advance:  fixedToFloat32(advance),
	}
	if !dr.Empty() {
		tex, ok := f.textures[key]
		if !ok {
			img := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
			draw.DrawMask(img, img.Bounds(), image.White, image.Point{}, mask, maskp, draw.Over)
			tex = newTextureRGBA(img)
			f.textures[key] = tex
		}
		g.Texture = tex
		g.Width = float32(dr.Dx())
		g.Height = float32(dr.Dy())
	}
	f.glyphs.Add(key, g)
	return g, true
}

// Kern implements Font.
func (f *FaceFont) Kern(a, b rune, size int) float32 {
	face := f.face(size)
	if face == nil {
		return 0
	}
	return fixedToFloat32(face.Kern(a, b))
}

// Metrics implements Font.
func (f *FaceFont) Metrics(size int) FontMetrics {
	face := f.face(size)
	if face == nil {
		return FontMetrics{}
	}
	m := face.Metrics()
	return FontMetrics{
		Ascent:     fixedToFloat32(m.Ascent),
		Descent:    fixedToFloat32(m.Descent),
		LineHeight: fixedToFloat32(m.Height),
	}
}

// CachedGlyphs returns the number of glyphs held in the cache.
func (f *FaceFont) CachedGlyphs() int { return f.glyphs.Len() }

// GlyphTextures returns the number of distinct glyph textures created so far.
func (f *FaceFont) GlyphTextures() int { return len(f.textures) }

func fixedToFloat32(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
