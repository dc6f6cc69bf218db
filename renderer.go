package canvas

import (
	"fmt"
	"time"
)

// Renderer owns a set of root views and turns them into batched geometry
// drawn from a shared texture atlas. It is not safe for concurrent use; call
// it from the render loop.
//
// Each Update dispatches queued input, runs per-frame hooks and, when
// anything changed, rebuilds the back buffers and publishes them. A failed
// rebuild keeps the previously published buffers and retries next frame.
type Renderer struct {
	cfg     Config
	backend Backend

	width, height int
	projection    [16]float32

	views []View
	dirty dirtyTracker
	input *dispatcher

	injectQueue []TouchEvent
	chars       []rune
	time        float32
	tweens      []*TweenGroup
	updBuf      []View
	runner      *TestRunner
	screenshots []string

	cache         *AtlasCache
	batcher       *Batcher
	front, back   Buffers
	generation    uint64
	backendLayers int
	meshBuf       []ViewMesh
	stats         RebuildStats
	failures      int
}

// NewRenderer creates a renderer drawing through backend. A nil backend
// runs headless: geometry is still built but nothing is uploaded or drawn.
// The atlas layer size is clamped to the backend's maximum texture size.
func NewRenderer(backend Backend, cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend != nil {
		if maxSize := backend.MaxTextureSize(); maxSize > 0 && cfg.AtlasLayerSize > maxSize {
			Logger().Info("atlas layer size clamped", "requested", cfg.AtlasLayerSize, "max", maxSize)
			cfg.AtlasLayerSize = maxSize
		}
	}
	r := &Renderer{
		cfg:     cfg,
		backend: backend,
		cache:   NewAtlasCache(NewPacker(cfg.AtlasLayerSize, cfg.MaxAtlasLayers, cfg.AtlasPadding)),
		batcher: NewBatcher(cfg.AtlasLayerSize, cfg.MaxVertices),
	}
	r.input = newDispatcher(r)
	for _, b := range []*Buffers{&r.front, &r.back} {
		b.Vertices = make([]Vertex, 0, cfg.InitialVertexCapacity)
		b.Indices = make([]uint32, 0, cfg.InitialVertexCapacity*3/2)
		b.IndexType = IndexUint32
	}
	globalDebug = cfg.Debug
	r.updateProjection()
	return r, nil
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Backend returns the backend passed to NewRenderer.
func (r *Renderer) Backend() Backend { return r.backend }

// Atlas returns the texture cache backing the atlas.
func (r *Renderer) Atlas() *AtlasCache { return r.cache }

// Views returns the root views in paint order. Do not modify the slice.
func (r *Renderer) Views() []View { return r.views }

// Size returns the canvas size in pixels.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// Bounds returns the canvas rectangle root views are laid out in.
func (r *Renderer) Bounds() Rect {
	return Rect{Width: float32(r.width), Height: float32(r.height)}
}

// Time returns the accumulated Update time in seconds.
func (r *Renderer) Time() float32 { return r.time }

// Dirty reports whether a rebuild is pending, and why.
func (r *Renderer) Dirty() (bool, DirtyReason) {
	return r.dirty.dirty(), r.dirty.pending()
}

// Stats returns the stats of the most recent successful rebuild.
func (r *Renderer) Stats() RebuildStats { return r.stats }

// Failures returns the number of rebuilds that failed so far.
func (r *Renderer) Failures() int { return r.failures }

// AddView attaches v as the topmost root view. A view attached elsewhere
// is detached first.
func (r *Renderer) AddView(v View) {
	if v == nil {
		panic("canvas: cannot add nil view")
	}
	b := v.Node()
	if b.self == nil {
		panic("canvas: view was not constructed with a New function")
	}
	switch {
	case b.parent != nil:
		b.parent.Node().RemoveSubview(v)
	case b.renderer == r:
		r.removeRoot(v)
	case b.renderer != nil:
		b.renderer.detachRoot(v)
	}
	b.renderer = r
	r.views = append(r.views, v)
	r.dirty.mark(DirtyLayout)
}

// RemoveView detaches the root view v. It fails with ErrInvalidViewState
// if v is not a root view of r.
func (r *Renderer) RemoveView(v View) error {
	if v == nil || v.Node().renderer != r {
		name := "<nil>"
		if v != nil {
			name = v.Node().Name
		}
		return fmt.Errorf("canvas: remove view %q: %w", name, ErrInvalidViewState)
	}
	r.detachRoot(v)
	return nil
}

func (r *Renderer) detachRoot(v View) {
	r.removeRoot(v)
	v.Node().renderer = nil
	r.input.forget(v)
	r.dirty.mark(DirtyLayout)
}

func (r *Renderer) removeRoot(v View) {
	for i, c := range r.views {
		if c == v {
			copy(r.views[i:], r.views[i+1:])
			r.views[len(r.views)-1] = nil
			r.views = r.views[:len(r.views)-1]
			return
		}
	}
}

// MarkCanvasDirty requests a rebuild on the next Update.
func (r *Renderer) MarkCanvasDirty() { r.dirty.mark(DirtyExplicit) }

// OnResize sets the canvas size and requests a rebuild.
func (r *Renderer) OnResize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.updateProjection()
	r.dirty.mark(DirtyResize)
}

// Projection returns a column-major orthographic matrix mapping canvas
// pixels, origin top-left, to clip space.
func (r *Renderer) Projection() [16]float32 { return r.projection }

func (r *Renderer) updateProjection() {
	var m [16]float32
	if r.width > 0 && r.height > 0 {
		m[0] = 2 / float32(r.width)
		m[5] = -2 / float32(r.height)
		m[10] = -1
		m[12] = -1
		m[13] = 1
		m[15] = 1
	}
	r.projection = m
}

// InputChars queues typed characters for the next Update.
func (r *Renderer) InputChars(chars ...rune) {
	r.chars = append(r.chars, chars...)
}

// ReleaseTexture frees the atlas region of tex. A view still drawing tex
// has it packed again on the next rebuild.
func (r *Renderer) ReleaseTexture(tex *Texture) bool {
	if !r.cache.Release(tex) {
		return false
	}
	r.dirty.mark(DirtyTexture)
	return true
}

// VertexBuffer returns the published vertices.
func (r *Renderer) VertexBuffer() []Vertex { return r.front.Vertices }

// IndexBuffer returns the published indices.
func (r *Renderer) IndexBuffer() []uint32 { return r.front.Indices }

// DrawBuffer returns the published draw ranges in paint order.
func (r *Renderer) DrawBuffer() []DrawRange { return r.front.Draws }

// IndexType returns the element type of the published indices.
func (r *Renderer) IndexType() IndexType { return r.front.IndexType }

// Generation returns the number of successful publishes so far.
func (r *Renderer) Generation() uint64 { return r.front.Generation }

// Update advances the renderer by dt seconds. It steps the test runner and
// dispatches one injected touch event, then advances tweens and runs the
// FrameUpdater hooks with the queued characters. Finally it rebuilds the
// buffers if anything is dirty.
func (r *Renderer) Update(dt float32) error {
	r.time += dt

	if r.runner != nil {
		r.runner.step(r)
	}
	if len(r.injectQueue) > 0 {
		ev := r.injectQueue[0]
		copy(r.injectQueue, r.injectQueue[1:])
		r.injectQueue = r.injectQueue[:len(r.injectQueue)-1]
		r.HandleTouchEvents(ev)
	}

	r.advanceTweens(dt)

	ctx := FrameContext{DeltaTime: dt, Time: r.time, Chars: r.chars}
	r.updateViews(&ctx)
	r.chars = r.chars[:0]

	if !r.dirty.dirty() {
		return nil
	}
	return r.rebuild()
}

func (r *Renderer) updateViews(ctx *FrameContext) {
	buf := r.updBuf[:0]
	for _, v := range r.views {
		buf = appendUpdaters(v, buf)
	}
	for _, v := range buf {
		v.(FrameUpdater).UpdateFrame(ctx)
	}
	clear(buf)
	r.updBuf = buf[:0]
}

func appendUpdaters(v View, buf []View) []View {
	if _, ok := v.(FrameUpdater); ok {
		buf = append(buf, v)
	}
	for _, c := range v.Node().subviews {
		buf = appendUpdaters(c, buf)
	}
	return buf
}

// ensureLayout brings view bounds up to date without rebuilding buffers.
func (r *Renderer) ensureLayout() {
	if r.dirty.dirty() {
		r.layout()
	}
}

func (r *Renderer) layout() {
	bounds := r.Bounds()
	for _, v := range r.views {
		v.Layout(bounds)
	}
}

func (r *Renderer) rebuild() error {
	reasons := r.dirty.pending()
	var stats RebuildStats
	stats.Reasons = reasons

	t0 := time.Now()
	r.layout()
	stats.LayoutTime = time.Since(t0)

	t0 = time.Now()
	clear(r.meshBuf)
	r.meshBuf = r.meshBuf[:0]
	for _, v := range r.views {
		r.meshBuf = appendMeshes(v, r.meshBuf)
	}
	stats.PaintTime = time.Since(t0)
	stats.Meshes = len(r.meshBuf)

	t0 = time.Now()
	evictions := r.cache.Evictions()
	uploads, err := r.packTextures()
	if err != nil {
		return r.fail(reasons, err)
	}
	stats.Meshes = len(r.meshBuf)
	stats.AtlasTime = time.Since(t0)
	stats.Uploads = uploads
	stats.Evictions = r.cache.Evictions() - evictions
	stats.AtlasLayers = r.cache.Packer().Layers()

	t0 = time.Now()
	if err := r.batcher.Build(&r.back, r.meshBuf, r.cache.Lookup); err != nil {
		return r.fail(reasons, err)
	}
	stats.BatchTime = time.Since(t0)

	r.generation++
	r.back.Generation = r.generation
	r.front, r.back = r.back, r.front
	r.cache.MarkPublished()
	r.dirty.clear(reasons)

	stats.Vertices = len(r.front.Vertices)
	stats.Indices = len(r.front.Indices)
	stats.DrawRanges = len(r.front.Draws)
	r.stats = stats
	r.debugLog(stats)
	return nil
}

func (r *Renderer) fail(reasons DirtyReason, err error) error {
	r.failures++
	Logger().Warn("canvas rebuild failed", "reasons", reasons.String(), "err", err)
	if r.cache.FrontLost() && len(r.front.Draws) > 0 {
		// The published buffers point at freed regions.
		Logger().Warn("canvas front buffers withdrawn", "generation", r.front.Generation)
		r.front.Vertices = r.front.Vertices[:0]
		r.front.Indices = r.front.Indices[:0]
		r.front.Draws = r.front.Draws[:0]
	}
	return fmt.Errorf("canvas: rebuild: %w", err)
}

func appendMeshes(v View, dst []ViewMesh) []ViewMesh {
	b := v.Node()
	if !b.visible {
		return dst
	}
	dst = append(dst, meshesFor(v)...)
	for _, c := range b.subviews {
		dst = appendMeshes(c, dst)
	}
	return dst
}

// packTextures ensures every texture referenced by the painted meshes has
// an atlas region, uploading newly packed ones. Meshes over a texture with no
// pixels are dropped.
func (r *Renderer) packTextures() (int, error) {
	r.cache.BeginFrame()
	uploads := 0
	kept := r.meshBuf[:0]
	for i := range r.meshBuf {
		m := r.meshBuf[i]
		if m.Texture == nil {
			m.Texture = whiteTexture
		}
		if m.Texture.Empty() {
			Logger().Debug("skipping mesh with empty texture", "texture", m.Texture.ID())
			continue
		}
		kept = append(kept, m)
		region, fresh, err := r.cache.Insert(m.Texture)
		if err != nil {
			return uploads, err
		}
		if !fresh {
			continue
		}
		if err := r.upload(region, m.Texture); err != nil {
			r.cache.Release(m.Texture)
			return uploads, err
		}
		uploads++
	}
	clear(r.meshBuf[len(kept):])
	r.meshBuf = kept
	return uploads, nil
}

func (r *Renderer) upload(region Region, tex *Texture) error {
	if r.backend == nil {
		return nil
	}
	for r.backendLayers < r.cache.Packer().Layers() {
		if err := r.backend.CreateAtlasLayer(r.backendLayers, r.cfg.AtlasLayerSize); err != nil {
			return fmt.Errorf("create atlas layer %d: %w", r.backendLayers, err)
		}
		r.backendLayers++
	}
	if err := r.backend.UploadAtlasRegion(region.Layer, region.X, region.Y, tex.Image()); err != nil {
		return fmt.Errorf("upload texture %d: %w", tex.ID(), err)
	}
	return nil
}

// Draw binds the published buffers and issues one DrawIndexed per draw
// range. It is a no-op for a headless renderer.
func (r *Renderer) Draw() error {
	if r.backend == nil || len(r.front.Draws) == 0 {
		return nil
	}
	f := &r.front
	if err := r.backend.BindVertexBuffer(f.Vertices); err != nil {
		return fmt.Errorf("canvas: bind vertices: %w", err)
	}
	if err := r.backend.BindIndexBuffer(f.Indices, f.IndexType); err != nil {
		return fmt.Errorf("canvas: bind indices: %w", err)
	}
	for _, d := range f.Draws {
		if err := r.backend.BindAtlasLayer(d.Layer); err != nil {
			return fmt.Errorf("canvas: bind layer %d: %w", d.Layer, err)
		}
		if err := r.backend.DrawIndexed(d.Start, d.Count, f.IndexType); err != nil {
			return fmt.Errorf("canvas: draw: %w", err)
		}
	}
	return nil
}
