package canvas

import "image"

// Backend is the display API the renderer draws through. Implementations
// own the GPU resources: one texture per atlas layer plus the bound vertex
// and index buffers. All methods are called from the render loop.
type Backend interface {
	// MaxTextureSize bounds the atlas layer size.
	MaxTextureSize() int
	// CreateAtlasLayer allocates an empty size×size layer at index. Layers
	// are created in increasing index order.
	CreateAtlasLayer(index, size int) error
	// UploadAtlasRegion copies img into layer with its top-left at (x, y).
	UploadAtlasRegion(layer, x, y int, img *image.RGBA) error
	BindVertexBuffer(vertices []Vertex) error
	BindIndexBuffer(indices []uint32, t IndexType) error
	BindAtlasLayer(layer int) error
	// DrawIndexed draws count indices starting at start from the bound
	// index buffer, sampling the bound atlas layer.
	DrawIndexed(start, count int, t IndexType) error
}
