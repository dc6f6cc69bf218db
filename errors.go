package canvas

import "errors"

// Sentinel errors. Wrapped errors returned by this package can be matched with
// errors.Is.
var (
	// ErrAtlasExhausted is returned when the atlas has reached its configured
	// layer cap and eviction could not free enough contiguous space.
	ErrAtlasExhausted = errors.New("canvas: texture atlas exhausted")

	// ErrTextureTooLarge is returned when a texture cannot fit in a single
	// atlas layer regardless of how much space is free.
	ErrTextureTooLarge = errors.New("canvas: texture larger than atlas layer")

	// ErrBufferAllocationFailed is returned when a vertex or index buffer
	// cannot grow to the size required by the current frame.
	ErrBufferAllocationFailed = errors.New("canvas: buffer allocation failed")

	// ErrInvalidViewState is returned when an operation targets a view that is
	// not in the state it requires, e.g. removing a view this canvas does not own.
	ErrInvalidViewState = errors.New("canvas: invalid view state")

	// ErrUnknownRegion is returned when releasing a region the packer did not hand out.
	ErrUnknownRegion = errors.New("canvas: unknown atlas region")
)
