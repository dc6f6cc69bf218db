// Package capture writes rendered frames to disk as PNG files on a
// background goroutine. Frames queue in a bounded buffer; when the buffer is
// full, Submit blocks until the writer catches up or the context ends.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/canvas"
)

// DefaultQueueSize is the number of frames that may wait to be written.
const DefaultQueueSize = 30

// ErrClosed is returned by Submit after Close, or after the writer stopped
// on an error.
var ErrClosed = errors.New("capture: worker closed")

// Frame is an immutable snapshot of one rendered frame.
type Frame struct {
	Label string
	Time  time.Time
	Image *image.NRGBA
}

// FromPremultiplied converts premultiplied RGBA pixels, as read back from a
// GPU surface, to a straight-alpha frame. pix is not retained.
func FromPremultiplied(label string, pix []byte, w, h int) (Frame, error) {
	if len(pix) != 4*w*h {
		return Frame{}, fmt.Errorf("capture: got %d bytes for %dx%d frame", len(pix), w, h)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pix); i += 4 {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return Frame{Label: label, Time: time.Now(), Image: img}, nil
}

// Worker owns the writer goroutine.
type Worker struct {
	dir    string
	frames chan Frame
	done   chan struct{}
	ctx    context.Context
	g      *errgroup.Group
	encode func(path string, img *image.NRGBA) error

	closeOnce sync.Once
	seq       atomic.Uint64
	written   atomic.Int64
}

// NewWorker creates dir if needed and starts the writer. queueSize <= 0
// selects DefaultQueueSize. The writer stops when ctx is cancelled.
func NewWorker(ctx context.Context, dir string, queueSize int) (*Worker, error) {
	return newWorker(ctx, dir, queueSize, writePNG)
}

func newWorker(ctx context.Context, dir string, queueSize int, encode func(string, *image.NRGBA) error) (*Worker, error) {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("capture: mkdir %s: %w", dir, err)
	}
	g, gctx := errgroup.WithContext(ctx)
	w := &Worker{
		dir:    dir,
		frames: make(chan Frame, queueSize),
		done:   make(chan struct{}),
		ctx:    gctx,
		g:      g,
		encode: encode,
	}
	g.Go(w.run)
	return w, nil
}

// Submit queues f, blocking while the queue is full. It returns ctx's error
// if ctx ends first and ErrClosed once the worker has stopped.
func (w *Worker) Submit(ctx context.Context, f Frame) error {
	if f.Image == nil {
		return fmt.Errorf("capture: frame %q has no image", f.Label)
	}
	select {
	case <-w.done:
		return ErrClosed
	case <-w.ctx.Done():
		return ErrClosed
	default:
	}
	select {
	case w.frames <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return ErrClosed
	case <-w.ctx.Done():
		return ErrClosed
	}
}

// Pending returns the number of queued frames.
func (w *Worker) Pending() int { return len(w.frames) }

// Written returns the number of frames written so far.
func (w *Worker) Written() int { return int(w.written.Load()) }

// Close stops accepting frames, writes the ones already queued and returns
// the first write error. Frames submitted concurrently with Close may be
// dropped.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return w.g.Wait()
}

func (w *Worker) run() error {
	for {
		select {
		case f := <-w.frames:
			if err := w.write(f); err != nil {
				return err
			}
		case <-w.done:
			return w.drain()
		case <-w.ctx.Done():
			return nil
		}
	}
}

func (w *Worker) drain() error {
	for {
		select {
		case f := <-w.frames:
			if err := w.write(f); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (w *Worker) write(f Frame) error {
	stamp := f.Time
	if stamp.IsZero() {
		stamp = time.Now()
	}
	name := fmt.Sprintf("%s_%04d_%s.png", stamp.Format("20060102_150405"), w.seq.Add(1), sanitizeLabel(f.Label))
	path := filepath.Join(w.dir, name)
	if err := w.encode(path, f.Image); err != nil {
		canvas.Logger().Warn("capture write failed", "path", path, "err", err)
		return err
	}
	w.written.Add(1)
	canvas.Logger().Debug("frame captured", "path", path)
	return nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("capture: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("capture: encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
