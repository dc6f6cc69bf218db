package ebitenbackend

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/canvas"
	"github.com/phanxgames/canvas/capture"
)

// RunConfig configures the window and game loop created by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	// ClearColor fills the screen before the canvas is drawn.
	ClearColor canvas.Color
	// ScreenshotDir enables frame capture: screenshot requests queued on the
	// renderer are written there as PNG files.
	ScreenshotDir string
	// ExitWhenDone ends the loop once an attached test runner finishes.
	ExitWhenDone bool
}

// NewRenderer creates a renderer drawing through a new Backend.
func NewRenderer(cfg canvas.Config) (*canvas.Renderer, *Backend, error) {
	b := New()
	r, err := canvas.NewRenderer(b, cfg)
	if err != nil {
		return nil, nil, err
	}
	return r, b, nil
}

// Game adapts a Renderer to ebiten.Game.
type Game struct {
	renderer *canvas.Renderer
	backend  *Backend
	cfg      RunConfig
	input    Input
	capture  *capture.Worker
	ctx      context.Context
	runner   *canvas.TestRunner
	pix      []byte
}

// NewGame creates a game for r, which must draw through b.
func NewGame(r *canvas.Renderer, b *Backend, cfg RunConfig) *Game {
	return &Game{renderer: r, backend: b, cfg: cfg, ctx: context.Background()}
}

// SetCapture routes screenshot requests to w.
func (g *Game) SetCapture(ctx context.Context, w *capture.Worker) {
	g.ctx = ctx
	g.capture = w
}

// SetTestRunner attaches runner to the renderer and, with ExitWhenDone,
// ends the loop once it finishes.
func (g *Game) SetTestRunner(runner *canvas.TestRunner) {
	g.runner = runner
	g.renderer.SetTestRunner(runner)
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	events, chars := g.input.Poll()
	g.renderer.HandleTouchEvents(events...)
	g.renderer.InputChars(chars...)
	// Rebuild failures are logged and retried on the next tick.
	_ = g.renderer.Update(1 / float32(ebiten.TPS()))
	if g.cfg.ExitWhenDone && g.runner != nil && g.runner.Done() &&
		(g.capture == nil || g.capture.Pending() == 0) {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	c := g.cfg.ClearColor
	screen.Fill(color.RGBA64{
		R: uint16(c.R * c.A * 0xffff),
		G: uint16(c.G * c.A * 0xffff),
		B: uint16(c.B * c.A * 0xffff),
		A: uint16(c.A * 0xffff),
	})
	g.backend.SetTarget(screen)
	if err := g.renderer.Draw(); err != nil {
		canvas.Logger().Warn("canvas draw failed", "err", err)
	}
	g.flushScreenshots(screen)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.renderer.OnResize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func (g *Game) flushScreenshots(screen *ebiten.Image) {
	labels := g.renderer.TakeScreenshotRequests()
	if len(labels) == 0 {
		return
	}
	if g.capture == nil {
		canvas.Logger().Warn("screenshot requested without a capture directory", "labels", labels)
		return
	}
	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if cap(g.pix) < 4*w*h {
		g.pix = make([]byte, 4*w*h)
	}
	g.pix = g.pix[:4*w*h]
	screen.ReadPixels(g.pix)
	for _, label := range labels {
		frame, err := capture.FromPremultiplied(label, g.pix, w, h)
		if err == nil {
			err = g.capture.Submit(g.ctx, frame)
		}
		if err != nil {
			canvas.Logger().Warn("screenshot dropped", "label", label, "err", err)
		}
	}
}

// Run opens a window and runs r until the window closes. r must have been
// created by NewRenderer.
func Run(r *canvas.Renderer, cfg RunConfig) error {
	return RunWithRunner(r, cfg, nil)
}

// RunWithRunner is Run with a scripted test runner attached.
func RunWithRunner(r *canvas.Renderer, cfg RunConfig, runner *canvas.TestRunner) error {
	b, ok := r.Backend().(*Backend)
	if !ok {
		return fmt.Errorf("ebitenbackend: renderer was not created with ebitenbackend.NewRenderer")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 480
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := NewGame(r, b, cfg)
	if runner != nil {
		g.SetTestRunner(runner)
	}
	if cfg.ScreenshotDir != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		w, err := capture.NewWorker(ctx, cfg.ScreenshotDir, r.Config().CaptureQueueSize)
		if err != nil {
			return err
		}
		g.SetCapture(ctx, w)
		defer func() {
			if err := w.Close(); err != nil {
				canvas.Logger().Warn("capture worker failed", "err", err)
			}
		}()
	}
	return ebiten.RunGame(g)
}
