package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/twig"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	// ScreenshotKey queues a screenshot of the next frame. Zero means F12.
	ScreenshotKey ebiten.Key
	// Update runs once per frame before the scene advances.
	Update func(dt float64) error
}

// Game adapts a twig scene to ebiten.Game.
type Game struct {
	scene    *twig.Scene
	renderer *Renderer
	cfg      RunConfig

	fps      *ebiten.Image
	fpsAccum float64
}

// NewGame creates a game that advances scene and draws it with r.
func NewGame(scene *twig.Scene, r *Renderer, cfg RunConfig) *Game {
	return &Game{scene: scene, renderer: r, cfg: cfg}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	if g.cfg.Update != nil {
		if err := g.cfg.Update(dt); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(g.cfg.ScreenshotKey) {
		g.renderer.Screenshot(g.cfg.Title)
	}
	g.scene.Update(dt)
	g.renderer.Camera.Update(float32(dt))
	g.fpsAccum += dt
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.scene.Root())
	if g.cfg.ShowFPS {
		g.drawFPS(screen)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// drawFPS refreshes the overlay every ~0.5 seconds.
func (g *Game) drawFPS(screen *ebiten.Image) {
	if g.fps == nil {
		g.fps = ebiten.NewImage(140, 48)
		g.fpsAccum = 0.5
	}
	if g.fpsAccum >= 0.5 {
		g.fpsAccum = 0
		g.fps.Clear()
		g.fps.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(g.fps, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nTris: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), g.renderer.Triangles()))
	}
	screen.DrawImage(g.fps, nil)
}

// Run wires r into scene as its renderer and mesh factory, opens a window,
// and blocks until it closes.
func Run(scene *twig.Scene, r *Renderer, cfg RunConfig) error {
	scene.SetRenderer(r)
	scene.SetMeshFactory(r)
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 640
	}
	if cfg.ScreenshotKey == 0 {
		cfg.ScreenshotKey = ebiten.KeyF12
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	return ebiten.RunGame(NewGame(scene, r, cfg))
}
