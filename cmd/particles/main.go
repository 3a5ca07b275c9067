// Package main provides an interactive viewer for particle effect files.
//
// Usage:
//
//	go run ./cmd/particles [flags]
//
// Flags:
//
//	--effect <name>   Start with a specific effect (e.g., --effect=fire)
//	--dir <path>      Also load *.yaml effects from a directory
//	--verbose         Enable verbose logging (default off)
//
// Controls:
//
//	Left Click        - Move the effect's emitters to the cursor
//	Right Click       - Spawn a burst at the cursor
//	Left/Right Arrow  - Switch to previous/next effect
//	Space             - Spawn a burst at screen center
//	P                 - Toggle pause
//	- / =             - Slow down / speed up
//	R                 - Clear all particles
//	H                 - Toggle info panel
//	Q/Escape          - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/decker502/particles/pkg/game"
	"github.com/decker502/particles/pkg/render"
	"github.com/decker502/particles/pkg/systems"
	"github.com/decker502/particles/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	screenWidth  = 1024
	screenHeight = 768

	appName = "particles"
)

var (
	effectFlag  = flag.String("effect", "", "Start with specific effect name")
	dirFlag     = flag.String("dir", "", "Extra directory with *.yaml effect files")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

var errQuit = errors.New("quit requested")

// ParticleViewerGame implements ebiten.Game for the viewer
type ParticleViewerGame struct {
	viewer   *game.Viewer
	renderer *render.EbitenRenderer
}

// NewParticleViewerGame creates the viewer, restoring the last effect unless
// --effect names one.
func NewParticleViewerGame() (*ParticleViewerGame, error) {
	catalog, err := game.NewEffectCatalog(*dirFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load particle effects: %w", err)
	}

	settings, _ := game.NewSettingsManager(game.OpenStorage(appName))

	start := *effectFlag
	if start == "" {
		start = settings.GetSettings().LastEffect
	}
	if start != "" && !catalog.Select(start) {
		log.Printf("Warning: effect %q not found, starting with %s", start, catalog.Current())
	}

	renderer := render.NewEbitenRenderer()
	ps := systems.NewParticleSystem(nil, renderer)
	ps.Verbose = *verboseFlag

	viewer, err := game.NewViewer(ps, catalog, settings)
	if err != nil {
		return nil, err
	}

	log.Printf("Particle Viewer initialized: %d effects, starting with %s", len(catalog.Names()), catalog.Current())
	return &ParticleViewerGame{viewer: viewer, renderer: renderer}, nil
}

// Update handles input and advances the simulation one frame
func (g *ParticleViewerGame) Update() error {
	v := g.viewer

	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		if err := v.Step(-1); err != nil {
			v.Status = fmt.Sprintf("Error: %v", err)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		if err := v.Step(1); err != nil {
			v.Status = fmt.Sprintf("Error: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		v.ScaleTime(0.5)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		v.ScaleTime(2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.Settings.SetShowHUD(!v.Settings.GetSettings().ShowHUD)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if err := v.Burst(utils.Vec2(screenWidth/2, screenHeight/2)); err != nil {
			v.Status = fmt.Sprintf("Error: %v", err)
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		v.MoveEmitters(utils.Vec2(float64(x), float64(y)))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		x, y := ebiten.CursorPosition()
		if err := v.Burst(utils.Vec2(float64(x), float64(y))); err != nil {
			v.Status = fmt.Sprintf("Error: %v", err)
		}
	}

	// 固定步长：ebiten 默认 60 TPS
	return v.Update(1.0 / float64(ebiten.TPS()))
}

// Draw renders the particles and the info panel
func (g *ParticleViewerGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{25, 25, 38, 255})
	g.renderer.Draw(screen)

	if !g.viewer.Settings.GetSettings().ShowHUD {
		return
	}

	for i, line := range g.viewer.HUDLines() {
		ebitenutil.DebugPrintAt(screen, line, 10, 10+i*20)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.0f  TPS: %.0f", ebiten.ActualFPS(), ebiten.ActualTPS()), screenWidth-180, 10)

	controls := []string{
		"Navigation: <-/-> = Prev/Next effect",
		"Actions:    LClick = Move emitters  RClick/Space = Burst  R = Clear",
		"            P = Pause  -/= = Speed  H = Hide panel  Q = Quit",
	}
	y := screenHeight - len(controls)*20 - 10
	for i, line := range controls {
		ebitenutil.DebugPrintAt(screen, line, 10, y+i*20)
	}
}

// Layout returns the logical screen size
func (g *ParticleViewerGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	flag.Parse()

	log.Println("=== Particle Effect Viewer ===")
	log.Printf("Start effect: %q", *effectFlag)
	log.Printf("Effect dir: %q", *dirFlag)

	// 默认静音运行；如需详细调试，传入 --verbose
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	g, err := NewParticleViewerGame()
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal("Failed to initialize viewer: ", err)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Particle Effect Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(g)

	if err := g.viewer.Settings.Save(); err != nil {
		log.Printf("Warning: failed to save settings: %v", err)
	}

	if runErr != nil && !errors.Is(runErr, errQuit) {
		log.SetOutput(os.Stderr)
		log.Fatal(runErr)
	}
	log.Println("Particle viewer closed")
}
