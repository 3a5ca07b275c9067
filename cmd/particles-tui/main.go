// Package main runs the particle effect viewer in a terminal.
//
// The 1024x768 effect world is scaled onto the terminal grid.
//
// Usage:
//
//	go run ./cmd/particles-tui [flags]
//
// Controls:
//
//	Left Click        - Move the effect's emitters to the cursor
//	Right Click       - Spawn a burst at the cursor
//	Left/Right Arrow  - Switch to previous/next effect
//	Space             - Spawn a burst at the world center
//	P                 - Toggle pause
//	- / =             - Slow down / speed up
//	R                 - Clear all particles
//	H                 - Toggle info panel
//	Q/Escape          - Quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/particles/pkg/game"
	"github.com/decker502/particles/pkg/render"
	"github.com/decker502/particles/pkg/systems"
	"github.com/decker502/particles/pkg/utils"
)

const (
	worldWidth  = 1024
	worldHeight = 768

	frameRate = 30
	appName   = "particles"
)

var (
	effectFlag  = flag.String("effect", "", "Start with specific effect name")
	dirFlag     = flag.String("dir", "", "Extra directory with *.yaml effect files")
	verboseFlag = flag.Bool("verbose", false, "Log to particles-tui.log")
)

type app struct {
	screen   tcell.Screen
	viewer   *game.Viewer
	renderer *render.TerminalRenderer
}

func newApp(screen tcell.Screen) (*app, error) {
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

	renderer := render.NewTerminalRenderer(screen, worldWidth, worldHeight)
	ps := systems.NewParticleSystem(nil, renderer)
	ps.Verbose = *verboseFlag

	viewer, err := game.NewViewer(ps, catalog, settings)
	if err != nil {
		return nil, err
	}
	return &app{screen: screen, viewer: viewer, renderer: renderer}, nil
}

// handleKey returns false when the viewer should exit.
func (a *app) handleKey(ev *tcell.EventKey) bool {
	v := a.viewer
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		if err := v.Step(-1); err != nil {
			v.Status = fmt.Sprintf("Error: %v", err)
		}
		return true
	case tcell.KeyRight:
		if err := v.Step(1); err != nil {
			v.Status = fmt.Sprintf("Error: %v", err)
		}
		return true
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return false
	case 'p', 'P':
		v.TogglePause()
	case '-':
		v.ScaleTime(0.5)
	case '=', '+':
		v.ScaleTime(2)
	case 'r', 'R':
		v.Clear()
	case 'h', 'H':
		v.Settings.SetShowHUD(!v.Settings.GetSettings().ShowHUD)
	case ' ':
		if err := v.Burst(utils.Vec2(worldWidth/2, worldHeight/2)); err != nil {
			v.Status = fmt.Sprintf("Error: %v", err)
		}
	}
	return true
}

func (a *app) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pos := utils.Vec2(a.renderer.ToWorld(x, y))
	switch {
	case ev.Buttons()&tcell.Button1 != 0:
		a.viewer.MoveEmitters(pos)
	case ev.Buttons()&tcell.Button2 != 0:
		if err := a.viewer.Burst(pos); err != nil {
			a.viewer.Status = fmt.Sprintf("Error: %v", err)
		}
	}
}

func (a *app) draw() {
	a.screen.Clear()
	a.renderer.Draw()
	if a.viewer.Settings.GetSettings().ShowHUD {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
		for i, line := range a.viewer.HUDLines() {
			a.renderer.DrawText(1, i, line, style)
		}
		_, h := a.screen.Size()
		a.renderer.DrawText(1, h-1, "←/→ effect  space burst  click move  p pause  -/= speed  r clear  q quit",
			tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
	a.screen.Show()
}

func (a *app) run() {
	eventCh := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(eventCh)
				return
			}
			eventCh <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				a.screen.Sync()
			case *tcell.EventKey:
				if !a.handleKey(ev) {
					return
				}
			case *tcell.EventMouse:
				a.handleMouse(ev)
			}
		case <-ticker.C:
			if err := a.viewer.Update(1.0 / frameRate); err != nil {
				a.viewer.Status = fmt.Sprintf("Error: %v", err)
			}
			a.draw()
		}
	}
}

func main() {
	flag.Parse()

	// 终端被界面占用，日志只能写文件
	log.SetOutput(io.Discard)
	if *verboseFlag {
		f, err := os.Create("particles-tui.log")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()

	a, err := newApp(screen)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "failed to initialize viewer: %v\n", err)
		os.Exit(1)
	}

	a.run()
	screen.Fini()

	if err := a.viewer.Settings.Save(); err != nil {
		log.Printf("Warning: failed to save settings: %v", err)
	}
}
