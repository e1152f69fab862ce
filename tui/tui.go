// Package tui draws episode frames in a terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/sprites"
)

// ErrQuit is returned by Run when the user asks to quit.
var ErrQuit = errors.New("quit requested")

const (
	birdRune   = '@'
	pipeRune   = '█'
	groundRune = '▀'
)

var (
	styleBird   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleLead   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	stylePipe   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleGround = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleHUD    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// Renderer scales the playfield onto a terminal screen. The bottom row is
// the status line.
type Renderer struct {
	screen tcell.Screen
	cfg    *config.Config
	sheet  *sprites.Sheet

	frames chan game.Frame

	mu     sync.Mutex
	status string
}

// New creates a renderer on an initialized screen.
func New(screen tcell.Screen, cfg *config.Config, sheet *sprites.Sheet) *Renderer {
	if sheet == nil {
		sheet = sprites.DefaultSheet()
	}
	return &Renderer{
		screen: screen,
		cfg:    cfg,
		sheet:  sheet,
		frames: make(chan game.Frame, 1),
	}
}

// SetStatus sets extra text for the status line, e.g. the generation.
func (r *Renderer) SetStatus(s string) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

// Observer returns an episode observer that hands frames to Run, keeping
// only the newest when the terminal falls behind.
func (r *Renderer) Observer() game.Observer {
	return func(f game.Frame) {
		select {
		case r.frames <- f:
			return
		default:
		}
		// Replace the stale frame
		select {
		case <-r.frames:
		default:
		}
		select {
		case r.frames <- f:
		default:
		}
	}
}

// Run draws frames until ctx is done or the user quits with Esc, q or Ctrl-C.
func (r *Renderer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return ErrQuit
				}
			case *tcell.EventResize:
				r.screen.Sync()
			}
		case f := <-r.frames:
			r.Draw(f)
		}
	}
}

// Draw renders one frame.
func (r *Renderer) Draw(f game.Frame) {
	s := r.screen
	s.Clear()

	w, h := s.Size()
	rows := h - 1
	if w <= 0 || rows <= 0 {
		return
	}

	sx := float64(w) / float64(r.cfg.Screen.Width)
	sy := float64(rows) / float64(r.cfg.Screen.Height)
	col := func(x float64) int { return int(x * sx) }
	row := func(y float64) int { return int(y * sy) }

	pipeW := float64(r.sheet.PipeW())
	for _, p := range f.Pipes {
		gapTop, gapBottom := row(p.GapY), row(p.Bottom)
		for x := col(p.X); x < col(p.X+pipeW); x++ {
			if x < 0 || x >= w {
				continue
			}
			for y := 0; y < rows; y++ {
				if y < gapTop || y >= gapBottom {
					s.SetContent(x, y, pipeRune, nil, stylePipe)
				}
			}
		}
	}

	for y := row(f.GroundY); y < rows; y++ {
		for x := 0; x < w; x++ {
			s.SetContent(x, y, groundRune, nil, styleGround)
		}
	}

	// Draw back to front so the lead bird ends up on top
	midY := float64(r.sheet.BirdH()) / 2
	midX := float64(r.sheet.BirdW()) / 2
	for i := len(f.Birds) - 1; i >= 0; i-- {
		b := f.Birds[i]
		x, y := col(b.X+midX), row(b.Y+midY)
		if x < 0 || x >= w || y < 0 || y >= rows {
			continue
		}
		style := styleBird
		if b.Slot == f.LeadSlot {
			style = styleLead
		}
		s.SetContent(x, y, birdRune, nil, style)
	}

	r.drawStatus(f, w, h-1)
	s.Show()
}

func (r *Renderer) drawStatus(f game.Frame, w, y int) {
	r.mu.Lock()
	extra := r.status
	r.mu.Unlock()

	line := fmt.Sprintf(" score %d  alive %d/%d  tick %d  best %.1f  %s ",
		f.Score, f.Alive, f.Population, f.Tick, f.BestFitness, f.State)
	if extra != "" {
		line += " " + extra + " "
	}

	x := 0
	for _, ch := range line {
		if x >= w {
			break
		}
		r.screen.SetContent(x, y, ch, nil, styleHUD)
		x++
	}
	for ; x < w; x++ {
		r.screen.SetContent(x, y, ' ', nil, styleHUD)
	}
}
