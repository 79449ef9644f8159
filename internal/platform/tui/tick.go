// Package tui is the Bubble Tea host for the game. It owns the frame loop,
// routes keys to the secret matcher or the engine, and fans engine events
// out to persistence, metrics and spectators.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
)

// FrameMsg asks the model to run one frame. Gen must match the model's
// generation or the frame is dropped and the loop stops.
type FrameMsg struct {
	Gen  uint64
	Time time.Time
}

// frameCmd schedules the next frame at the given rate.
func frameCmd(tickRate int, gen uint64) tea.Cmd {
	if tickRate < 1 {
		tickRate = 1
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg{Gen: gen, Time: t}
	})
}

// hintDoneMsg ends the activation hint.
type hintDoneMsg struct{ gen uint64 }

// bannerDoneMsg hides milestone banner seq.
type bannerDoneMsg struct {
	gen uint64
	seq uint64
}

// burstDoneMsg removes food burst seq.
type burstDoneMsg struct {
	gen uint64
	seq uint64
}

// afterCmd delivers msg once d has elapsed.
func afterCmd(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

type burst struct {
	seq uint64
	pos snake.Position
}
