// Package render turns engine snapshots into pictures: styled terminal cells
// for the local and SSH front ends and PNG images for screenshots and
// spectators. Renderers own their sprite caches; the engine never sees them.
package render

import "github.com/vovakirdan/nird-snake/internal/games/snake"

// Frame is everything a renderer needs for one picture.
type Frame struct {
	State snake.Snapshot

	// Bursts are cells that recently had food eaten on them.
	Bursts []snake.Position
	// Banner is the milestone message currently on display.
	Banner string
	// Leaderboard is the stored top five.
	Leaderboard []int
	// Pulse advances every frame and animates food and bursts.
	Pulse uint64
}

// NewFrame wraps a snapshot with no overlays.
func NewFrame(s snake.Snapshot) Frame {
	return Frame{State: s}
}
