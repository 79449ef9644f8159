package snake

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/nird-snake/internal/core"
)

// Direction represents the snake's movement direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

// Delta returns the one-cell offset for a move in direction d.
// Y grows downward.
func (d Direction) Delta() Position {
	switch d {
	case DirUp:
		return Position{0, -1}
	case DirDown:
		return Position{0, 1}
	case DirLeft:
		return Position{-1, 0}
	default:
		return Position{1, 0}
	}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	case DirLeft:
		return "LEFT"
	case DirRight:
		return "RIGHT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the direction by name for JSON snapshots.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "UP":
		*d = DirUp
	case "DOWN":
		*d = DirDown
	case "LEFT":
		*d = DirLeft
	case "RIGHT":
		*d = DirRight
	default:
		return fmt.Errorf("snake: unknown direction %q", b)
	}
	return nil
}

// DirectionForAction maps a steering action to a direction.
// The second result is false for non-steering actions.
func DirectionForAction(a core.Action) (Direction, bool) {
	switch a {
	case core.ActionUp:
		return DirUp, true
	case core.ActionDown:
		return DirDown, true
	case core.ActionLeft:
		return DirLeft, true
	case core.ActionRight:
		return DirRight, true
	default:
		return 0, false
	}
}
