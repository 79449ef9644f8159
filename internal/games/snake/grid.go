package snake

import "math/rand"

// Position is a cell on the grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Grid is the rectangular playfield.
type Grid struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// InBounds reports whether p lies inside the grid.
func (g Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.Cols && p.Y >= 0 && p.Y < g.Rows
}

// Center returns the spawn cell.
func (g Grid) Center() Position {
	return Position{X: g.Cols / 2, Y: g.Rows / 2}
}

// Capacity returns the number of cells.
func (g Grid) Capacity() int {
	return g.Cols * g.Rows
}

// Occupies reports whether any segment of snake is at p.
func Occupies(snake []Position, p Position) bool {
	for _, s := range snake {
		if s == p {
			return true
		}
	}
	return false
}

// PlaceFood picks a uniformly random free cell by rejection sampling.
// It returns false when the snake fills the grid and no cell is free.
func (g Grid) PlaceFood(snake []Position, rng *rand.Rand) (Position, bool) {
	if g.Capacity() <= 0 || freeCells(g, snake) == 0 {
		return Position{}, false
	}
	for {
		p := Position{X: rng.Intn(g.Cols), Y: rng.Intn(g.Rows)}
		if !Occupies(snake, p) {
			return p, true
		}
	}
}

func freeCells(g Grid, snake []Position) int {
	seen := make(map[Position]struct{}, len(snake))
	for _, s := range snake {
		if g.InBounds(s) {
			seen[s] = struct{}{}
		}
	}
	return g.Capacity() - len(seen)
}
