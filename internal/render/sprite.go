package render

import (
	"github.com/vovakirdan/nird-snake/internal/core"
	"github.com/vovakirdan/nird-snake/internal/games/snake"
)

// Part is the kind of thing a sprite depicts.
type Part uint8

const (
	PartHead Part = iota
	PartBody
	PartFood
	PartBurst
)

// SpriteKey identifies one terminal sprite.
// Parity alternates the head between two waddle poses, stripes the body and
// pulses food and bursts.
type SpriteKey struct {
	Part   Part
	Dir    snake.Direction
	Parity uint8
}

// Sprite is a two-column glyph pair; one grid cell is two terminal columns.
type Sprite struct {
	Glyph [2]rune
	Color core.Color
}

// sprites is shared by every terminal renderer in the process.
var sprites = NewCache(buildSprite)

// Sprites returns the process-wide terminal sprite cache.
func Sprites() *Cache[SpriteKey, Sprite] {
	return sprites
}

var headPoses = map[snake.Direction][2][2]rune{
	snake.DirRight: {{'(', '>'}, {'{', '>'}},
	snake.DirLeft:  {{'<', ')'}, {'<', '}'}},
	snake.DirUp:    {{'/', '\\'}, {'^', '^'}},
	snake.DirDown:  {{'\\', '/'}, {'v', 'v'}},
}

func buildSprite(k SpriteKey) Sprite {
	odd := k.Parity%2 == 1
	switch k.Part {
	case PartHead:
		pose := headPoses[k.Dir][k.Parity%2]
		return Sprite{Glyph: pose, Color: core.ColorWhite}
	case PartBody:
		g := [2]rune{'(', ')'}
		if k.Dir == snake.DirUp || k.Dir == snake.DirDown {
			g = [2]rune{'[', ']'}
		}
		c := core.ColorGreen
		if odd {
			c = core.ColorBrightGreen
		}
		return Sprite{Glyph: g, Color: c}
	case PartFood:
		if odd {
			return Sprite{Glyph: [2]rune{'[', ']'}, Color: core.ColorYellow}
		}
		return Sprite{Glyph: [2]rune{'[', ']'}, Color: core.ColorOrange}
	case PartBurst:
		if odd {
			return Sprite{Glyph: [2]rune{'+', '+'}, Color: core.ColorYellow}
		}
		return Sprite{Glyph: [2]rune{'*', '*'}, Color: core.ColorOrange}
	}
	return Sprite{Glyph: [2]rune{'?', '?'}, Color: core.ColorRed}
}

// Orientation returns the direction segment i of a head-first snake faces.
// The head faces the travel direction; every other segment faces the
// neighbour closer to the head.
func Orientation(body []snake.Position, i int, travel snake.Direction) snake.Direction {
	if i <= 0 || i >= len(body) {
		return travel
	}
	from, to := body[i], body[i-1]
	switch {
	case to.X > from.X:
		return snake.DirRight
	case to.X < from.X:
		return snake.DirLeft
	case to.Y < from.Y:
		return snake.DirUp
	case to.Y > from.Y:
		return snake.DirDown
	}
	return travel
}

// SegmentKey returns the sprite key for segment i.
func SegmentKey(body []snake.Position, i int, travel snake.Direction, movement uint64) SpriteKey {
	if i == 0 {
		return SpriteKey{Part: PartHead, Dir: travel, Parity: uint8(movement % 2)}
	}
	return SpriteKey{Part: PartBody, Dir: Orientation(body, i, travel), Parity: uint8(i % 2)}
}
