package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vovakirdan/nird-snake/internal/core"
	"github.com/vovakirdan/nird-snake/internal/games/snake"
)

const (
	cellW    = 2  // terminal columns per grid cell
	sidebarW = 22 // HUD column right of the board
)

// Terminal draws frames into a core.Screen.
type Terminal struct {
	sprites *Cache[SpriteKey, Sprite]
}

// NewTerminal returns a renderer backed by the shared sprite cache.
func NewTerminal() *Terminal {
	return &Terminal{sprites: Sprites()}
}

// MinSize returns the smallest screen that fits grid g.
func MinSize(g snake.Grid) (w, h int) {
	return g.Cols*cellW + 2, g.Rows + 4
}

// Draw renders f onto s. Empty screens are skipped.
func (t *Terminal) Draw(s *core.Screen, f Frame) {
	if s.Empty() {
		return
	}
	s.Clear()

	st := f.State
	needW, needH := MinSize(st.Grid)
	if s.Width() < needW || s.Height() < needH {
		msg := fmt.Sprintf("Terminal too small: need %dx%d", needW, needH)
		s.DrawTextCentered(s.Bounds(), s.Height()/2, msg, core.ColorYellow)
		return
	}

	boardW := st.Grid.Cols*cellW + 2
	boardH := st.Grid.Rows + 2
	withSidebar := s.Width() >= boardW+1+sidebarW
	totalW := boardW
	if withSidebar {
		totalW += 1 + sidebarW
	}
	left := (s.Width() - totalW) / 2
	board := core.NewRect(left, 1, boardW, boardH)

	t.drawTitle(s, f, core.NewRect(left, 0, totalW, 1))
	s.DrawBox(board, core.ColorGray)
	inner := core.NewRect(board.X+1, board.Y+1, boardW-2, boardH-2)

	t.drawBursts(s, inner, f)
	t.drawFood(s, inner, st.Food, f.Pulse)
	t.drawSnake(s, inner, st)

	switch st.Phase {
	case snake.PhaseCountdown:
		drawCountdown(s, inner, st.Countdown)
	case snake.PhaseOver:
		drawGameOver(s, inner, st)
	}

	if withSidebar {
		drawSidebar(s, core.NewRect(board.Right()+1, board.Y, sidebarW, boardH), f)
	}
	drawFooter(s, board.Bottom(), f)
}

func (t *Terminal) put(s *core.Screen, inner core.Rect, p snake.Position, sp Sprite) {
	x := inner.X + p.X*cellW
	y := inner.Y + p.Y
	s.SetColored(x, y, sp.Glyph[0], sp.Color)
	s.SetColored(x+1, y, sp.Glyph[1], sp.Color)
}

func (t *Terminal) drawSnake(s *core.Screen, inner core.Rect, st snake.Snapshot) {
	// tail first so the head wins if segments ever overlap
	for i := len(st.Snake) - 1; i >= 0; i-- {
		key := SegmentKey(st.Snake, i, st.Direction, st.Movement)
		t.put(s, inner, st.Snake[i], t.sprites.Get(key))
	}
}

func (t *Terminal) drawFood(s *core.Screen, inner core.Rect, food snake.Position, pulse uint64) {
	t.put(s, inner, food, t.sprites.Get(SpriteKey{Part: PartFood, Parity: uint8(pulse / 8 % 2)}))
}

func (t *Terminal) drawBursts(s *core.Screen, inner core.Rect, f Frame) {
	for _, p := range f.Bursts {
		t.put(s, inner, p, t.sprites.Get(SpriteKey{Part: PartBurst, Parity: uint8(f.Pulse / 4 % 2)}))
	}
}

func (t *Terminal) drawTitle(s *core.Screen, f Frame, r core.Rect) {
	s.DrawText(r.X, r.Y, "NIRD SNAKE", core.ColorBrightGreen)
	diff := difficultyTitle(f.State.Difficulty)
	s.DrawText(r.Right()-utf8.RuneCountInString(diff), r.Y, diff, core.ColorCyan)
}

func drawCountdown(s *core.Screen, inner core.Rect, n int) {
	mid := inner.Y + inner.H/2
	s.DrawTextCentered(inner, mid-1, "Get ready", core.ColorWhite)
	if n > 0 {
		s.DrawTextCentered(inner, mid, fmt.Sprintf(" %d ", n), core.ColorYellow)
	}
}

func drawGameOver(s *core.Screen, inner core.Rect, st snake.Snapshot) {
	title, color := "GAME OVER", core.ColorRed
	if st.Won {
		title, color = "All computers liberated!", core.ColorBrightGreen
	}
	lines := []string{
		title,
		"",
		fmt.Sprintf("Score: %d", st.Score),
		fmt.Sprintf("Liberated: %d", st.Liberated),
		"",
		"R restart  Esc close",
	}

	w := 0
	for _, l := range lines {
		w = max(w, utf8.RuneCountInString(l))
	}
	box := inner.Centered(min(w+4, inner.W), min(len(lines)+2, inner.H))
	s.DrawRect(box, ' ')
	s.DrawBox(box, color)
	for i, l := range lines {
		c := core.ColorWhite
		if i == 0 {
			c = color
		}
		s.DrawTextCentered(box, box.Y+1+i, l, c)
	}
}

func drawSidebar(s *core.Screen, r core.Rect, f Frame) {
	st := f.State
	rows := []struct {
		label string
		value string
	}{
		{"Score", fmt.Sprint(st.Score)},
		{"Record", fmt.Sprint(st.HighScore)},
		{"Liberated", fmt.Sprintf("%d/%d", st.Liberated, st.Target/snake.PointsPerFood)},
		{"Target", fmt.Sprint(st.Target)},
	}
	y := r.Y
	for _, row := range rows {
		s.DrawText(r.X, y, row.label, core.ColorGray)
		s.DrawText(r.Right()-utf8.RuneCountInString(row.value), y, row.value, core.ColorWhite)
		y++
	}

	y++
	s.DrawText(r.X, y, "Top 5", core.ColorCyan)
	y++
	if len(f.Leaderboard) == 0 {
		s.DrawText(r.X, y, "no rounds yet", core.ColorGray)
		return
	}
	for i, score := range f.Leaderboard {
		if y >= r.Bottom() {
			return
		}
		s.DrawText(r.X, y, fmt.Sprintf("%d. %d", i+1, score), core.ColorWhite)
		y++
	}
}

func drawFooter(s *core.Screen, y int, f Frame) {
	r := core.NewRect(0, y, s.Width(), 1)
	if f.Banner != "" {
		s.DrawTextCentered(r, y, f.Banner, core.ColorYellow)
		return
	}
	help := []string{"arrows/wasd move", "1/2 difficulty", "tab scores", "esc close"}
	s.DrawTextCentered(r, y, strings.Join(help, "  "), core.ColorGray)
}

func difficultyTitle(id snake.DifficultyID) string {
	d, err := snake.LookupDifficulty(string(id))
	if err != nil {
		return string(id)
	}
	return d.Title
}
