package render

import (
	"bytes"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/vovakirdan/nird-snake/internal/core"
	"github.com/vovakirdan/nird-snake/internal/games/snake"
)

func testSnapshot() snake.Snapshot {
	return snake.Snapshot{
		Difficulty: snake.Expert,
		Grid:       snake.Grid{Cols: 15, Rows: 15},
		Snake:      []snake.Position{{X: 5, Y: 5}, {X: 4, Y: 5}, {X: 4, Y: 6}},
		Food:       snake.Position{X: 10, Y: 10},
		Direction:  snake.DirRight,
		Phase:      snake.PhaseRunning,
		Score:      20,
		HighScore:  90,
		Liberated:  2,
		Target:     400,
	}
}

func TestOrientation(t *testing.T) {
	body := []snake.Position{{X: 5, Y: 5}, {X: 4, Y: 5}, {X: 4, Y: 6}, {X: 4, Y: 7}}
	tests := []struct {
		i    int
		want snake.Direction
	}{
		{0, snake.DirRight}, // head uses travel direction
		{1, snake.DirRight},
		{2, snake.DirUp},
		{3, snake.DirUp},
		{9, snake.DirRight},
	}
	for _, tt := range tests {
		if got := Orientation(body, tt.i, snake.DirRight); got != tt.want {
			t.Errorf("Orientation(%d) = %v, expected %v", tt.i, got, tt.want)
		}
	}
}

func TestSegmentKeyHeadParity(t *testing.T) {
	body := []snake.Position{{X: 1, Y: 1}}
	even := SegmentKey(body, 0, snake.DirUp, 4)
	odd := SegmentKey(body, 0, snake.DirUp, 5)
	if even.Part != PartHead || even.Parity == odd.Parity {
		t.Errorf("head key should alternate with movement: %+v %+v", even, odd)
	}
	if Sprites().Get(even).Glyph == Sprites().Get(odd).Glyph {
		t.Error("head poses should differ between parities")
	}
}

func TestCacheBuildsOnce(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	c := NewCache(func(k int) string {
		mu.Lock()
		calls++
		mu.Unlock()
		return strings.Repeat("x", k)
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Get(i % 3)
		}(i)
	}
	wg.Wait()

	if calls != 3 || c.Builds() != 3 || c.Len() != 3 {
		t.Errorf("calls = %d builds = %d len = %d, expected 3", calls, c.Builds(), c.Len())
	}
	if c.Get(2) != "xx" {
		t.Errorf("Get(2) = %q", c.Get(2))
	}
}

func TestTerminalDraw(t *testing.T) {
	s := core.NewScreen(80, 24)
	f := NewFrame(testSnapshot())
	f.Leaderboard = []int{90, 40}
	NewTerminal().Draw(s, f)

	out := s.String()
	for _, want := range []string{"NIRD SNAKE", "Expert", "Record", "90", "Top 5", "1. 90"} {
		if !strings.Contains(out, want) {
			t.Errorf("screen missing %q:\n%s", want, out)
		}
	}

	// locate the head sprite: board is centered, cell (5,5) is two columns wide
	head := Sprites().Get(SpriteKey{Part: PartHead, Dir: snake.DirRight})
	if !strings.Contains(out, string(head.Glyph[:])) {
		t.Errorf("head glyph %q not drawn", string(head.Glyph[:]))
	}
}

func TestTerminalOverlays(t *testing.T) {
	st := testSnapshot()
	st.Phase = snake.PhaseOver
	st.Won = true

	s := core.NewScreen(80, 24)
	NewTerminal().Draw(s, NewFrame(st))
	if !strings.Contains(s.String(), "All computers liberated!") {
		t.Errorf("win overlay missing:\n%s", s.String())
	}

	st.Won = false
	NewTerminal().Draw(s, NewFrame(st))
	out := s.String()
	if !strings.Contains(out, "GAME OVER") || !strings.Contains(out, "Liberated: 2") {
		t.Errorf("loss overlay missing:\n%s", out)
	}

	st.Phase = snake.PhaseCountdown
	st.Countdown = 2
	NewTerminal().Draw(s, NewFrame(st))
	if !strings.Contains(s.String(), " 2 ") {
		t.Errorf("countdown missing:\n%s", s.String())
	}

	f := NewFrame(testSnapshot())
	f.Banner = "Tux approuve !"
	NewTerminal().Draw(s, f)
	if !strings.Contains(s.String(), "Tux approuve !") {
		t.Error("banner missing")
	}
}

func TestTerminalSmallAndEmptyScreens(t *testing.T) {
	s := core.NewScreen(20, 10)
	NewTerminal().Draw(s, NewFrame(testSnapshot()))
	if !strings.Contains(s.String(), "too small") {
		t.Errorf("expected size warning, got:\n%s", s.String())
	}

	NewTerminal().Draw(core.NewScreen(0, 0), NewFrame(testSnapshot()))
}

func TestPNG(t *testing.T) {
	f := NewFrame(testSnapshot())
	f.Bursts = []snake.Position{{X: 2, Y: 2}}

	var buf bytes.Buffer
	if err := NewPNG().Encode(&buf, f); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 15*DefaultCellSize || b.Dy() != 15*DefaultCellSize {
		t.Errorf("image size = %v", b)
	}

	// food cell center is orange-ish
	c := center(f.State.Food, DefaultCellSize)
	r, g, bl, _ := img.At(int(c.X), int(c.Y)).RGBA()
	if r>>8 < 200 || bl>>8 > 100 || g>>8 < 100 {
		t.Errorf("food pixel = %d,%d,%d", r>>8, g>>8, bl>>8)
	}

	if _, err := NewPNG().Image(Frame{}); err == nil {
		t.Error("empty grid should fail")
	}
}
