package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/nird-snake/internal/core"
	"github.com/vovakirdan/nird-snake/internal/games/snake"
	"github.com/vovakirdan/nird-snake/internal/session"
	"github.com/vovakirdan/nird-snake/internal/storage"
)

type fakePublisher struct {
	published map[string]snake.Snapshot
	removed   []string
}

func (p *fakePublisher) Publish(id string, snap snake.Snapshot) {
	if p.published == nil {
		p.published = make(map[string]snake.Snapshot)
	}
	p.published[id] = snap
}

func (p *fakePublisher) Remove(id string) {
	delete(p.published, id)
	p.removed = append(p.removed, id)
}

type fakeRounds struct {
	saved []storage.Round
}

func (r *fakeRounds) SaveRound(rd storage.Round) (int64, error) {
	r.saved = append(r.saved, rd)
	return int64(len(r.saved)), nil
}

func (r *fakeRounds) TopRounds(difficulty string, limit int) ([]storage.Round, error) {
	var out []storage.Round
	for _, rd := range r.saved {
		if difficulty == "" || rd.Difficulty == difficulty {
			out = append(out, rd)
		}
	}
	return out, nil
}

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Config:        core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 7},
		Difficulty:    snake.MustDifficulty(snake.Beginner),
		HintDuration:  time.Second,
		BurstDuration: time.Second,
		Scores:        session.NewAdapter(session.NewMemoryKV(), nil),
		Now:           func() time.Time { return t0 },
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func typeKeys(t *testing.T, m Model, keys string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, r := range keys {
		m, cmd = update(t, m, runeKey(string(r)))
	}
	return m, cmd
}

// frame sends a frame for the current generation at time at.
func frame(t *testing.T, m Model, at time.Time) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, FrameMsg{Gen: m.Gen(), Time: at})
}

// playUntilOver runs frames one step interval apart until the round ends.
func playUntilOver(t *testing.T, m Model) (Model, time.Time) {
	t.Helper()
	m, _ = frame(t, m, t0)
	at := t0.Add(snake.CountdownSeconds * time.Second)
	interval := m.Engine().Difficulty().StepInterval
	for range 200 {
		m, _ = frame(t, m, at)
		if m.Engine().Phase() == snake.PhaseOver {
			return m, at
		}
		at = at.Add(interval)
	}
	t.Fatal("round did not end")
	return m, at
}

func TestDormantUntilCode(t *testing.T) {
	opts := testOptions()
	opts.RequireActivation = true
	m := NewModel(opts)

	if !m.Dormant() || m.Engine() != nil {
		t.Fatal("model should start dormant with no engine")
	}
	if cmd := m.Init(); cmd != nil {
		t.Error("dormant model should not start the frame loop")
	}

	m, _ = typeKeys(t, m, "upupdow")
	if m.Engine() != nil {
		t.Fatal("partial code must not open the game")
	}

	m, cmd := typeKeys(t, m, "n")
	if m.Dormant() {
		t.Fatal("code should leave dormant mode")
	}
	if m.Engine() != nil {
		t.Fatal("engine should wait for the hint to finish")
	}
	if cmd == nil {
		t.Fatal("expected hint timer")
	}

	m, cmd = update(t, m, hintDoneMsg{gen: m.Gen()})
	if m.Engine() == nil {
		t.Fatal("hint timer should open the game")
	}
	if cmd == nil {
		t.Error("opening the game should start the frame loop")
	}
	if m.Engine().Phase() != snake.PhaseCountdown {
		t.Errorf("phase = %v, want countdown", m.Engine().Phase())
	}
}

func TestCodeIgnoresNoise(t *testing.T) {
	opts := testOptions()
	opts.RequireActivation = true
	m := NewModel(opts)

	m, _ = typeKeys(t, m, "xxUPUPDOWN")
	m, _ = update(t, m, hintDoneMsg{gen: m.Gen()})
	if m.Engine() == nil {
		t.Fatal("code after noise should still match")
	}
}

func TestEscapeCancelsHint(t *testing.T) {
	opts := testOptions()
	opts.RequireActivation = true
	m := NewModel(opts)

	m, _ = typeKeys(t, m, "upupdown")
	staleGen := m.Gen()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, hintDoneMsg{gen: staleGen})
	if !m.Dormant() || m.Engine() != nil {
		t.Error("stale hint timer must not open the game")
	}
}

func TestCloseDropsStaleFrames(t *testing.T) {
	pub := &fakePublisher{}
	opts := testOptions()
	opts.Publisher = pub
	opts.SessionID = "local-1"
	m := NewModel(opts)

	if m.Init() == nil {
		t.Fatal("open game should start the frame loop")
	}
	if _, ok := pub.published["local-1"]; !ok {
		t.Fatal("opening should publish a snapshot")
	}

	staleGen := m.Gen()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.Dormant() || m.Engine() != nil {
		t.Fatal("escape should close the game")
	}
	if len(pub.removed) != 1 {
		t.Errorf("removed = %v, want one removal", pub.removed)
	}

	m, cmd := update(t, m, FrameMsg{Gen: staleGen, Time: t0})
	if cmd != nil {
		t.Error("stale frame should stop the loop")
	}
	if m.Engine() != nil {
		t.Error("stale frame should not reopen the game")
	}
}

func TestFrameRunsEngine(t *testing.T) {
	pub := &fakePublisher{}
	opts := testOptions()
	opts.Publisher = pub
	opts.SessionID = "s"
	m := NewModel(opts)

	m, cmd := frame(t, m, t0)
	if cmd == nil {
		t.Fatal("frame should schedule the next frame")
	}
	if got := m.Engine().Phase(); got != snake.PhaseCountdown {
		t.Fatalf("phase = %v, want countdown", got)
	}

	head := m.Engine().Head()
	m, _ = frame(t, m, t0.Add(3*time.Second))
	if m.Engine().Phase() != snake.PhaseRunning {
		t.Fatalf("phase = %v, want running", m.Engine().Phase())
	}
	if m.Engine().Head() == head {
		t.Error("first running frame should move the snake")
	}
	if pub.published["s"].Phase != snake.PhaseRunning {
		t.Error("publisher should see the running snapshot")
	}
}

func TestDirectionKeysReachEngine(t *testing.T) {
	m := NewModel(testOptions())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.Engine().Pending(); got != snake.DirUp {
		t.Errorf("pending = %v, want UP", got)
	}
	m, _ = update(t, m, runeKey("s"))
	if got := m.Engine().Pending(); got != snake.DirUp {
		t.Errorf("second change within the rate limit should be ignored, pending = %v", got)
	}
}

func TestRestartOnlyWhenOver(t *testing.T) {
	rounds := &fakeRounds{}
	opts := testOptions()
	opts.Rounds = rounds
	m := NewModel(opts)

	m, _ = frame(t, m, t0)
	m, _ = frame(t, m, t0.Add(3*time.Second))
	m, _ = update(t, m, runeKey("r"))
	if m.Engine().Phase() != snake.PhaseRunning {
		t.Fatal("restart must be ignored while running")
	}

	m, _ = playUntilOver(t, m)
	if len(rounds.saved) != 1 {
		t.Fatalf("saved rounds = %d, want 1", len(rounds.saved))
	}
	if rounds.saved[0].Difficulty != "beginner" {
		t.Errorf("difficulty = %q", rounds.saved[0].Difficulty)
	}
	if board := opts.Scores.Leaderboard(); len(board) != 1 || board[0] != rounds.saved[0].Score {
		t.Errorf("leaderboard = %v, want the final score", board)
	}

	// more frames after game over do nothing
	m, _ = frame(t, m, t0.Add(time.Hour))
	if len(rounds.saved) != 1 {
		t.Error("round saved twice")
	}

	m, _ = update(t, m, runeKey("r"))
	if m.Engine().Phase() != snake.PhaseCountdown {
		t.Errorf("phase after restart = %v, want countdown", m.Engine().Phase())
	}
	if m.Engine().Score() != 0 {
		t.Error("restart should clear the score")
	}
}

func TestDifficultySwitch(t *testing.T) {
	m := NewModel(testOptions())

	m, _ = update(t, m, runeKey("2"))
	if m.Engine().Difficulty().ID != snake.Expert {
		t.Fatalf("difficulty = %v, want expert", m.Engine().Difficulty().ID)
	}

	m, _ = frame(t, m, t0)
	m, _ = frame(t, m, t0.Add(3*time.Second))
	m, cmd := update(t, m, runeKey("1"))
	if m.Engine().Difficulty().ID != snake.Expert {
		t.Error("difficulty must not change while running")
	}
	if cmd == nil {
		t.Error("expected a notice timer")
	}
}

func TestMilestoneBannerTimer(t *testing.T) {
	m := NewModel(testOptions())
	cmds := m.applyEvents([]snake.Event{{Kind: snake.EventMilestone, Message: "Bravo"}}, t0)
	if len(cmds) != 1 {
		t.Fatalf("cmds = %d, want 1", len(cmds))
	}
	if m.frame().Banner != "Bravo" {
		t.Fatalf("banner = %q", m.frame().Banner)
	}

	m, _ = update(t, m, bannerDoneMsg{gen: m.Gen(), seq: m.bannerSeq - 1})
	if m.banner == "" {
		t.Error("older banner timer should not clear a newer banner")
	}
	m, _ = update(t, m, bannerDoneMsg{gen: m.Gen(), seq: m.bannerSeq})
	if m.banner != "" {
		t.Error("banner should clear")
	}
}

func TestFoodBurstTimer(t *testing.T) {
	m := NewModel(testOptions())
	m.applyEvents([]snake.Event{{Kind: snake.EventFoodEaten, Position: snake.Position{X: 3, Y: 4}}}, t0)
	if got := m.frame().Bursts; len(got) != 1 || got[0] != (snake.Position{X: 3, Y: 4}) {
		t.Fatalf("bursts = %v", got)
	}
	m, _ = update(t, m, burstDoneMsg{gen: m.Gen(), seq: m.burstSeq})
	if len(m.frame().Bursts) != 0 {
		t.Error("burst should expire")
	}
}

func TestLeaderboardScreen(t *testing.T) {
	rounds := &fakeRounds{saved: []storage.Round{{Difficulty: "expert", Score: 70, CreatedAt: t0}}}
	opts := testOptions()
	opts.Rounds = rounds
	m := NewModel(opts)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !strings.Contains(m.View(), "HALL OF FAME") {
		t.Fatal("tab should show the leaderboard")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if strings.Contains(m.View(), "HALL OF FAME") {
		t.Error("tab should close the leaderboard")
	}
	if m.Dormant() {
		t.Error("leaving the leaderboard must not close the game")
	}
}

func TestLeaderboardRefusedWhileRunning(t *testing.T) {
	m := NewModel(testOptions())
	m, _ = frame(t, m, t0)
	at := t0.Add(snake.CountdownSeconds * time.Second)
	m, _ = frame(t, m, at)
	if m.Engine().Phase() != snake.PhaseRunning {
		t.Fatalf("phase = %v, want running", m.Engine().Phase())
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.board != nil {
		t.Fatal("tab must not hide a running round")
	}
	if cmd == nil || m.notice == "" {
		t.Error("refusal should flash a notice")
	}
	if strings.Contains(m.View(), "HALL OF FAME") {
		t.Error("view should still show the game")
	}

	m, _ = playUntilOver(t, m)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.board == nil {
		t.Error("tab should open the leaderboard once the round is over")
	}
}

func TestShiftedKeysSteer(t *testing.T) {
	m := NewModel(testOptions())
	m, _ = update(t, m, runeKey("W"))
	if got := m.Engine().Pending(); got != snake.DirUp {
		t.Errorf("pending = %v after W, want UP", got)
	}

	m, _ = playUntilOver(t, m)
	m, _ = update(t, m, runeKey("R"))
	if m.Engine().Phase() != snake.PhaseCountdown {
		t.Errorf("phase = %v after R, want countdown", m.Engine().Phase())
	}
}

func TestScreenshot(t *testing.T) {
	opts := testOptions()
	opts.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	m := NewModel(opts)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	entries, err := os.ReadDir(opts.ScreenshotDir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".png") {
		t.Fatalf("entries = %v", entries)
	}
	if !strings.HasPrefix(m.notice, "Saved") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(testOptions())
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("command should quit")
	}
	if m.View() != "" {
		t.Error("quitting view should be empty")
	}
}

func TestViewModes(t *testing.T) {
	opts := testOptions()
	opts.RequireActivation = true
	m := NewModel(opts)
	if !strings.Contains(m.View(), "NIRD") {
		t.Error("dormant view should show the title")
	}

	m, _ = typeKeys(t, m, "upupdown")
	if !strings.Contains(m.View(), "Code accepted") {
		t.Error("hint view should acknowledge the code")
	}

	m, _ = update(t, m, hintDoneMsg{gen: m.Gen()})
	if !strings.Contains(m.View(), "Score") {
		t.Error("game view should show the HUD")
	}
}

func TestRenderScreen(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawText(0, 0, "ab", core.ColorGreen)
	s.DrawText(2, 0, "cd", core.ColorRed)
	out := RenderScreen(s)
	if !strings.Contains(out, "ab") || !strings.Contains(out, "cd") {
		t.Errorf("output %q missing text", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("want 2 lines, got %q", out)
	}
}
