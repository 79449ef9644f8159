package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/nird-snake/internal/core"
	"github.com/vovakirdan/nird-snake/internal/games/snake"
	"github.com/vovakirdan/nird-snake/internal/metrics"
	"github.com/vovakirdan/nird-snake/internal/render"
	"github.com/vovakirdan/nird-snake/internal/secret"
	"github.com/vovakirdan/nird-snake/internal/session"
	"github.com/vovakirdan/nird-snake/internal/storage"
)

// Publisher receives live snapshots, e.g. the spectator hub.
type Publisher interface {
	Publish(id string, snap snake.Snapshot)
	Remove(id string)
}

// Rounds stores and lists finished rounds. *storage.Store satisfies it.
type Rounds interface {
	SaveRound(r storage.Round) (int64, error)
	TopRounds(difficulty string, limit int) ([]storage.Round, error)
}

// Options configures one game session.
type Options struct {
	Config     core.RuntimeConfig
	Difficulty snake.Difficulty

	// Code is the activation sequence. With RequireActivation false the game
	// opens immediately.
	Code              []string
	RequireActivation bool
	HintDuration      time.Duration
	MilestoneDuration time.Duration
	BurstDuration     time.Duration
	ScreenshotDir     string

	Player    string // SSH user, empty locally
	SessionID string // spectator id, empty disables publishing

	Scores    *session.Adapter
	Rounds    Rounds // optional
	Metrics   *metrics.Metrics
	Publisher Publisher // optional
	Logger    *log.Logger

	// Lease, when set, lets the caller release the game after the program
	// exits. NewModel creates one otherwise.
	Lease *Lease

	// Now overrides the clock used for key timestamps. Tests only.
	Now func() time.Time
}

type mode int

const (
	modeDormant mode = iota
	modeHint
	modeGame
)

// Model is the Bubble Tea model for one player: dormant until the secret
// code is typed, then a brief hint, then the game.
type Model struct {
	opts    Options
	logger  *log.Logger
	keys    *KeyMapper
	matcher *secret.Matcher
	screen  *core.Screen
	term    *render.Terminal
	png     *render.PNG
	lease   *Lease

	mode mode
	// gen increments whenever the game closes; frames and timers from an
	// older generation are ignored.
	gen uint64

	engine     *snake.Engine
	bursts     []burst
	burstSeq   uint64
	banner     string
	bannerSeq  uint64
	notice     string
	pulse      uint64
	roundSaved bool

	board    *LeaderboardModel
	quitting bool
}

// NewModel creates a session model.
func NewModel(opts Options) Model {
	if opts.Config.TickRate <= 0 {
		opts.Config.TickRate = core.DefaultConfig().TickRate
	}
	if opts.Config.Seed == 0 {
		opts.Config.Seed = time.Now().UnixNano()
	}
	if opts.Difficulty.Cols == 0 {
		opts.Difficulty = snake.MustDifficulty(snake.Beginner)
	}
	if len(opts.Code) == 0 {
		opts.Code = secret.DefaultCode
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Scores == nil {
		opts.Scores = session.NewAdapter(session.NewMemoryKV(), opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	lease := opts.Lease
	if lease == nil {
		lease = NewLease(opts.SessionID, opts.Publisher, opts.Metrics)
	}

	m := Model{
		opts:    opts,
		logger:  logger,
		keys:    NewKeyMapper(),
		matcher: secret.NewMatcher(opts.Code, nil),
		screen:  core.NewScreen(opts.Config.ScreenW, opts.Config.ScreenH),
		term:    render.NewTerminal(),
		png:     render.NewPNG(),
		lease:   lease,
	}
	if !opts.RequireActivation {
		m.openGame()
	}
	return m
}

// Init starts the frame loop when the game is already open.
func (m Model) Init() tea.Cmd {
	if m.mode == modeGame {
		return frameCmd(m.opts.Config.TickRate, m.gen)
	}
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Config.ScreenW = msg.Width
		m.opts.Config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		if m.board != nil {
			b, _, cmd := m.board.Update(msg)
			m.board = &b
			return m, cmd
		}
		return m, nil

	case FrameMsg:
		return m.handleFrame(msg)

	case hintDoneMsg:
		if msg.gen != m.gen || m.mode != modeHint {
			return m, nil
		}
		m.openGame()
		return m, frameCmd(m.opts.Config.TickRate, m.gen)

	case bannerDoneMsg:
		if msg.gen == m.gen && msg.seq == m.bannerSeq {
			m.banner = ""
			m.notice = ""
		}
		return m, nil

	case burstDoneMsg:
		if msg.gen == m.gen {
			m.bursts = removeBurst(m.bursts, msg.seq)
		}
		return m, nil
	}

	return m, nil
}

func removeBurst(bs []burst, seq uint64) []burst {
	out := bs[:0:0]
	for _, b := range bs {
		if b.seq != seq {
			out = append(out, b)
		}
	}
	return out
}

// handleKey routes a key press by mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev := m.keys.MapKey(msg)

	if ev.Action == core.ActionQuit {
		m.closeGame()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeDormant:
		if m.matcher.Observe(ev.Token()) {
			return m.activate()
		}
		return m, nil

	case modeHint:
		if ev.Escape {
			m.closeGame()
		}
		return m, nil
	}

	if m.board != nil {
		b, back, cmd := m.board.Update(msg)
		if back {
			m.board = nil
			return m, nil
		}
		m.board = &b
		return m, cmd
	}

	now := m.opts.Now()
	switch ev.Action {
	case core.ActionClose:
		m.closeGame()
		return m, nil

	case core.ActionRestart:
		if m.engine.Phase() == snake.PhaseOver {
			m.restart()
		}

	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		d, _ := snake.DirectionForAction(ev.Action)
		m.engine.ProposeDirection(d, now)

	case core.ActionBeginner, core.ActionExpert:
		id := snake.Beginner
		if ev.Action == core.ActionExpert {
			id = snake.Expert
		}
		return m, m.switchDifficulty(snake.MustDifficulty(id))

	case core.ActionScreenshot:
		return m, m.flash(m.saveScreenshot(now))

	case core.ActionLeaderboard:
		if m.engine.Phase() == snake.PhaseRunning {
			return m, m.flash("Finish the round before opening the scores")
		}
		b := NewLeaderboardModel(m.opts.Scores.Leaderboard(), m.opts.Rounds, m.screen.Width(), m.screen.Height())
		m.board = &b
	}

	return m, nil
}

// activate starts the hint after a matched code.
func (m Model) activate() (tea.Model, tea.Cmd) {
	m.opts.Metrics.Activated()
	m.logger.Info("activation code accepted", "player", m.opts.Player)
	if m.opts.HintDuration <= 0 {
		m.openGame()
		return m, frameCmd(m.opts.Config.TickRate, m.gen)
	}
	m.mode = modeHint
	return m, afterCmd(m.opts.HintDuration, hintDoneMsg{gen: m.gen})
}

// openGame instantiates the engine. It is the only place an engine is made.
func (m *Model) openGame() {
	seed := m.opts.Config.Seed + int64(m.gen)
	m.engine = snake.New(m.opts.Difficulty, m.opts.Scores.LoadHighScore(), seed)
	m.mode = modeGame
	m.roundSaved = false
	m.lease.Acquire()
	m.publish()
}

// closeGame drops the engine and returns to dormant. Bumping the generation
// stops the frame loop and cancels pending timers.
func (m *Model) closeGame() {
	m.gen++
	m.mode = modeDormant
	m.matcher.Reset()
	m.engine = nil
	m.bursts = nil
	m.banner = ""
	m.notice = ""
	m.board = nil
	m.lease.Release()
}

func (m *Model) restart() {
	m.engine.SetHighScore(m.opts.Scores.LoadHighScore())
	m.engine.Reset()
	m.roundSaved = false
	m.bursts = nil
	m.banner = ""
	m.publish()
}

func (m *Model) switchDifficulty(d snake.Difficulty) tea.Cmd {
	if d.ID == m.engine.Difficulty().ID {
		return nil
	}
	if err := m.engine.SetDifficulty(d); err != nil {
		return m.flash("Finish the round before changing level")
	}
	m.opts.Difficulty = d
	m.roundSaved = false
	m.bursts = nil
	m.publish()
	return m.flash(d.Title + " selected")
}

// flash shows a short footer notice.
func (m *Model) flash(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	m.notice = text
	m.bannerSeq++
	return afterCmd(m.milestoneDuration(), bannerDoneMsg{gen: m.gen, seq: m.bannerSeq})
}

func (m *Model) milestoneDuration() time.Duration {
	if m.opts.MilestoneDuration > 0 {
		return m.opts.MilestoneDuration
	}
	return 1500 * time.Millisecond
}

// handleFrame runs at most one engine step and schedules the next frame.
func (m Model) handleFrame(msg FrameMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen || m.mode != modeGame {
		return m, nil
	}

	m.pulse++
	start := time.Now()
	res := m.engine.Step(msg.Time)
	m.opts.Metrics.ObserveStep(time.Since(start))

	cmds := []tea.Cmd{frameCmd(m.opts.Config.TickRate, m.gen)}
	if len(res.Events) > 0 {
		cmds = append(cmds, m.applyEvents(res.Events, msg.Time)...)
	}
	if res.Moved || len(res.Events) > 0 {
		m.publish()
	}
	return m, tea.Batch(cmds...)
}

// applyEvents hands engine events to persistence, metrics and the overlays.
func (m *Model) applyEvents(events []snake.Event, now time.Time) []tea.Cmd {
	m.opts.Scores.Apply(events)
	m.opts.Metrics.Observe(events)

	var cmds []tea.Cmd
	for _, ev := range events {
		switch ev.Kind {
		case snake.EventFoodEaten:
			if m.opts.BurstDuration > 0 {
				m.burstSeq++
				m.bursts = append(m.bursts, burst{seq: m.burstSeq, pos: ev.Position})
				cmds = append(cmds, afterCmd(m.opts.BurstDuration, burstDoneMsg{gen: m.gen, seq: m.burstSeq}))
			}

		case snake.EventMilestone:
			m.banner = ev.Message
			m.notice = ""
			m.bannerSeq++
			cmds = append(cmds, afterCmd(m.milestoneDuration(), bannerDoneMsg{gen: m.gen, seq: m.bannerSeq}))

		case snake.EventGameOver:
			m.saveRound(ev, now)
		}
	}
	return cmds
}

func (m *Model) saveRound(ev snake.Event, now time.Time) {
	if m.roundSaved {
		return
	}
	m.roundSaved = true
	m.logger.Info("round over",
		"player", m.opts.Player,
		"difficulty", m.engine.Difficulty().ID,
		"score", ev.Score,
		"won", ev.Won,
	)
	if m.opts.Rounds == nil {
		return
	}
	_, err := m.opts.Rounds.SaveRound(storage.Round{
		Player:     m.opts.Player,
		Difficulty: string(m.engine.Difficulty().ID),
		Score:      ev.Score,
		Won:        ev.Won,
		Liberated:  ev.Liberated,
		Duration:   int(m.engine.Elapsed(now).Seconds()),
		CreatedAt:  now,
	})
	if err != nil {
		m.logger.Warn("could not save round", "error", err)
	}
}

func (m *Model) publish() {
	if m.engine == nil {
		return
	}
	m.lease.Publish(m.engine.Snapshot())
}

// frame assembles the renderer input.
func (m Model) frame() render.Frame {
	f := render.NewFrame(m.engine.Snapshot())
	for _, b := range m.bursts {
		f.Bursts = append(f.Bursts, b.pos)
	}
	f.Banner = m.banner
	if f.Banner == "" {
		f.Banner = m.notice
	}
	f.Leaderboard = m.opts.Scores.Leaderboard()
	f.Pulse = m.pulse
	return f
}

// saveScreenshot writes the current frame as a PNG and returns a notice.
func (m *Model) saveScreenshot(now time.Time) string {
	dir := m.opts.ScreenshotDir
	if dir == "" {
		return ""
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("could not create screenshot directory", "error", err)
		return "Screenshot failed"
	}

	name := fmt.Sprintf("nird_%s.png", now.Format("20060102_150405"))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		m.logger.Warn("could not save screenshot", "error", err)
		return "Screenshot failed"
	}
	defer f.Close()

	if err := m.png.Encode(f, m.frame()); err != nil {
		m.logger.Warn("could not encode screenshot", "error", err)
		return "Screenshot failed"
	}
	m.logger.Info("screenshot saved", "path", path)
	return "Saved " + name
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.board != nil {
		return m.board.View()
	}

	m.screen.Clear()
	switch m.mode {
	case modeDormant:
		m.drawDormant()
	case modeHint:
		m.screen.DrawTextCentered(m.screen.Bounds(), m.screen.Height()/2, "Code accepted. Liberating computers...", core.ColorBrightGreen)
	case modeGame:
		m.term.Draw(m.screen, m.frame())
	}
	return RenderScreen(m.screen)
}

func (m Model) drawDormant() {
	r := m.screen.Bounds()
	y := m.screen.Height()/2 - 1
	m.screen.DrawTextCentered(r, y, "NIRD", core.ColorGreen)
	m.screen.DrawTextCentered(r, y+1, "Numerique Inclusif, Responsable et Durable", core.ColorGray)

	// one dot per buffered key, no hint of which keys
	n := int(m.matcher.Progress()*float64(len(m.opts.Code)) + 0.5)
	if n > 0 {
		dots := make([]rune, n)
		for i := range dots {
			dots[i] = '.'
		}
		m.screen.DrawTextCentered(r, y+3, string(dots), core.ColorGray)
	}
}

// Dormant reports whether the game is closed.
func (m Model) Dormant() bool { return m.mode == modeDormant }

// Engine returns the running engine, nil while dormant.
func (m Model) Engine() *snake.Engine { return m.engine }

// Gen returns the current frame generation.
func (m Model) Gen() uint64 { return m.gen }

// Run starts a local Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
