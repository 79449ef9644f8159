// Package snake implements the NIRD snake simulation: a fixed-step engine
// driven by a variable-rate frame callback, with a rate-limited direction
// controller and a rejection-sampled food spawner.
//
// The engine is pure: it reads time only from the timestamps passed to Step
// and ProposeDirection, and reports side effects as events.
package snake

import (
	"errors"
	"math/rand"
	"time"
)

const (
	// CountdownSeconds is the pause before a round starts moving.
	CountdownSeconds = 3
	// PointsPerFood is added to the score for every item eaten.
	PointsPerFood = 10
	// MilestoneEvery is the score interval that triggers a milestone banner.
	MilestoneEvery = 50
)

// ErrRoundInProgress is returned by SetDifficulty while the snake is moving.
var ErrRoundInProgress = errors.New("snake: cannot change difficulty during a running round")

// Phase is the round state.
type Phase string

const (
	PhaseCountdown Phase = "countdown"
	PhaseRunning   Phase = "running"
	PhaseOver      Phase = "over"
)

// Engine owns one round of snake at a time.
// It is not safe for concurrent use; the host serializes input and frames.
type Engine struct {
	diff Difficulty
	grid Grid
	rng  *rand.Rand
	ctrl *Controller

	snake     []Position // head first
	food      Position
	direction Direction
	movement  uint64

	score     int
	highScore int
	liberated int
	message   string

	phase     Phase
	countdown int
	won       bool

	started    bool
	roundStart time.Time
	stepped    bool
	lastStep   time.Time
	endedAt    time.Time
}

// New creates an engine for difficulty d in the countdown phase.
// highScore is the persisted record carried across rounds.
func New(d Difficulty, highScore int, seed int64) *Engine {
	e := &Engine{
		diff:      d,
		grid:      d.Grid(),
		rng:       rand.New(rand.NewSource(seed)),
		ctrl:      NewController(DirRight),
		highScore: highScore,
	}
	e.Reset()
	return e
}

// Reset starts a new round on the current difficulty.
// The high score survives; everything else goes back to its initial value.
func (e *Engine) Reset() {
	e.snake = []Position{e.grid.Center()}
	e.direction = DirRight
	e.ctrl.Reset(DirRight)
	e.score = 0
	e.liberated = 0
	e.message = ""
	e.phase = PhaseCountdown
	e.countdown = CountdownSeconds
	e.won = false
	e.started = false
	e.roundStart = time.Time{}
	e.stepped = false
	e.lastStep = time.Time{}
	e.endedAt = time.Time{}

	if food, ok := e.grid.PlaceFood(e.snake, e.rng); ok {
		e.food = food
	}
}

// SetDifficulty switches presets and restarts the round on the new grid.
// It fails with ErrRoundInProgress while the round is running.
func (e *Engine) SetDifficulty(d Difficulty) error {
	if e.phase == PhaseRunning {
		return ErrRoundInProgress
	}
	e.diff = d
	e.grid = d.Grid()
	e.Reset()
	return nil
}

// SetHighScore raises the record if n beats it.
// Hosts sharing one leaderboard use it to pick up other sessions' records.
func (e *Engine) SetHighScore(n int) {
	if n > e.highScore {
		e.highScore = n
	}
}

// ProposeDirection forwards a turn request to the controller.
// It is checked against the committed direction, not the pending one.
func (e *Engine) ProposeDirection(d Direction, now time.Time) bool {
	if e.phase == PhaseOver {
		return false
	}
	return e.ctrl.Propose(d, e.direction, now, e.diff.StepInterval)
}

// Step is the frame callback. It advances the countdown and runs at most one
// simulation step; missed steps are never caught up.
func (e *Engine) Step(now time.Time) StepResult {
	var res StepResult
	if e.phase == PhaseOver {
		return res
	}

	if !e.started {
		e.started = true
		e.roundStart = now
	}

	if e.phase == PhaseCountdown {
		remaining := max(0, CountdownSeconds-int(now.Sub(e.roundStart)/time.Second))
		if remaining != e.countdown {
			e.countdown = remaining
			res.Events = append(res.Events, Event{Kind: EventCountdown, Countdown: remaining})
		}
		if remaining > 0 {
			return res
		}
		e.phase = PhaseRunning
	}

	if e.stepped && now.Sub(e.lastStep) < e.diff.StepInterval {
		return res
	}
	e.stepped = true
	e.lastStep = now
	res.Moved = true
	e.advance(now, &res)
	return res
}

func (e *Engine) advance(now time.Time, res *StepResult) {
	e.movement++

	dir := e.ctrl.Pending()
	head := e.snake[0].Add(dir.Delta())

	if !e.grid.InBounds(head) || Occupies(e.snake, head) {
		e.finish(false, now, res)
		return
	}

	e.direction = dir
	grown := make([]Position, 0, len(e.snake)+1)
	grown = append(grown, head)
	grown = append(grown, e.snake...)

	if head != e.food {
		e.snake = grown[:len(grown)-1]
		return
	}
	e.snake = grown

	e.score += PointsPerFood
	e.liberated++
	if e.score > e.highScore {
		e.highScore = e.score
		res.Events = append(res.Events, Event{Kind: EventHighScore, Score: e.score})
	}
	res.Events = append(res.Events, Event{Kind: EventFoodEaten, Score: e.score, Position: head})

	food, placed := e.grid.PlaceFood(e.snake, e.rng)
	if placed {
		e.food = food
	}

	if e.score%MilestoneEvery == 0 {
		e.message = milestoneMessages[e.rng.Intn(len(milestoneMessages))]
		res.Events = append(res.Events, Event{Kind: EventMilestone, Score: e.score, Message: e.message})
	}

	if !placed || e.score >= e.diff.TargetScore {
		e.finish(true, now, res)
	}
}

func (e *Engine) finish(won bool, now time.Time, res *StepResult) {
	e.phase = PhaseOver
	e.won = won
	e.endedAt = now
	res.Events = append(res.Events, Event{
		Kind:      EventGameOver,
		Score:     e.score,
		Won:       won,
		Liberated: e.liberated,
	})
}

// Phase returns the current round phase.
func (e *Engine) Phase() Phase { return e.phase }

// Won reports whether a finished round reached the target.
func (e *Engine) Won() bool { return e.phase == PhaseOver && e.won }

// Score returns the current round score.
func (e *Engine) Score() int { return e.score }

// HighScore returns the best score seen by this engine.
func (e *Engine) HighScore() int { return e.highScore }

// Difficulty returns the active preset.
func (e *Engine) Difficulty() Difficulty { return e.diff }

// Head returns the head cell.
func (e *Engine) Head() Position { return e.snake[0] }

// Len returns the snake length.
func (e *Engine) Len() int { return len(e.snake) }

// Food returns the food cell.
func (e *Engine) Food() Position { return e.food }

// Direction returns the committed direction.
func (e *Engine) Direction() Direction { return e.direction }

// Pending returns the direction the next step will take.
func (e *Engine) Pending() Direction { return e.ctrl.Pending() }

// Elapsed returns the time since the round clock started, frozen at the
// end of the round. It is zero before the first frame.
func (e *Engine) Elapsed(now time.Time) time.Duration {
	if !e.started {
		return 0
	}
	if e.phase == PhaseOver {
		return e.endedAt.Sub(e.roundStart)
	}
	return now.Sub(e.roundStart)
}
