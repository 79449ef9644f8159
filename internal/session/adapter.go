// Package session persists the player's record and top-five leaderboard.
//
// The adapter is format-agnostic: it talks to any KV and stores the high
// score as a decimal string and the leaderboard as a JSON array. A missing,
// failing or corrupt store reads as zero and empty; errors are logged and
// never reach the game.
package session

import (
	"encoding/json"
	"io"
	"slices"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
)

// Persisted keys.
const (
	KeyHighScore   = "highScore"
	KeyLeaderboard = "leaderboard"
)

// LeaderboardSize is the number of scores kept.
const LeaderboardSize = 5

// KV is a string key/value store.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Adapter reads and writes the persisted record.
// It is safe for concurrent use so SSH sessions can share one.
type Adapter struct {
	mu     sync.Mutex
	kv     KV
	logger *log.Logger
}

// NewAdapter returns an adapter over kv. A nil kv disables persistence.
func NewAdapter(kv KV, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Adapter{kv: kv, logger: logger}
}

// LoadHighScore returns the stored record, or 0.
func (a *Adapter) LoadHighScore() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.highScore()
}

// SaveHighScore stores n as the record.
func (a *Adapter) SaveHighScore(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.set(KeyHighScore, strconv.Itoa(n))
}

// Leaderboard returns the stored top scores, highest first.
func (a *Adapter) Leaderboard() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.leaderboard()
}

// RecordScore inserts a final score, keeps the best LeaderboardSize and
// returns the new board.
func (a *Adapter) RecordScore(score int) []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.record(score)
}

// Apply persists the effects of engine events: a new record on
// EventHighScore and the final score on EventGameOver.
func (a *Adapter) Apply(events []snake.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ev := range events {
		switch ev.Kind {
		case snake.EventHighScore:
			// another session may have set a higher record meanwhile
			if ev.Score > a.highScore() {
				a.set(KeyHighScore, strconv.Itoa(ev.Score))
			}
		case snake.EventGameOver:
			a.record(ev.Score)
		}
	}
}

func (a *Adapter) highScore() int {
	raw, ok := a.get(KeyHighScore)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		a.logger.Warn("ignoring malformed high score", "value", raw)
		return 0
	}
	return n
}

func (a *Adapter) leaderboard() []int {
	raw, ok := a.get(KeyLeaderboard)
	if !ok {
		return []int{}
	}
	var board []int
	if err := json.Unmarshal([]byte(raw), &board); err != nil {
		a.logger.Warn("ignoring malformed leaderboard", "error", err)
		return []int{}
	}
	return normalize(board)
}

func (a *Adapter) record(score int) []int {
	board := normalize(append(a.leaderboard(), score))
	data, err := json.Marshal(board)
	if err != nil {
		a.logger.Error("encode leaderboard", "error", err)
		return board
	}
	a.set(KeyLeaderboard, string(data))
	return board
}

// normalize sorts descending and truncates to LeaderboardSize.
func normalize(board []int) []int {
	if board == nil {
		board = []int{}
	}
	slices.SortFunc(board, func(x, y int) int { return y - x })
	if len(board) > LeaderboardSize {
		board = board[:LeaderboardSize]
	}
	return board
}

func (a *Adapter) get(key string) (string, bool) {
	if a.kv == nil {
		return "", false
	}
	v, ok, err := a.kv.Get(key)
	if err != nil {
		a.logger.Warn("read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (a *Adapter) set(key, value string) {
	if a.kv == nil {
		return
	}
	if err := a.kv.Set(key, value); err != nil {
		a.logger.Warn("write failed", "key", key, "error", err)
	}
}
