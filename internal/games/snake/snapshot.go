package snake

// Snapshot is a read-only copy of the engine state handed to renderers,
// persistence and spectators.
type Snapshot struct {
	Difficulty DifficultyID `json:"difficulty"`
	Grid       Grid         `json:"grid"`
	Snake      []Position   `json:"snake"` // head first
	Food       Position     `json:"food"`
	Direction  Direction    `json:"direction"`
	Movement   uint64       `json:"movement"`
	Phase      Phase        `json:"phase"`
	Countdown  int          `json:"countdown"`
	Won        bool         `json:"won"`
	Score      int          `json:"score"`
	HighScore  int          `json:"high_score"`
	Liberated  int          `json:"liberated"`
	Target     int          `json:"target"`
	Message    string       `json:"message,omitempty"`
}

// Snapshot returns the current state. The snake slice is copied.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Difficulty: e.diff.ID,
		Grid:       e.grid,
		Snake:      append([]Position(nil), e.snake...),
		Food:       e.food,
		Direction:  e.direction,
		Movement:   e.movement,
		Phase:      e.phase,
		Countdown:  e.countdown,
		Won:        e.Won(),
		Score:      e.score,
		HighScore:  e.highScore,
		Liberated:  e.liberated,
		Target:     e.diff.TargetScore,
		Message:    e.message,
	}
}

// Head returns the head cell of the snapshot, or the zero position when empty.
func (s Snapshot) Head() Position {
	if len(s.Snake) == 0 {
		return Position{}
	}
	return s.Snake[0]
}

// Over reports whether the round has ended.
func (s Snapshot) Over() bool {
	return s.Phase == PhaseOver
}
