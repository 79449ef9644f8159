package snake

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownDifficulty is returned when a difficulty name is not recognized.
var ErrUnknownDifficulty = errors.New("snake: unknown difficulty")

// DifficultyID names a preset.
type DifficultyID string

const (
	Beginner DifficultyID = "beginner"
	Expert   DifficultyID = "expert"
)

// Difficulty is a static preset: grid size, step interval and the score
// that wins the round.
type Difficulty struct {
	ID           DifficultyID  `json:"id"`
	Title        string        `json:"title"`
	Cols         int           `json:"cols"`
	Rows         int           `json:"rows"`
	StepInterval time.Duration `json:"step_interval"`
	TargetScore  int           `json:"target_score"`
}

// Grid returns the playfield for this preset.
func (d Difficulty) Grid() Grid {
	return Grid{Cols: d.Cols, Rows: d.Rows}
}

// FoodToWin returns how many items must be eaten to reach the target.
func (d Difficulty) FoodToWin() int {
	return (d.TargetScore + PointsPerFood - 1) / PointsPerFood
}

var difficulties = []Difficulty{
	{
		ID:           Beginner,
		Title:        "Beginner",
		Cols:         20,
		Rows:         20,
		StepInterval: 200 * time.Millisecond,
		TargetScore:  200,
	},
	{
		ID:           Expert,
		Title:        "Expert",
		Cols:         15,
		Rows:         15,
		StepInterval: 120 * time.Millisecond,
		TargetScore:  400,
	},
}

// Difficulties returns all presets in display order.
func Difficulties() []Difficulty {
	out := make([]Difficulty, len(difficulties))
	copy(out, difficulties)
	return out
}

// LookupDifficulty returns the preset with the given id.
// Matching is case-insensitive; "debutant" and "débutant" are accepted for Beginner.
func LookupDifficulty(id string) (Difficulty, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	switch key {
	case "debutant", "débutant", "1":
		key = string(Beginner)
	case "2":
		key = string(Expert)
	}
	for _, d := range difficulties {
		if string(d.ID) == key {
			return d, nil
		}
	}
	return Difficulty{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, id)
}

// MustDifficulty is LookupDifficulty for the built-in ids.
func MustDifficulty(id DifficultyID) Difficulty {
	d, err := LookupDifficulty(string(id))
	if err != nil {
		panic(err)
	}
	return d
}
