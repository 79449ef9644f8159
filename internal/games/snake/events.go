package snake

// EventKind identifies an engine event.
type EventKind string

const (
	EventCountdown EventKind = "countdown"
	EventFoodEaten EventKind = "food_eaten"
	EventHighScore EventKind = "high_score"
	EventMilestone EventKind = "milestone"
	EventGameOver  EventKind = "game_over"
)

// Event is emitted by Step for the host to react to: persistence, banners,
// particles and metrics. The engine itself performs no I/O.
type Event struct {
	Kind      EventKind `json:"kind"`
	Countdown int       `json:"countdown,omitempty"` // EventCountdown
	Score     int       `json:"score,omitempty"`     // FoodEaten, HighScore, Milestone, GameOver
	Position  Position  `json:"position"`            // FoodEaten: cell that was eaten
	Message   string    `json:"message,omitempty"`   // EventMilestone
	Won       bool      `json:"won,omitempty"`       // EventGameOver
	Liberated int       `json:"liberated,omitempty"` // EventGameOver
}

// StepResult reports what a single frame callback did.
type StepResult struct {
	Moved  bool
	Events []Event
}

// Has reports whether an event of kind k was emitted.
func (r StepResult) Has(k EventKind) bool {
	for _, e := range r.Events {
		if e.Kind == k {
			return true
		}
	}
	return false
}
