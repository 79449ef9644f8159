package core

// Action is a semantic intent derived from a raw key press.
type Action int

const (
	ActionNone       Action = iota
	ActionUp                // W, Up arrow
	ActionDown              // S, Down arrow
	ActionLeft              // A, Left arrow
	ActionRight             // D, Right arrow
	ActionRestart           // R - new round after game over
	ActionClose             // Escape - close the game window
	ActionQuit              // Q, Ctrl+C - exit the program
	ActionBeginner          // 1 - switch to beginner
	ActionExpert            // 2 - switch to expert
	ActionScreenshot        // Ctrl+S
	ActionLeaderboard       // Tab
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionRestart:
		return "Restart"
	case ActionClose:
		return "Close"
	case ActionQuit:
		return "Quit"
	case ActionBeginner:
		return "Beginner"
	case ActionExpert:
		return "Expert"
	case ActionScreenshot:
		return "Screenshot"
	case ActionLeaderboard:
		return "Leaderboard"
	default:
		return "Unknown"
	}
}

// IsDirection reports whether the action steers the snake.
func (a Action) IsDirection() bool {
	return a >= ActionUp && a <= ActionRight
}

// KeyEvent is one raw key press as seen by the game.
// Key keeps the original key identifier so that keys without an action
// can still feed the secret-sequence recognizer.
type KeyEvent struct {
	Key    string
	Action Action
	Escape bool
}

// Token returns the key identifier used by sequence recognition.
// Named keys ("up", "enter") are returned as-is; the recognizer normalizes case.
func (e KeyEvent) Token() string {
	return e.Key
}
