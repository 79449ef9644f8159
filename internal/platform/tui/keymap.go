package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/nird-snake/internal/core"
)

// KeyMapper translates Bubble Tea key messages to key events.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message. Keys without a binding still carry their
// identifier so the secret matcher can see them.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) core.KeyEvent {
	key := msg.String()
	ev := core.KeyEvent{Key: key}

	switch key {
	case "ctrl+c", "q":
		ev.Action = core.ActionQuit
	case "esc":
		ev.Action = core.ActionClose
		ev.Escape = true
	case "w", "W", "up":
		ev.Action = core.ActionUp
	case "s", "S", "down":
		ev.Action = core.ActionDown
	case "a", "A", "left":
		ev.Action = core.ActionLeft
	case "d", "D", "right":
		ev.Action = core.ActionRight
	case "r", "R":
		ev.Action = core.ActionRestart
	case "1":
		ev.Action = core.ActionBeginner
	case "2":
		ev.Action = core.ActionExpert
	case "ctrl+s":
		ev.Action = core.ActionScreenshot
	case "tab":
		ev.Action = core.ActionLeaderboard
	}

	return ev
}
