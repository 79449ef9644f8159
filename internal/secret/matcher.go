// Package secret recognizes a fixed key sequence in a live stream of key
// tokens. The host uses it to keep the game dormant until the activation
// code has been typed.
package secret

import "strings"

// DefaultCode is the activation sequence: U P U P D O W N.
var DefaultCode = []string{"U", "P", "U", "P", "D", "O", "W", "N"}

// Matcher keeps a rolling window of the most recent tokens and compares it
// against the target after every observation.
// It is not safe for concurrent use; each session owns its own matcher.
type Matcher struct {
	target  []string
	window  []string
	onMatch func()
}

// NewMatcher returns a matcher for target. onMatch may be nil.
// Target tokens are normalized the same way observed tokens are.
func NewMatcher(target []string, onMatch func()) *Matcher {
	t := make([]string, len(target))
	for i, tok := range target {
		t[i] = normalize(tok)
	}
	return &Matcher{
		target:  t,
		window:  make([]string, 0, len(t)),
		onMatch: onMatch,
	}
}

func normalize(token string) string {
	return strings.ToUpper(token)
}

// Observe feeds one token. It reports whether the window now equals the
// target; on a match the window is cleared and onMatch runs once.
func (m *Matcher) Observe(token string) bool {
	if len(m.target) == 0 {
		return false
	}

	m.window = append(m.window, normalize(token))
	if over := len(m.window) - len(m.target); over > 0 {
		// shift in place to keep the backing array bounded
		n := copy(m.window, m.window[over:])
		m.window = m.window[:n]
	}

	if !m.matches() {
		return false
	}

	m.window = m.window[:0]
	if m.onMatch != nil {
		m.onMatch()
	}
	return true
}

func (m *Matcher) matches() bool {
	if len(m.window) != len(m.target) {
		return false
	}
	for i := range m.target {
		if m.window[i] != m.target[i] {
			return false
		}
	}
	return true
}

// Progress returns the filled fraction of the window, in [0, 1].
func (m *Matcher) Progress() float64 {
	if len(m.target) == 0 {
		return 0
	}
	return float64(len(m.window)) / float64(len(m.target))
}

// Window returns a copy of the buffered tokens, oldest first.
func (m *Matcher) Window() []string {
	return append([]string(nil), m.window...)
}

// Reset drops any buffered tokens.
func (m *Matcher) Reset() {
	m.window = m.window[:0]
}
