package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
	"github.com/vovakirdan/nird-snake/internal/storage"
)

const maxRounds = 50

// LeaderboardKeyMap defines the key bindings for the leaderboard screen.
type LeaderboardKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Next key.Binding
	Prev key.Binding
	Back key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k LeaderboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Prev, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k LeaderboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Next, k.Prev},
		{k.Back, k.Quit},
	}
}

// DefaultLeaderboardKeyMap returns default key bindings.
func DefaultLeaderboardKeyMap() LeaderboardKeyMap {
	return LeaderboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "next level"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "prev level"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "tab"),
			key.WithHelp("esc/tab", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// filter is one tab of the round history: all levels, then each preset.
type filter struct {
	id    string
	title string
}

func filters() []filter {
	out := []filter{{"", "All"}}
	for _, d := range snake.Difficulties() {
		out = append(out, filter{string(d.ID), d.Title})
	}
	return out
}

// LeaderboardModel shows the stored top five and the round history.
type LeaderboardModel struct {
	top     []int
	rounds  Rounds
	list    []storage.Round
	filters []filter
	cursor  int
	table   table.Model
	help    help.Model
	keys    LeaderboardKeyMap
	width   int
	height  int
	err     error
}

// NewLeaderboardModel builds the view. rounds may be nil.
func NewLeaderboardModel(top []int, rounds Rounds, width, height int) LeaderboardModel {
	h := help.New()
	h.Width = width
	m := LeaderboardModel{
		top:     top,
		rounds:  rounds,
		filters: filters(),
		keys:    DefaultLeaderboardKeyMap(),
		help:    h,
		width:   width,
		height:  height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *LeaderboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Score", Width: 8},
		{Title: "Freed", Width: 6},
		{Title: "Level", Width: 10},
		{Title: "Player", Width: 12},
		{Title: "Date", Width: 14},
	}

	height := m.height - 12
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("22")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *LeaderboardModel) load() {
	m.list, m.err = nil, nil
	if m.rounds != nil {
		m.list, m.err = m.rounds.TopRounds(m.filters[m.cursor].id, maxRounds)
	}

	rows := make([]table.Row, len(m.list))
	for i, r := range m.list {
		player := r.Player
		if player == "" {
			player = "-"
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.Liberated),
			r.Difficulty,
			player,
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Update handles navigation. The second result is true when the user asked
// to leave the screen.
func (m LeaderboardModel) Update(msg tea.Msg) (LeaderboardModel, bool, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, true, nil
		case key.Matches(msg, m.keys.Next):
			m.cursor = (m.cursor + 1) % len(m.filters)
			m.load()
			return m, false, nil
		case key.Matches(msg, m.keys.Prev):
			m.cursor = (m.cursor + len(m.filters) - 1) % len(m.filters)
			m.load()
			return m, false, nil
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table = m.createTable()
		m.load()
		return m, false, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, false, cmd
}

// Filter returns the difficulty id of the current tab, "" for all.
func (m LeaderboardModel) Filter() string {
	return m.filters[m.cursor].id
}

// View renders the screen.
func (m LeaderboardModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("10"))
	b.WriteString(titleStyle.Render("LIBERATED COMPUTERS - HALL OF FAME"))
	b.WriteString("\n\n")

	b.WriteString(m.renderTop())
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(boxStyle.Render(m.renderTableContent()))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m LeaderboardModel) renderTop() string {
	if len(m.top) == 0 {
		return "Top 5: no scores yet"
	}
	parts := make([]string, len(m.top))
	for i, s := range m.top {
		parts[i] = fmt.Sprintf("%d. %d", i+1, s)
	}
	return "Top 5: " + strings.Join(parts, "   ")
}

func (m LeaderboardModel) renderTabs() string {
	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	activeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("22")).
		Padding(0, 1)

	tabs := make([]string, len(m.filters))
	for i, f := range m.filters {
		if i == m.cursor {
			tabs[i] = activeStyle.Render(f.title)
		} else {
			tabs[i] = tabStyle.Render(f.title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m LeaderboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(1, 4)
	switch {
	case m.rounds == nil:
		return emptyStyle.Render("Round history is disabled.")
	case m.err != nil:
		return emptyStyle.Render("Could not load rounds.")
	case len(m.list) == 0:
		return emptyStyle.Render("No rounds recorded yet.\nLiberate some computers!")
	}
	return m.table.View()
}
