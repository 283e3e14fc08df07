package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keyward/keyward/internal/gate"
)

// FeedEvent is one item from the decision feed: a decision, or the
// terminal error that ended the stream.
type FeedEvent struct {
	Decision gate.Decision
	Err      error
}

// maxTailLines is how many decisions the model retains for redraw.
const maxTailLines = 200

// Messages for async feed delivery
type decisionMsg gate.Decision
type feedClosedMsg struct{ err error }

// tailKeyMap defines key bindings for the feed view
type tailKeyMap struct {
	Clear key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k tailKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k tailKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Clear, k.Quit}}
}

var tailKeys = tailKeyMap{
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// TailModel is the interactive live view of a gate's decision feed.
type TailModel struct {
	addr      string
	feed      <-chan FeedEvent
	spinner   spinner.Model
	help      help.Model
	keys      tailKeyMap
	decisions []gate.Decision
	closed    bool
	err       error
	width     int
	height    int
}

// NewTailModel returns a model streaming from feed. addr is shown in
// the header so the operator knows which gate they are watching.
func NewTailModel(addr string, feed <-chan FeedEvent) TailModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	width, height := GetTerminalSize()
	return TailModel{
		addr:    addr,
		feed:    feed,
		spinner: sp,
		help:    help.New(),
		keys:    tailKeys,
		width:   width,
		height:  height,
	}
}

// Err returns the error that ended the feed, if any. The command layer
// reports it after the program exits.
func (m TailModel) Err() error {
	return m.err
}

// waitForFeed blocks on the next feed event and turns it into a message.
func waitForFeed(feed <-chan FeedEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-feed
		if !ok {
			return feedClosedMsg{}
		}
		if ev.Err != nil {
			return feedClosedMsg{err: ev.Err}
		}
		return decisionMsg(ev.Decision)
	}
}

// Init implements tea.Model
func (m TailModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForFeed(m.feed))
}

// Update implements tea.Model
func (m TailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.decisions = nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case decisionMsg:
		m.decisions = append(m.decisions, gate.Decision(msg))
		if len(m.decisions) > maxTailLines {
			m.decisions = m.decisions[len(m.decisions)-maxTailLines:]
		}
		return m, waitForFeed(m.feed)

	case feedClosedMsg:
		m.closed = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m TailModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("keyward feed"))
	b.WriteString("  ")
	b.WriteString(MutedStyle.Render(m.addr))
	b.WriteString("\n\n")

	visible := m.visibleDecisions()
	if len(visible) == 0 {
		b.WriteString(MutedStyle.Render("no tokens presented yet"))
		b.WriteString("\n")
	}
	for _, d := range visible {
		b.WriteString(formatDecisionStyled(d))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.closed {
		b.WriteString(DenyStyle.Render("feed closed"))
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(MutedStyle.Render(" watching for tokens"))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// visibleDecisions trims the backlog to what fits the terminal,
// keeping the most recent entries.
func (m TailModel) visibleDecisions() []gate.Decision {
	// Header, blank lines, status line, and help take six rows.
	max := m.height - 6
	if max < 1 {
		max = 1
	}
	if len(m.decisions) <= max {
		return m.decisions
	}
	return m.decisions[len(m.decisions)-max:]
}
