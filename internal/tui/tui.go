// Package tui is a terminal host for a single casino session.
//
// The model never decides outcomes. Every command settles through the session
// first, then the dealer's turn or the spinning reels are replayed on the stage
// with tea.Tick. Any submitted command fast-forwards a running replay to its
// final frame before it is executed.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/casino/internal/config"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/session"
)

// Model is the Bubble Tea model for the casino
type Model struct {
	session *session.Session
	cfg     *config.Config
	frames  randutil.Source
	logger  *log.Logger

	// UI components
	logViewport viewport.Model
	input       textinput.Model

	// State
	gameLog     []string
	stage       []string // what the table or machine currently shows
	machine     string   // selected slot machine
	anim        *animation
	animSeq     int
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// animation is a replay of pre-rendered stage frames
type animation struct {
	id       int
	frames   [][]string
	interval time.Duration
	next     int
	after    []string // log lines added once the last frame is shown
}

// frameMsg advances the animation with the matching id
type frameMsg struct {
	id int
}

// Option configures a Model
type Option func(*Model)

// WithTestMode captures log entries and skips viewport updates
func WithTestMode() Option {
	return func(m *Model) {
		m.testMode = true
	}
}

// WithFrameSource sets the source used for spin animation frames
func WithFrameSource(src randutil.Source) Option {
	return func(m *Model) {
		m.frames = src
	}
}

// NewModel creates a model playing sess with the pacing and catalogue of cfg
func NewModel(sess *session.Session, cfg *config.Config, logger *log.Logger, opts ...Option) *Model {
	if sess == nil {
		panic("tui: nil session")
	}
	if cfg == nil {
		cfg = config.Default()
	}

	// Sized properly when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "deal, hit, stand, spin, help"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &Model{
		session:     sess,
		cfg:         cfg,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		focusedPane: 1,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.frames == nil {
		m.frames = randutil.New(randutil.NewSeed())
	}
	if machines := sess.Machines(); len(machines) > 0 {
		m.machine = machines[0].ID
	}

	m.AddLogEntry(HeaderStyle.Render("Welcome to the casino"))
	m.AddLogEntry(fmt.Sprintf("Balance $%d. Type 'help' for commands.", sess.Balance()))
	m.stage = tableStage(sess.Round().View())
	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case frameMsg:
		return m, m.advance(msg.id)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.input.Focus()
			} else {
				m.focusedPane = 0
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := m.input.Value()
				m.input.SetValue("")
				cmds = append(cmds, m.Submit(line))
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit runs one command line, first finishing any running animation
func (m *Model) Submit(line string) tea.Cmd {
	m.finishAnimation()

	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	m.AddLogEntry(InfoStyle.Render("> " + line))

	fields := strings.Fields(strings.ToLower(line))
	return m.execute(fields[0], fields[1:])
}

// animate starts replaying frames and returns the tick for the second one
func (m *Model) animate(frames [][]string, interval time.Duration, after ...string) tea.Cmd {
	m.finishAnimation()
	if len(frames) == 0 {
		m.AddLogEntries(after...)
		return nil
	}

	m.animSeq++
	m.anim = &animation{id: m.animSeq, frames: frames, interval: interval, after: after}
	return m.advance(m.animSeq)
}

// advance shows the next frame of the animation with the given id. Ticks
// from a finished or replaced animation are dropped.
func (m *Model) advance(id int) tea.Cmd {
	a := m.anim
	if a == nil || a.id != id {
		return nil
	}

	m.stage = a.frames[a.next]
	a.next++
	if a.next >= len(a.frames) {
		m.anim = nil
		m.AddLogEntries(a.after...)
		return nil
	}
	if a.interval <= 0 {
		return m.advance(id)
	}
	return tea.Tick(a.interval, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

// finishAnimation jumps the running animation to its final frame
func (m *Model) finishAnimation() {
	a := m.anim
	if a == nil {
		return
	}
	m.anim = nil
	m.stage = a.frames[len(a.frames)-1]
	m.AddLogEntries(a.after...)
}

// Animating reports whether a replay is in progress
func (m *Model) Animating() bool {
	return m.anim != nil
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	actionPane := actionStyle.Render(actionContent)
	paneHeight := lipgloss.Height(actionPane)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	topHeight := max(m.height-paneHeight-2, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(topHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = topHeight

	// On first proper sizing, show the latest entries
	if !m.initialized && logWidth > 1 && topHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(topHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the wallet, stakes and running totals
func (m *Model) renderSidebarPane() string {
	var b strings.Builder
	snap := m.session.Snapshot()

	b.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: $%d", snap.Balance)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Blackjack stake: $%d\n", snap.Stake))
	if spec, err := m.session.Machine(m.machine); err == nil {
		b.WriteString(fmt.Sprintf("Machine: %s\n", spec.Title))
		b.WriteString(InfoStyle.Render(fmt.Sprintf("  $%d-$%d, top $%d", spec.Limits.Min, spec.Limits.Max, spec.TopPrize)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	c := snap.Counters
	b.WriteString(InfoStyle.Render("Blackjack"))
	b.WriteString(fmt.Sprintf("\n  W %d  L %d  P %d\n", c.Wins, c.Losses, c.Pushes))
	b.WriteString(InfoStyle.Render("Slots"))
	b.WriteString(fmt.Sprintf("\n  Spins %d  Jackpots %d\n  Won $%d\n", c.Spins, c.Jackpots, c.SlotWinnings))
	return b.String()
}

// renderActionPane shows the stage above the command input
func (m *Model) renderActionPane() string {
	var b strings.Builder
	for _, line := range m.stage {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(HelpStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		b.WriteString(HelpStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// AddLogEntries adds several entries in order
func (m *Model) AddLogEntries(entries ...string) {
	for _, e := range entries {
		m.AddLogEntry(e)
	}
}

// ClearLog clears the game log
func (m *Model) ClearLog() {
	m.gameLog = nil
	m.logViewport.SetContent("")
}

// Stage returns the lines currently shown on the stage
func (m *Model) Stage() []string {
	out := make([]string, len(m.stage))
	copy(out, m.stage)
	return out
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the model is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}
