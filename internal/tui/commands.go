package tui

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/casino/internal/blackjack"
	"github.com/lox/casino/internal/ledger"
	"github.com/lox/casino/internal/session"
	"github.com/lox/casino/internal/slots"
)

var helpLines = []string{
	"Blackjack:",
	"  deal [stake]     start a round (stake defaults to the table stake)",
	"  hit, stand       play your hand",
	"  new              clear the table for the next round",
	"  stake <n>|+|-    set or step the table stake",
	"Slots:",
	"  machines         list the machines",
	"  machine <id>     pick a machine",
	"  spin [stake]     spin the selected machine",
	"Wallet:",
	"  deposit <n>      add funds",
	"  history          recent rounds",
	"  quit             leave the casino",
}

// execute runs a parsed command
func (m *Model) execute(name string, args []string) tea.Cmd {
	m.logger.Debug("Command", "name", name, "args", args)

	switch name {
	case "deal", "d":
		return m.deal(args)
	case "hit", "h":
		return m.hit()
	case "stand", "s":
		return m.stand()
	case "new", "n":
		return m.newRound()
	case "stake":
		return m.stake(args)
	case "spin":
		return m.spin(args)
	case "machines":
		return m.listMachines()
	case "machine", "m":
		return m.selectMachine(args)
	case "deposit":
		return m.deposit(args)
	case "history":
		return m.history()
	case "help", "?":
		m.AddLogEntries(helpLines...)
		return nil
	case "quit", "exit", "q":
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	}
	m.logError(fmt.Errorf("unknown command %q, try 'help'", name))
	return nil
}

func (m *Model) deal(args []string) tea.Cmd {
	if m.session.Round().Phase == blackjack.Ended {
		if _, err := m.session.NewRound(); err != nil {
			m.logError(err)
			return nil
		}
	}

	stake := m.session.Stake()
	if len(args) > 0 {
		n, err := parseAmount(args[0])
		if err != nil {
			m.logError(err)
			return nil
		}
		stake = n
	}

	r, err := m.session.Deal(stake)
	if err != nil {
		m.logError(err)
		return nil
	}

	v := r.View()
	m.stage = tableStage(v)
	m.AddLogEntry(fmt.Sprintf("Dealt $%d: you %s, dealer shows %s",
		stake, blackjack.CardsString(v.Player), v.Dealer[0]))
	if v.Phase == blackjack.Ended {
		m.AddLogEntry(settledLine(v, m.session.Balance()))
	}
	return nil
}

func (m *Model) hit() tea.Cmd {
	r, err := m.session.Hit()
	if err != nil {
		m.logError(err)
		return nil
	}

	v := r.View()
	m.stage = tableStage(v)
	m.AddLogEntry(fmt.Sprintf("You draw %s (%d)", v.Player[len(v.Player)-1], v.PlayerScore))
	if v.Phase == blackjack.Ended {
		m.AddLogEntry(settledLine(v, m.session.Balance()))
	}
	return nil
}

func (m *Model) stand() tea.Cmd {
	r, err := m.session.Stand()
	if err != nil {
		m.logError(err)
		return nil
	}

	views := r.DealerFrames()
	frames := make([][]string, len(views))
	for i, v := range views {
		frames[i] = tableStage(v)
	}
	final := views[len(views)-1]
	return m.animate(frames, m.cfg.DealerDelay(),
		fmt.Sprintf("Dealer: %s (%d)", blackjack.CardsString(final.Dealer), final.DealerScore),
		settledLine(final, m.session.Balance()))
}

func (m *Model) newRound() tea.Cmd {
	r, err := m.session.NewRound()
	if err != nil {
		m.logError(err)
		return nil
	}
	m.stage = tableStage(r.View())
	m.AddLogEntry(fmt.Sprintf("New round. Stake $%d", m.session.Stake()))
	return nil
}

func (m *Model) stake(args []string) tea.Cmd {
	if len(args) == 0 {
		l := m.session.Limits()
		m.AddLogEntry(fmt.Sprintf("Stake $%d (limits $%d-$%d, step $%d, presets %v)",
			m.session.Stake(), l.Min, l.Max, l.Step, l.Presets))
		return nil
	}
	if m.session.Round().Phase == blackjack.Ended {
		if _, err := m.session.NewRound(); err != nil {
			m.logError(err)
			return nil
		}
	}

	var err error
	switch args[0] {
	case "+":
		_, err = m.session.AdjustStake(1)
	case "-":
		_, err = m.session.AdjustStake(-1)
	default:
		var n int
		if n, err = parseAmount(args[0]); err == nil {
			err = m.session.SetStake(n)
		}
	}
	if err != nil {
		m.logError(err)
		return nil
	}

	m.stage = tableStage(m.session.Round().View())
	m.AddLogEntry(fmt.Sprintf("Stake set to $%d", m.session.Stake()))
	return nil
}

func (m *Model) spin(args []string) tea.Cmd {
	spec, err := m.session.Machine(m.machine)
	if err != nil {
		m.logError(err)
		return nil
	}

	stake := spec.Limits.Default
	if len(args) > 0 {
		if stake, err = parseAmount(args[0]); err != nil {
			m.logError(err)
			return nil
		}
	}

	res, err := m.session.Spin(spec.ID, stake)
	if err != nil {
		m.logError(err)
		return nil
	}

	count, interval := 1, time.Duration(0)
	if mc, ok := m.cfg.Machine(spec.ID); ok {
		count, interval = max(mc.FrameCount(), 1), mc.FrameInterval()
	}
	reels := slots.Frames(m.frames, spec.PayTable, count)
	reels[len(reels)-1] = res.Reels

	frames := make([][]string, len(reels))
	for i, r := range reels {
		frames[i] = reelsStage(spec.Title, r, InfoStyle.Render("Spinning..."))
	}
	frames[len(frames)-1] = reelsStage(spec.Title, res.Reels, res.Message())

	return m.animate(frames, interval, spinLine(res, m.session.Balance()))
}

func (m *Model) listMachines() tea.Cmd {
	for _, spec := range m.session.Machines() {
		marker := "  "
		if spec.ID == m.machine {
			marker = "* "
		}
		hot := ""
		if spec.Hot {
			hot = WarningStyle.Render(" HOT")
		}
		m.AddLogEntry(fmt.Sprintf("%s%-15s %-15s $%d-$%d  top $%d%s",
			marker, spec.ID, spec.Title, spec.Limits.Min, spec.Limits.Max, spec.TopPrize, hot))
	}
	return nil
}

func (m *Model) selectMachine(args []string) tea.Cmd {
	if len(args) == 0 {
		return m.listMachines()
	}

	spec, err := m.session.Machine(args[0])
	if err != nil {
		m.logError(err)
		return nil
	}
	m.machine = spec.ID
	m.stage = reelsStage(spec.Title, slots.Frames(m.frames, spec.PayTable, 1)[0],
		fmt.Sprintf("Stake $%d-$%d", spec.Limits.Min, spec.Limits.Max))
	m.AddLogEntry(fmt.Sprintf("Now playing %s", spec.Title))
	return nil
}

func (m *Model) deposit(args []string) tea.Cmd {
	if len(args) == 0 {
		m.logError(errors.New("usage: deposit <amount>"))
		return nil
	}
	n, err := parseAmount(args[0])
	if err == nil {
		err = m.session.Deposit(n)
	}
	if err != nil {
		m.logError(err)
		return nil
	}
	m.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("Deposited $%d, balance $%d", n, m.session.Balance())))
	return nil
}

func (m *Model) history() tea.Cmd {
	records := m.session.History()
	if len(records) == 0 {
		m.AddLogEntry(InfoStyle.Render("No rounds played yet"))
		return nil
	}
	for _, r := range records {
		m.AddLogEntry(historyLine(r))
	}
	return nil
}

// logError writes a player-facing error line
func (m *Model) logError(err error) {
	m.logger.Debug("Command failed", "error", err)
	m.AddLogEntry(ErrorStyle.Render(describeError(err)))
}

// describeError maps engine errors to short messages
func describeError(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(err, session.ErrStakeOutOfRange):
		return fmt.Sprintf("Stake out of range: %v", err)
	case errors.Is(err, blackjack.ErrInvalidTransition):
		return fmt.Sprintf("Not now: %v", err)
	case errors.Is(err, session.ErrUnknownMachine):
		return fmt.Sprintf("Unknown machine: %v", err)
	}
	return err.Error()
}

func parseAmount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}
