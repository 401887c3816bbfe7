package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/casino/internal/blackjack"
	"github.com/lox/casino/internal/session"
	"github.com/lox/casino/internal/slots"
)

// formatCards formats cards with colors
func formatCards(cs []blackjack.CardView) string {
	if len(cs) == 0 {
		return InfoStyle.Render("--")
	}

	formatted := make([]string, len(cs))
	for i, c := range cs {
		switch {
		case c.Hidden:
			formatted[i] = HiddenCardStyle.Render(c.String())
		case c.Red:
			formatted[i] = RedCardStyle.Render(c.String())
		default:
			formatted[i] = BlackCardStyle.Render(c.String())
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// tableStage renders a blackjack view as stage lines
func tableStage(v blackjack.View) []string {
	if v.Phase == blackjack.Betting {
		return []string{
			StageStyle.Render("Blackjack"),
			fmt.Sprintf("%s  Stake $%d", v.Message, v.Stake),
		}
	}
	return []string{
		fmt.Sprintf("Dealer: %s (%d)", formatCards(v.Dealer), v.DealerScore),
		fmt.Sprintf("You:    %s (%d)", formatCards(v.Player), v.PlayerScore),
		messageStyle(v).Render(string(v.Message)),
	}
}

// messageStyle colours the status line by outcome
func messageStyle(v blackjack.View) lipgloss.Style {
	if v.Phase != blackjack.Ended {
		return StageStyle
	}
	switch {
	case v.Outcome.IsWin():
		return SuccessStyle
	case v.Outcome.IsLoss():
		return ErrorStyle
	}
	return WarningStyle
}

// reelsStage renders reels as stage lines
func reelsStage(title string, reels slots.Reels, status string) []string {
	return []string{
		StageStyle.Render(title),
		fmt.Sprintf("[ %s | %s | %s ]", reels[0], reels[1], reels[2]),
		status,
	}
}

// settledLine summarises a finished blackjack round for the log
func settledLine(v blackjack.View, balance int) string {
	line := fmt.Sprintf("%s  You %d, dealer %d. Paid $%d, balance $%d",
		v.Message, v.PlayerScore, v.DealerScore, v.Payout, balance)
	return messageStyle(v).Render(line)
}

// spinLine summarises a spin for the log
func spinLine(res slots.Result, balance int) string {
	line := fmt.Sprintf("%s  %s  Paid $%d, balance $%d", res.Reels, res.Message(), res.Payout, balance)
	switch res.Kind {
	case slots.Jackpot:
		return JackpotStyle.Render(line)
	case slots.Pair:
		return SuccessStyle.Render(line)
	}
	return line
}

// historyLine renders one settled round
func historyLine(r session.Record) string {
	game := r.Game
	if r.Machine != "" {
		game = r.Machine
	}
	net := fmt.Sprintf("%+d", r.Net())
	switch {
	case r.Net() > 0:
		net = SuccessStyle.Render(net)
	case r.Net() < 0:
		net = ErrorStyle.Render(net)
	}
	return fmt.Sprintf("%s  %-14s $%-5d %-11s %s  %s", r.ID[:8], game, r.Stake, r.Outcome, net, r.Detail)
}
