package counter

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const balanceBarWidth = 24

// Snapshot is everything the counter screen shows. Nil fields are unknown.
type Snapshot struct {
	Cluster domain.Cluster
	Program domain.ProgramContext
	Counter *domain.CounterAccount
	Account *domain.Account
	Balance *uint64
	Notices []ports.Notification
}

// FormatSOL renders lamports as SOL without rounding.
func FormatSOL(lamports uint64) string {
	sol := decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9)
	return sol.String() + " SOL"
}

func renderView(snap Snapshot, s styles) string {
	lines := []string{
		s.title.Render("Solana Counter"),
		s.header.Render(fmt.Sprintf("cluster: %s  program: %s", clusterLabel(snap.Cluster), snap.Program.ProgramID)),
		s.header.Render(fmt.Sprintf("counter account: %s", snap.Program.CounterAddress)),
		s.section.Render(renderCounter(snap.Counter, s)),
		s.section.Render(renderWallet(snap, s)),
	}

	if len(snap.Notices) > 0 {
		lines = append(lines, s.section.Render(renderNotices(snap.Notices, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderCounter(counter *domain.CounterAccount, s styles) string {
	if counter == nil {
		return lipgloss.JoinVertical(lipgloss.Left, s.label.Render("Current counter"), s.empty.Render("Loading..."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, s.label.Render("Current counter"), s.count.Render(counter.String()))
}

func renderWallet(snap Snapshot, s styles) string {
	if snap.Account == nil {
		return s.empty.Render("wallet: not authorized")
	}

	parts := []string{s.account.Render("wallet: " + snap.Account.DisplayName())}
	if snap.Balance != nil {
		parts = append(parts, balanceLine(*snap.Balance, snap.Cluster, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func balanceLine(lamports uint64, cluster domain.Cluster, s styles) string {
	percent := 100 * float64(lamports) / float64(domain.AirdropAmount)
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.label.Render("fee balance:"),
		" ",
		renderProgressBar(percent, balanceBarWidth, s),
		" ",
		s.detail.Render(FormatSOL(lamports)),
	)

	if lamports < domain.MinFeeBalance {
		if cluster.AirdropAvailable() {
			line += " " + s.warning.Render("[airdrop on next submit]")
		} else {
			line += " " + s.warning.Render("[low]")
		}
	}

	return line
}

func renderNotices(notices []ports.Notification, s styles) string {
	lines := make([]string, 0, len(notices))
	for _, notice := range notices {
		style := s.success
		if notice.Level == ports.NotificationError {
			style = s.failure
		}
		lines = append(lines, style.Render(notice.Message))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProgressBar(filledPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := clampPercent(filledPercent) / 100.0
	filled := int(math.Round(float64(width) * fraction))
	empty := width - filled

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clusterLabel(cluster domain.Cluster) string {
	if cluster == "" {
		return "unknown"
	}
	return string(cluster)
}
