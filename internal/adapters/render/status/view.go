package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/hamster-clicker-cli/internal/application"
	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Title      string
	Now        time.Time
	StaleAfter time.Duration
	// Summary adds the per-run counters kept by each controller.
	Summary bool
}

func renderView(m model) string {
	s := m.styles
	lines := []string{s.title.Render(m.opts.Title), renderHeader(m.totals, s)}

	if len(m.stats) == 0 {
		lines = append(lines, s.empty.Render("No accounts are running."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, st := range m.stats {
		lines = append(lines, s.section.Render(renderAccount(st, m.opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderHeader(totals fleetTotals, s styles) string {
	header := s.header.Render(fmt.Sprintf("accounts: %d  balance: %s  passive: %s/h",
		totals.accounts, formatCoins(totals.balance), formatCoins(totals.passive)))
	if totals.failing > 0 {
		header += "  " + s.warning.Render(fmt.Sprintf("failing: %d", totals.failing))
	}
	return header
}

func renderAccount(st application.Stats, opts RenderOptions, s styles) string {
	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.account.Render(accountTitle(st.Account)),
			" ",
			s.stateBadge(st.State),
		),
		s.detail.Render(fmt.Sprintf("balance: %s  passive: %s/h", formatCoins(st.Balance), formatCoins(st.EarnPassivePerHour))),
		energyLine(st, opts, s),
	}

	if opts.Summary {
		parts = append(parts, s.detail.Render(fmt.Sprintf(
			"iterations: %d  taps: %d  earned: %s  upgrades: %d (%s)  tasks: %d",
			st.Iterations, st.TapsSent, formatCoins(st.CoinsEarned), st.UpgradesBought, formatCoins(st.CoinsSpent), st.TasksCompleted,
		)))
	}

	if st.Errors > 0 {
		msg := fmt.Sprintf("errors: %d", st.Errors)
		if st.LastError != "" {
			msg += " (last: " + st.LastError + ")"
		}
		parts = append(parts, s.warning.Render(msg))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func energyLine(st application.Stats, opts RenderOptions, s styles) string {
	label := s.energyKey.Render("energy:")
	if st.MaxTaps <= 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.energyMeta.Render("n/a"))
	}

	percent := clampPercent(float64(st.AvailableTaps) / float64(st.MaxTaps) * 100)
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100))

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		label,
		" ",
		renderProgressBar(percent, 24, s),
		" ",
		percentStyle.Render(fmt.Sprintf("%d/%d", st.AvailableTaps, st.MaxTaps)),
		" ",
		s.energyMeta.Render(fmt.Sprintf("(%s)", formatSyncRelative(st.LastSync, opts.Now))),
	)

	if isStale(st.LastSync, opts) {
		line += " " + s.warning.Render("[stale]")
	}

	return line
}

func isStale(lastSync time.Time, opts RenderOptions) bool {
	if opts.Now.IsZero() || opts.StaleAfter <= 0 || lastSync.IsZero() {
		return false
	}

	return opts.Now.Sub(lastSync) >= opts.StaleAfter
}

// renderProgressBar fills the bar proportionally to percent.
func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barEdge.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barEdge.Render("]"),
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

func formatSyncRelative(lastSync, now time.Time) string {
	if lastSync.IsZero() {
		return "never synced"
	}
	if now.IsZero() {
		return "synced " + lastSync.Format(time.RFC3339)
	}

	elapsed := now.Sub(lastSync)
	switch {
	case elapsed < time.Minute:
		return "synced just now"
	case elapsed < time.Hour:
		minutes := int(elapsed.Minutes())
		return fmt.Sprintf("synced %d %s ago", minutes, plural(minutes, "minute"))
	default:
		hours := int(elapsed.Hours())
		return fmt.Sprintf("synced %d %s ago (%s)", hours, plural(hours, "hour"), lastSync.Format("15:04"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

func accountTitle(account domain.Account) string {
	title := account.DisplayName()
	if account.Username != "" && title != account.Username {
		title += " @" + account.Username
	}
	if account.ID != 0 && title != account.ID.String() {
		title += fmt.Sprintf(" (%s)", account.ID)
	}

	return title
}

// formatCoins groups thousands: 1234567.8 -> "1,234,567".
func formatCoins(v float64) string {
	negative := v < 0
	digits := fmt.Sprintf("%.0f", math.Abs(math.Trunc(v)))

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if negative && b.String() != "0" {
		return "-" + b.String()
	}
	return b.String()
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// 240 (faded grey) at min, 255 (bright white) at max
	colorCode := int(240.0 + 15.0*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
