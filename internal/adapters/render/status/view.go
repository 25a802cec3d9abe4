package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/major-rewards-cli/internal/application"
	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
}

var summaryKinds = []domain.OutcomeKind{
	domain.OutcomeSuccess,
	domain.OutcomeAlreadyCompleted,
	domain.OutcomeUnauthorized,
	domain.OutcomeTransient,
	domain.OutcomeFatal,
}

// RenderReport draws one block per account with an outcome line per action.
func RenderReport(report domain.RunReport, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return renderReportView(report, opts, s)
	})
}

func RenderAccounts(accounts []application.AccountSummary) (string, error) {
	return run(func(s styles) string {
		return renderAccountsView(accounts, s)
	})
}

func renderReportView(report domain.RunReport, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Major rewards run"),
		s.header.Render(summaryLine(report)),
	}

	if len(report.Accounts) == 0 {
		lines = append(lines, s.empty.Render("No accounts processed."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, account := range report.Accounts {
		lines = append(lines, s.section.Render(renderAccountReport(account, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func summaryLine(report domain.RunReport) string {
	parts := []string{fmt.Sprintf("accounts: %d", len(report.Accounts))}
	for _, kind := range summaryKinds {
		if n := report.Count(kind); n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", kind.Label(), n))
		}
	}
	return strings.Join(parts, "  ")
}

func renderAccountReport(account domain.AccountReport, opts RenderOptions, s styles) string {
	parts := []string{s.account.Render(account.Label)}

	if !account.HasToken {
		parts = append(parts, s.warning.Render("no token after run"))
	}

	for _, result := range account.Results {
		parts = append(parts, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.action.Render(result.Action),
			" ",
			s.kind(result.Outcome.Kind).Render(outcomeText(result.Outcome, opts.Now)),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func outcomeText(outcome domain.Outcome, now time.Time) string {
	text := outcome.Kind.Label()
	switch {
	case outcome.Kind == domain.OutcomeAlreadyCompleted && !outcome.ResumeAt.IsZero():
		text += " " + formatResume(outcome.ResumeAt, now)
	case outcome.StatusCode != 0 && !outcome.OK():
		text += fmt.Sprintf(" (status %d)", outcome.StatusCode)
	}
	return text
}

func formatResume(resumeAt, now time.Time) string {
	if now.IsZero() {
		return "until " + resumeAt.Format(time.DateTime)
	}
	if !resumeAt.After(now) {
		return "(ready now)"
	}

	remaining := resumeAt.Sub(now)
	if remaining < time.Hour {
		minutes := int(math.Ceil(remaining.Minutes()))
		return fmt.Sprintf("(ready in %d min, %s)", minutes, resumeAt.Format("15:04"))
	}

	hours := int(math.Ceil(remaining.Hours()))
	suffix := "hours"
	if hours == 1 {
		suffix = "hour"
	}
	return fmt.Sprintf("(ready in %d %s, %s)", hours, suffix, resumeAt.Format("15:04"))
}

func renderAccountsView(accounts []application.AccountSummary, s styles) string {
	withToken := 0
	for _, account := range accounts {
		if account.HasToken {
			withToken++
		}
	}

	lines := []string{
		s.title.Render("Major accounts"),
		s.header.Render(fmt.Sprintf("accounts: %d  cached tokens: %d", len(accounts), withToken)),
	}

	if len(accounts) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, account := range accounts {
		token := s.warning.Render("no token")
		if account.HasToken {
			token = s.kind(domain.OutcomeSuccess).Render("token cached")
		}

		line := lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.header.Render(fmt.Sprintf("%3d ", account.Line)),
			s.account.Render(account.Label),
			" ",
			token,
		)
		if account.Error != "" {
			line += " " + s.empty.Render(account.Error)
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
