package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/permc/internal/core/domain"
)

var (
	accent = lipgloss.Color("#5D3FD3")
	muted  = lipgloss.Color("#667085")

	listStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(muted).
			MarginRight(1).
			PaddingRight(1)

	logStyle      = lipgloss.NewStyle().PaddingLeft(1)
	selectedStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	titleStyle    = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(accent).
			Foreground(lipgloss.Color("#FFFFFF"))
)

// statusLook is how one permutation status renders in the list. An empty icon means the spinner.
type statusLook struct {
	icon  string
	style lipgloss.Style
}

var statusLooks = map[domain.PermutationStatus]statusLook{
	domain.PermutationStatusPending:   {"○", lipgloss.NewStyle().Foreground(muted)},
	domain.PermutationStatusRunning:   {"", lipgloss.NewStyle().Foreground(accent).Bold(true)},
	domain.PermutationStatusCompleted: {"✓", lipgloss.NewStyle().Foreground(lipgloss.Color("42"))},
	domain.PermutationStatusFailed:    {"✗", lipgloss.NewStyle().Foreground(lipgloss.Color("196"))},
	domain.PermutationStatusCancelled: {"⊘", lipgloss.NewStyle().Foreground(muted).Faint(true)},
}

func lookFor(status domain.PermutationStatus) statusLook {
	if look, ok := statusLooks[status]; ok {
		return look
	}
	return statusLooks[domain.PermutationStatusPending]
}
