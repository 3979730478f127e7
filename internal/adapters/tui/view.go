package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the permutation list next to the step log of the active permutation.
func (m *Model) View() string {
	if m.Viewport.Height == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.permutationList(),
		m.logPane(),
	)
}

func (m *Model) permutationList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.summary()) + "\n\n")

	end := len(m.Permutations)
	if m.ListHeight > 0 {
		end = min(end, m.ListOffset+m.ListHeight)
	}
	for i := m.ListOffset; i < end; i++ {
		node := m.Permutations[i]

		look := lookFor(node.Status)
		icon := look.icon
		if icon == "" {
			icon = m.Spinner.View()
		}

		line := fmt.Sprintf("%s %d %s", icon, node.ID, node.Label)
		if i == m.SelectedIdx {
			s.WriteString(selectedStyle.Render("> ") + look.style.Render(line) + "\n")
		} else {
			s.WriteString("  " + look.style.Render(line) + "\n")
		}
	}

	return listStyle.Render(s.String())
}

func (m *Model) summary() string {
	done := 0
	for _, node := range m.Permutations {
		if node.Status.IsTerminal() {
			done++
		}
	}
	return fmt.Sprintf("PERMUTATIONS %d/%d", done, len(m.Permutations))
}

func (m *Model) logPane() string {
	var header string
	if node, ok := m.PermutationMap[m.ActiveID]; ok {
		mode := "Manual"
		if m.FollowMode {
			mode = "Following"
		}
		header = titleStyle.Render(fmt.Sprintf("STEPS: %s (%s)", node.Label, mode))
	} else {
		header = titleStyle.Render("STEPS (Waiting...)")
	}

	return logStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			m.Viewport.View(),
		),
	)
}
