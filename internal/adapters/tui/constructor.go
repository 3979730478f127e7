// Package tui renders live permutation progress in the terminal.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"go.trai.ch/permc/internal/core/domain"
)

// NewModel creates a new TUI model with default settings.
func NewModel() *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lookFor(domain.PermutationStatusRunning).style

	return &Model{
		Permutations:   make([]*PermutationNode, 0),
		PermutationMap: make(map[int]*PermutationNode),
		Viewport:       viewport.New(0, 0),
		Spinner:        s,
		FollowMode:     true,
		ActiveID:       noActive,
	}
}
