package tui_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/permc/internal/adapters/tui"
)

func TestNewModel(t *testing.T) {
	m := tui.NewModel()

	assert.NotNil(t, m.Permutations)
	assert.Empty(t, m.Permutations)
	assert.NotNil(t, m.PermutationMap)
	assert.Empty(t, m.PermutationMap)
	assert.True(t, m.FollowMode, "FollowMode should be true by default")
	assert.NotNil(t, m.Init())
	assert.True(t, m.Spinner.Style.GetBold(), "spinner uses the running style")
	assert.Equal(t, lipgloss.Color("#5D3FD3"), m.Spinner.Style.GetForeground())
}
