package tui

import (
	"bytes"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"go.trai.ch/permc/internal/adapters/telemetry" //nolint:depguard // Step messages come from the tracer bridge
	"go.trai.ch/permc/internal/core/domain"
)

const (
	listWidthRatio  = 0.35
	paneBorderWidth = 4
	headerHeight    = 2
	noActive        = -1
)

// PermutationNode represents a single permutation in the UI list.
type PermutationNode struct {
	ID     int
	Label  string
	Status domain.PermutationStatus
	Steps  int
	Logs   bytes.Buffer
}

// Model represents the main TUI state.
type Model struct {
	Permutations   []*PermutationNode
	PermutationMap map[int]*PermutationNode
	Viewport       viewport.Model
	Spinner        spinner.Model

	ListHeight  int
	ListOffset  int
	SelectedIdx int

	// FollowMode moves the log pane to whichever permutation started last.
	FollowMode bool
	ActiveID   int

	Finished bool
	Err      error
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // one case per message type
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		listWidth := int(float64(msg.Width) * listWidthRatio)
		m.Viewport.Width = msg.Width - listWidth - paneBorderWidth
		m.Viewport.Height = msg.Height - headerHeight
		m.ListHeight = msg.Height - headerHeight
		m.refreshViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case MsgStatus:
		m.handleStatus(msg)

	case telemetry.MsgStepStart:
		if node, ok := m.PermutationMap[msg.Permutation]; ok {
			node.Steps++
			fmt.Fprintf(&node.Logs, "▸ %s\n", msg.Step)
			m.refreshNode(node)
		}

	case telemetry.MsgStepComplete:
		if node, ok := m.PermutationMap[msg.Permutation]; ok {
			if msg.Err != nil {
				fmt.Fprintf(&node.Logs, "✗ %s: %v\n", msg.Step, msg.Err)
			} else {
				fmt.Fprintf(&node.Logs, "✓ %s (%s)\n", msg.Step, msg.Duration.Round(time.Microsecond))
			}
			m.refreshNode(node)
		}

	case MsgFinished:
		m.Finished = true
		m.Err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.FollowMode = false
		m.selectIndex(m.SelectedIdx - 1)
	case "down", "j":
		m.FollowMode = false
		m.selectIndex(m.SelectedIdx + 1)
	case "f":
		m.FollowMode = !m.FollowMode
	}
	return m, nil
}

func (m *Model) handleStatus(msg MsgStatus) {
	node, ok := m.PermutationMap[msg.ID]
	if !ok {
		node = &PermutationNode{ID: msg.ID, Label: msg.Label}
		m.PermutationMap[msg.ID] = node
		m.Permutations = append(m.Permutations, node)
		slices.SortFunc(m.Permutations, func(a, b *PermutationNode) int { return a.ID - b.ID })
	}
	node.Status = msg.Status
	if msg.Status != domain.PermutationStatusPending {
		fmt.Fprintf(&node.Logs, "%s\n", msg.Status)
	}

	if msg.Status == domain.PermutationStatusRunning && m.FollowMode {
		m.selectIndex(slices.Index(m.Permutations, node))
		return
	}
	m.refreshNode(node)
}

// selectIndex moves the selection, keeping it inside the visible window of the list.
func (m *Model) selectIndex(idx int) {
	if len(m.Permutations) == 0 {
		return
	}
	idx = max(0, min(idx, len(m.Permutations)-1))
	m.SelectedIdx = idx
	m.ActiveID = m.Permutations[idx].ID

	if m.ListHeight > 0 {
		if idx < m.ListOffset {
			m.ListOffset = idx
		} else if idx >= m.ListOffset+m.ListHeight {
			m.ListOffset = idx - m.ListHeight + 1
		}
	}
	m.refreshViewport()
}

func (m *Model) refreshNode(node *PermutationNode) {
	if node.ID == m.ActiveID {
		m.refreshViewport()
	}
}

func (m *Model) refreshViewport() {
	node, ok := m.PermutationMap[m.ActiveID]
	if !ok {
		return
	}
	m.Viewport.SetContent(WrapLog(node.Logs.String(), m.Viewport.Width))
	if m.FollowMode {
		m.Viewport.GotoBottom()
	}
}

// WrapLog wraps s to width columns. A non-positive width leaves s unchanged.
func WrapLog(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wrap(s, width, "")
}
