package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/permc/internal/core/domain"
)

// MsgStatus reports a permutation status transition.
type MsgStatus struct {
	ID     int
	Label  string
	Status domain.PermutationStatus
}

// MsgFinished is sent once the whole compile has returned.
type MsgFinished struct {
	Err error
}

// Sender delivers messages to a Bubble Tea program.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer implements ports.StatusObserver by forwarding transitions to a program.
type Observer struct {
	program Sender
}

// NewObserver returns an Observer sending to program.
func NewObserver(program Sender) *Observer {
	return &Observer{program: program}
}

// OnStatus forwards one status transition.
func (o *Observer) OnStatus(id int, label string, status domain.PermutationStatus) {
	o.program.Send(MsgStatus{ID: id, Label: label, Status: status})
}
