package ast

import "slices"

// Provenance is the stack of program elements a pass is currently working on. It is reported
// when a pass fails so a defect can be traced back to the node that triggered it.
// A nil *Provenance ignores every call.
type Provenance struct {
	stack []string
}

// Enter pushes label.
func (p *Provenance) Enter(label string) {
	if p == nil {
		return
	}
	p.stack = append(p.stack, label)
}

// Leave pops the innermost label.
func (p *Provenance) Leave() {
	if p == nil || len(p.stack) == 0 {
		return
	}
	p.stack = p.stack[:len(p.stack)-1]
}

// Trail returns a copy of the stack, outermost first.
func (p *Provenance) Trail() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.stack)
}

// Reset empties the stack.
func (p *Provenance) Reset() {
	if p == nil {
		return
	}
	p.stack = p.stack[:0]
}

// EnterMethod pushes the qualified name of m.
func (p *Provenance) EnterMethod(prog *Program, m MethodID) {
	if p == nil {
		return
	}
	p.Enter(prog.MethodName(m))
}
