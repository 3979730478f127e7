package ast

import (
	"strings"

	"go.trai.ch/permc/internal/core/domain"
)

// Program is the whole-program source tree.
type Program struct {
	Classes []Class
	Methods []Method
	Fields  []Field
	Locals  []Local
	Exprs   []Expr
	Stmts   []Stmt

	EntryPoints []MethodID
	ExtraRoots  []ClassID
	// RebindAnswers keeps every possible rebind answer live until a permutation resolves its
	// requests; ResolveRebinds clears it.
	RebindAnswers []ClassID `cbor:",omitempty"`
	// SplitPoints lists the runAsync callbacks; the callback of split point i is SplitPoints[i-1].
	SplitPoints []MethodID

	ObjectClass    ClassID
	StringClass    ClassID
	ThrowableClass ClassID

	// MaxNodes caps len(Exprs)+len(Stmts); zero means unbounded.
	MaxNodes int `cbor:"-"`

	classIndex map[string]ClassID
}

// NodeCount is the number of expression and statement nodes in the arena.
func (p *Program) NodeCount() int {
	return len(p.Exprs) + len(p.Stmts)
}

func (p *Program) grow() {
	if p.MaxNodes > 0 && p.NodeCount() >= p.MaxNodes {
		panic(&domain.ResourceExhaustedError{
			Resource: "program nodes",
			Limit:    int64(p.MaxNodes),
			Used:     int64(p.NodeCount() + 1),
		})
	}
}

// AddExpr appends e and returns its index. It panics with *domain.ResourceExhaustedError
// when the arena cap is reached; the pipeline boundary returns that panic unmodified.
func (p *Program) AddExpr(e Expr) ExprID {
	p.grow()
	p.Exprs = append(p.Exprs, e)
	return ExprID(len(p.Exprs) - 1)
}

// AddStmt appends s and returns its index, with the same cap as AddExpr.
func (p *Program) AddStmt(s Stmt) StmtID {
	p.grow()
	p.Stmts = append(p.Stmts, s)
	return StmtID(len(p.Stmts) - 1)
}

// AddLocal appends a local to the arena and to m's local list.
func (p *Program) AddLocal(m MethodID, l Local) LocalID {
	l.Method = m
	p.Locals = append(p.Locals, l)
	id := LocalID(len(p.Locals) - 1)
	if m != NoMethod {
		p.Methods[m].Locals = append(p.Methods[m].Locals, id)
	}
	return id
}

// FindClass looks a class up by qualified name.
func (p *Program) FindClass(qualified string) (ClassID, bool) {
	if len(p.classIndex) != len(p.Classes) {
		p.classIndex = make(map[string]ClassID, len(p.Classes))
		for i := range p.Classes {
			p.classIndex[p.Classes[i].QualifiedName()] = ClassID(i)
		}
	}
	id, ok := p.classIndex[qualified]
	return id, ok
}

// FindMethod returns the first method of c with the given name and arity.
func (p *Program) FindMethod(c ClassID, name string, arity int) (MethodID, bool) {
	for _, m := range p.Classes[c].Methods {
		if p.Methods[m].Name == name && len(p.Methods[m].Params) == arity {
			return m, true
		}
	}
	return NoMethod, false
}

// DefaultConstructor returns the zero-argument constructor of c.
func (p *Program) DefaultConstructor(c ClassID) (MethodID, bool) {
	for _, m := range p.Classes[c].Methods {
		if p.Methods[m].Is(MethodConstructor) && len(p.Methods[m].Params) == 0 {
			return m, true
		}
	}
	return NoMethod, false
}

// Signature identifies a method for overriding purposes: name and parameter types.
func (p *Program) Signature(m MethodID) string {
	meth := &p.Methods[m]
	var b strings.Builder
	b.WriteString(meth.Name)
	b.WriteByte('(')
	for i, l := range meth.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.TypeString(p.Locals[l].Type))
	}
	b.WriteByte(')')
	return b.String()
}

// MethodName is the fully qualified name used in symbol tables and diagnostics,
// e.g. "app.Main::run(int)".
func (p *Program) MethodName(m MethodID) string {
	return p.Classes[p.Methods[m].Class].QualifiedName() + "::" + p.Signature(m)
}

// FieldName is the fully qualified field name, e.g. "app.Main::count".
func (p *Program) FieldName(f FieldID) string {
	return p.Classes[p.Fields[f].Class].QualifiedName() + "::" + p.Fields[f].Name
}

// Resolve finds the implementation of signature sig that an instance of class c runs.
func (p *Program) Resolve(c ClassID, sig string) (MethodID, bool) {
	for ; c != NoClass; c = p.Classes[c].Super {
		for _, m := range p.Classes[c].Methods {
			meth := &p.Methods[m]
			if meth.Is(MethodStatic|MethodConstructor|MethodAbstract) || meth.Dead {
				continue
			}
			if p.Signature(m) == sig {
				return m, true
			}
		}
	}
	return NoMethod, false
}

// Declaring finds the most specific declaration of sig visible from c, including abstract
// and interface declarations.
func (p *Program) Declaring(c ClassID, sig string) (MethodID, bool) {
	if c == NoClass {
		return NoMethod, false
	}
	for _, m := range p.Classes[c].Methods {
		meth := &p.Methods[m]
		if !meth.Is(MethodStatic|MethodConstructor) && !meth.Dead && p.Signature(m) == sig {
			return m, true
		}
	}
	if m, ok := p.Declaring(p.Classes[c].Super, sig); ok {
		return m, true
	}
	for _, i := range p.Classes[c].Interfaces {
		if m, ok := p.Declaring(i, sig); ok {
			return m, true
		}
	}
	return NoMethod, false
}

// LiveClasses yields the indices of classes that are not dead.
func (p *Program) LiveClasses() []ClassID {
	out := make([]ClassID, 0, len(p.Classes))
	for i := range p.Classes {
		if !p.Classes[i].Dead {
			out = append(out, ClassID(i))
		}
	}
	return out
}
