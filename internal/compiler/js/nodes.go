// Package js is the output-language tree: a closed sum type of expressions and statements
// plus the serializable runtime library that code generation expands.
package js

import "fmt"

// Node is any output tree node. The set of implementations is closed to this package.
type Node interface {
	jsNode()
}

// Expr is an output expression.
type Expr interface {
	Node
	jsExpr()
}

// Stmt is an output statement.
type Stmt interface {
	Node
	jsStmt()
}

// UnknownNode is the panic value of an exhaustive type switch that met an unexpected node.
func UnknownNode(n Node) error {
	return fmt.Errorf("unhandled output node %T", n)
}

type (
	// NameRef reads a global or local name.
	NameRef struct{ Name *Name }
	// NumberLit is a double-precision literal.
	NumberLit struct{ Value float64 }
	// BigIntLit is a 64-bit integer literal rendered with the n suffix.
	BigIntLit struct{ Value int64 }
	// StringLit is a string literal.
	StringLit struct{ Value string }
	// BoolLit is true or false.
	BoolLit struct{ Value bool }
	// NullLit is null.
	NullLit struct{}
	// ThisRef is the receiver.
	ThisRef struct{}
	// Binary is X Op Y.
	Binary struct {
		Op   string
		X, Y Expr
	}
	// Unary is a prefix operator applied to X.
	Unary struct {
		Op string
		X  Expr
	}
	// Assign is X Op Y where Op is "=" or a compound operator.
	Assign struct {
		Op   string
		X, Y Expr
	}
	// Call applies Fn to Args.
	Call struct {
		Fn   Expr
		Args []Expr
	}
	// New constructs Ctor with Args.
	New struct {
		Ctor Expr
		Args []Expr
	}
	// Dot reads property Prop of X.
	Dot struct {
		X    Expr
		Prop *Name
	}
	// Index reads element I of X.
	Index struct{ X, I Expr }
	// Cond is C ? X : Y.
	Cond struct{ C, X, Y Expr }
	// ArrayLit is an array literal.
	ArrayLit struct{ Elems []Expr }
	// Func is a function. Native functions carry a raw body instead of Body, and list the
	// runtime functions that raw body calls in Deps.
	Func struct {
		Name   *Name
		Params []*Name
		Body   []Stmt
		Native string
		Deps   []*Name
	}
)

type (
	// ExprStmt evaluates X.
	ExprStmt struct{ X Expr }
	// VarDecl declares Name with an optional Init.
	VarDecl struct {
		Name *Name
		Init Expr
	}
	// FuncDecl declares a named function.
	FuncDecl struct{ Fn *Func }
	// Block groups statements.
	Block struct{ Body []Stmt }
	// If is a conditional; Else may be nil.
	If struct {
		C          Expr
		Then, Else Stmt
	}
	// While is a pre-tested loop.
	While struct {
		C    Expr
		Body Stmt
	}
	// Return returns X, which may be nil.
	Return struct{ X Expr }
	// Throw throws X.
	Throw struct{ X Expr }
	// Try has at most one catch clause; Catch is nil when there is none.
	Try struct {
		Body    *Block
		Catch   *Name
		Handler *Block
		Finally *Block
	}
	// Break leaves the innermost loop.
	Break struct{}
	// Continue restarts the innermost loop.
	Continue struct{}
	// Empty is the empty statement.
	Empty struct{}
)

func (*NameRef) jsNode()   {}
func (*NumberLit) jsNode() {}
func (*BigIntLit) jsNode() {}
func (*StringLit) jsNode() {}
func (*BoolLit) jsNode()   {}
func (*NullLit) jsNode()   {}
func (*ThisRef) jsNode()   {}
func (*Binary) jsNode()    {}
func (*Unary) jsNode()     {}
func (*Assign) jsNode()    {}
func (*Call) jsNode()      {}
func (*New) jsNode()       {}
func (*Dot) jsNode()       {}
func (*Index) jsNode()     {}
func (*Cond) jsNode()      {}
func (*ArrayLit) jsNode()  {}
func (*Func) jsNode()      {}
func (*ExprStmt) jsNode()  {}
func (*VarDecl) jsNode()   {}
func (*FuncDecl) jsNode()  {}
func (*Block) jsNode()     {}
func (*If) jsNode()        {}
func (*While) jsNode()     {}
func (*Return) jsNode()    {}
func (*Throw) jsNode()     {}
func (*Try) jsNode()       {}
func (*Break) jsNode()     {}
func (*Continue) jsNode()  {}
func (*Empty) jsNode()     {}

func (*NameRef) jsExpr()   {}
func (*NumberLit) jsExpr() {}
func (*BigIntLit) jsExpr() {}
func (*StringLit) jsExpr() {}
func (*BoolLit) jsExpr()   {}
func (*NullLit) jsExpr()   {}
func (*ThisRef) jsExpr()   {}
func (*Binary) jsExpr()    {}
func (*Unary) jsExpr()     {}
func (*Assign) jsExpr()    {}
func (*Call) jsExpr()      {}
func (*New) jsExpr()       {}
func (*Dot) jsExpr()       {}
func (*Index) jsExpr()     {}
func (*Cond) jsExpr()      {}
func (*ArrayLit) jsExpr()  {}
func (*Func) jsExpr()      {}

func (*ExprStmt) jsStmt() {}
func (*VarDecl) jsStmt()  {}
func (*FuncDecl) jsStmt() {}
func (*Block) jsStmt()    {}
func (*If) jsStmt()       {}
func (*While) jsStmt()    {}
func (*Return) jsStmt()   {}
func (*Throw) jsStmt()    {}
func (*Try) jsStmt()      {}
func (*Break) jsStmt()    {}
func (*Continue) jsStmt() {}
func (*Empty) jsStmt()    {}

// SplitPoint is one runAsync site of the program.
type SplitPoint struct {
	Index    int
	Callback *Name
	// Register is the top-level statement that installs the callback.
	Register Stmt
}

// Program is a whole output program.
type Program struct {
	Stmts  []Stmt
	Splits []*SplitPoint
	// Entries are the top-level statements that start the program.
	Entries []Stmt
}
