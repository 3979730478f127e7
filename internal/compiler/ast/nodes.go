package ast

import "fmt"

// ExprKind is the closed set of expression node kinds. Passes switch over it exhaustively
// and panic with UnknownKind on anything else.
type ExprKind uint8

const (
	ExprLiteral     ExprKind = iota // Lit, LitKind, Type
	ExprLocal                       // Local
	ExprField                       // X (receiver, NoExpr for static), Field
	ExprThis                        // Type
	ExprBinary                      // Op, X, Y
	ExprUnary                       // Op, X
	ExprAssign                      // Op (OpAssign or the compound operator), X (target), Y (value)
	ExprCall                        // X (receiver, NoExpr for static), Method, Args, Dispatch
	ExprNew                         // Class, Method (constructor), Args
	ExprNewArray                    // Type (array type), X (length)
	ExprArrayRef                    // X (array), Y (index)
	ExprArrayLength                 // X
	ExprCast                        // Target, X
	ExprInstanceOf                  // Target, X
	ExprConditional                 // X (condition), Y (then), Z (else)
	ExprRebind                      // Name (requested type), Type
	ExprRunAsync                    // Method (static callback), Index (split point)
	ExprRuntime                     // Name (runtime helper), Args
	numExprKinds
)

var exprKindNames = [...]string{
	ExprLiteral: "literal", ExprLocal: "local", ExprField: "field", ExprThis: "this",
	ExprBinary: "binary", ExprUnary: "unary", ExprAssign: "assign", ExprCall: "call",
	ExprNew: "new", ExprNewArray: "new-array", ExprArrayRef: "array-ref",
	ExprArrayLength: "array-length", ExprCast: "cast", ExprInstanceOf: "instanceof",
	ExprConditional: "conditional", ExprRebind: "rebind", ExprRunAsync: "run-async",
	ExprRuntime: "runtime-call",
}

func (k ExprKind) String() string {
	if k < numExprKinds {
		return exprKindNames[k]
	}
	return fmt.Sprintf("ExprKind(%d)", uint8(k))
}

// StmtKind is the closed set of statement node kinds.
type StmtKind uint8

const (
	StmtBlock    StmtKind = iota // Body
	StmtExpr                     // X
	StmtLocal                    // Local, X (initializer or NoExpr)
	StmtIf                       // X, Then, Else (or NoStmt)
	StmtWhile                    // X, Then (body)
	StmtReturn                   // X (or NoExpr)
	StmtThrow                    // X
	StmtTry                      // Then (try block), Catches, Finally (or NoStmt)
	StmtAssert                   // X (condition), Y (message or NoExpr)
	StmtBreak                    //
	StmtContinue                 //
	StmtEmpty                    //
	numStmtKinds
)

var stmtKindNames = [...]string{
	StmtBlock: "block", StmtExpr: "expr", StmtLocal: "local", StmtIf: "if", StmtWhile: "while",
	StmtReturn: "return", StmtThrow: "throw", StmtTry: "try", StmtAssert: "assert",
	StmtBreak: "break", StmtContinue: "continue", StmtEmpty: "empty",
}

func (k StmtKind) String() string {
	if k < numStmtKinds {
		return stmtKindNames[k]
	}
	return fmt.Sprintf("StmtKind(%d)", uint8(k))
}

// UnknownKind is the panic value of an exhaustive switch that met an unexpected kind.
func UnknownKind(kind fmt.Stringer) error {
	return fmt.Errorf("unhandled node kind %s", kind)
}

// Op is an operator.
type Op uint8

const (
	OpNone Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpUshr
	OpAnd
	OpOr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpRefEq
	OpRefNe
	OpNeg
	OpNot
	OpBitNot
	OpAssign
	numOps
)

var opSymbols = [...]string{
	OpNone: "", OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpRem: "%",
	OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^", OpShl: "<<", OpShr: ">>", OpUshr: ">>>",
	OpAnd: "&&", OpOr: "||", OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpRefEq: "===", OpRefNe: "!==", OpNeg: "-", OpNot: "!", OpBitNot: "~", OpAssign: "=",
}

// Symbol returns the operator's output-language token.
func (o Op) Symbol() string {
	if o < numOps {
		return opSymbols[o]
	}
	return "?"
}

func (o Op) String() string { return o.Symbol() }

// IsComparison reports whether o yields a boolean from two operands.
func (o Op) IsComparison() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpRefEq, OpRefNe:
		return true
	default:
		return false
	}
}

// Dispatch selects how a call finds its target.
type Dispatch uint8

const (
	// DispatchVirtual looks the method up on the receiver at run time.
	DispatchVirtual Dispatch = iota
	// DispatchDirect calls the named instance method implementation with the receiver as this.
	DispatchDirect
	// DispatchStatic calls a static method.
	DispatchStatic
)

// LitKind identifies the value carried by a literal.
type LitKind uint8

const (
	LitNull LitKind = iota
	LitBool
	LitInt
	LitChar
	LitLong
	LitDouble
	LitString
)

// Literal is the value payload of a literal expression.
type Literal struct {
	_     struct{} `cbor:",toarray"`
	Kind  LitKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Pos is a source position.
type Pos struct {
	_    struct{} `cbor:",toarray"`
	File string
	Line int
}

// Expr is one expression node. Which fields are meaningful depends on Kind; see ExprKind.
type Expr struct {
	_        struct{} `cbor:",toarray"`
	Kind     ExprKind
	Type     TypeRef
	Op       Op
	X, Y, Z  ExprID
	Args     []ExprID
	Local    LocalID
	Field    FieldID
	Method   MethodID
	Class    ClassID
	Target   TypeRef
	Lit      Literal
	Name     string
	Dispatch Dispatch
	Index    int
	Pos      Pos
}

// Catch is one catch clause of a try statement.
type Catch struct {
	_     struct{} `cbor:",toarray"`
	Local LocalID
	Types []ClassID
	Body  StmtID
}

// Stmt is one statement node. Which fields are meaningful depends on Kind; see StmtKind.
type Stmt struct {
	_       struct{} `cbor:",toarray"`
	Kind    StmtKind
	X, Y    ExprID
	Body    []StmtID
	Then    StmtID
	Else    StmtID
	Local   LocalID
	Catches []Catch
	Finally StmtID
	Pos     Pos
}
