// Package emit renders output fragments to text and derives the symbol table and the optional
// size and dependency reports.
package emit

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"go.trai.ch/permc/internal/compiler/js"
)

// TextRenderer is the default tree-to-text renderer.
type TextRenderer struct{}

// NewRenderer returns a TextRenderer.
func NewRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Render writes every top-level statement on its own line. Pretty output indents nested
// statements by two spaces and spaces out operators.
func (TextRenderer) Render(stmts []js.Stmt, pretty bool) ([]byte, error) {
	p := &printer{pretty: pretty}
	for _, s := range stmts {
		p.stmt(s)
		p.buf.WriteByte('\n')
		if p.err != nil {
			return nil, p.err
		}
	}
	return p.buf.Bytes(), nil
}

// Expression precedence, loosest first.
const (
	precFunc = iota + 1
	precStmt
	precAssign
	precCond
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precMember
	precPrimary
)

var binaryPrec = map[string]int{
	"||": precOr, "&&": precAnd, "|": precBitOr, "^": precBitXor, "&": precBitAnd,
	"==": precEquality, "!=": precEquality, "===": precEquality, "!==": precEquality,
	"<": precRelational, "<=": precRelational, ">": precRelational, ">=": precRelational,
	"instanceof": precRelational, "in": precRelational,
	"<<": precShift, ">>": precShift, ">>>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

type printer struct {
	buf    bytes.Buffer
	pretty bool
	indent int
	err    error
}

func (p *printer) fail(n js.Node) {
	if p.err == nil {
		p.err = js.UnknownNode(n)
	}
}

// tok writes s, separating it from the previous token when the two would otherwise merge.
func (p *printer) tok(s string) {
	if s == "" {
		return
	}
	if b := p.buf.Bytes(); len(b) > 0 {
		last := b[len(b)-1]
		first := s[0]
		if (identByte(last) && identByte(first)) || (last == first && (first == '+' || first == '-')) {
			p.buf.WriteByte(' ')
		}
	}
	p.buf.WriteString(s)
}

func identByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c >= utf8.RuneSelf
}

func (p *printer) space() {
	if p.pretty {
		p.buf.WriteByte(' ')
	}
}

func (p *printer) line() {
	if p.pretty {
		p.buf.WriteByte('\n')
		p.buf.WriteString(strings.Repeat("  ", p.indent))
	}
}

func (p *printer) stmt(s js.Stmt) {
	switch s := s.(type) {
	case *js.ExprStmt:
		p.expr(s.X, precStmt)
		p.tok(";")
	case *js.VarDecl:
		p.tok("var")
		p.tok(s.Name.String())
		if s.Init != nil {
			p.space()
			p.tok("=")
			p.space()
			p.expr(s.Init, precAssign)
		}
		p.tok(";")
	case *js.FuncDecl:
		p.function(s.Fn)
	case *js.Block:
		p.block(s.Body)
	case *js.If:
		p.tok("if")
		p.space()
		p.tok("(")
		p.expr(s.C, 0)
		p.tok(")")
		p.space()
		then := s.Then
		if inner, ok := then.(*js.If); ok && s.Else != nil && inner.Else == nil {
			then = &js.Block{Body: []js.Stmt{inner}}
		}
		p.stmt(then)
		if s.Else != nil {
			p.space()
			p.tok("else")
			p.space()
			p.stmt(s.Else)
		}
	case *js.While:
		p.tok("while")
		p.space()
		p.tok("(")
		p.expr(s.C, 0)
		p.tok(")")
		p.space()
		p.stmt(s.Body)
	case *js.Return:
		p.tok("return")
		if s.X != nil {
			p.space()
			p.expr(s.X, 0)
		}
		p.tok(";")
	case *js.Throw:
		p.tok("throw")
		p.space()
		p.expr(s.X, 0)
		p.tok(";")
	case *js.Try:
		p.tok("try")
		p.space()
		p.block(s.Body.Body)
		if s.Catch != nil {
			p.space()
			p.tok("catch")
			p.space()
			p.tok("(")
			p.tok(s.Catch.String())
			p.tok(")")
			p.space()
			p.block(s.Handler.Body)
		}
		if s.Finally != nil {
			p.space()
			p.tok("finally")
			p.space()
			p.block(s.Finally.Body)
		}
	case *js.Break:
		p.tok("break;")
	case *js.Continue:
		p.tok("continue;")
	case *js.Empty:
		p.tok(";")
	default:
		p.fail(s)
	}
}

func (p *printer) block(body []js.Stmt) {
	p.tok("{")
	p.indent++
	for _, s := range body {
		p.line()
		p.stmt(s)
	}
	p.indent--
	if len(body) > 0 {
		p.line()
	}
	p.tok("}")
}

func (p *printer) function(fn *js.Func) {
	p.tok("function")
	if fn.Name != nil {
		p.tok(fn.Name.String())
	}
	p.tok("(")
	for i, param := range fn.Params {
		if i > 0 {
			p.tok(",")
			p.space()
		}
		p.tok(param.String())
	}
	p.tok(")")
	p.space()
	if fn.Native == "" {
		p.block(fn.Body)
		return
	}
	p.tok("{")
	if !p.pretty {
		p.buf.WriteString(fn.Native)
		p.tok("}")
		return
	}
	p.indent++
	for _, l := range strings.Split(fn.Native, "\n") {
		p.line()
		p.buf.WriteString(l)
	}
	p.indent--
	p.line()
	p.tok("}")
}

func (p *printer) expr(e js.Expr, ctx int) {
	prec := precedence(e)
	if prec < ctx {
		p.tok("(")
		defer p.tok(")")
	}
	switch e := e.(type) {
	case *js.NameRef:
		p.tok(e.Name.String())
	case *js.NumberLit:
		p.tok(number(e.Value))
	case *js.BigIntLit:
		p.tok(strconv.FormatInt(e.Value, 10) + "n")
	case *js.StringLit:
		p.tok(Quote(e.Value))
	case *js.BoolLit:
		p.tok(strconv.FormatBool(e.Value))
	case *js.NullLit:
		p.tok("null")
	case *js.ThisRef:
		p.tok("this")
	case *js.Binary:
		p.expr(e.X, prec)
		p.space()
		p.tok(e.Op)
		p.space()
		p.expr(e.Y, prec+1)
	case *js.Unary:
		p.tok(e.Op)
		p.expr(e.X, precUnary)
	case *js.Assign:
		p.expr(e.X, precMember)
		p.space()
		p.tok(e.Op)
		p.space()
		p.expr(e.Y, precAssign)
	case *js.Call:
		p.expr(e.Fn, precMember)
		p.args(e.Args)
	case *js.New:
		p.tok("new")
		if hasCall(e.Ctor) {
			p.tok("(")
			p.expr(e.Ctor, 0)
			p.tok(")")
		} else {
			p.expr(e.Ctor, precMember)
		}
		p.args(e.Args)
	case *js.Dot:
		if _, num := e.X.(*js.NumberLit); num {
			p.tok("(")
			p.expr(e.X, 0)
			p.tok(")")
		} else {
			p.expr(e.X, precMember)
		}
		p.tok(".")
		p.tok(e.Prop.String())
	case *js.Index:
		p.expr(e.X, precMember)
		p.tok("[")
		p.expr(e.I, 0)
		p.tok("]")
	case *js.Cond:
		p.expr(e.C, precOr)
		p.space()
		p.tok("?")
		p.space()
		p.expr(e.X, precAssign)
		p.space()
		p.tok(":")
		p.space()
		p.expr(e.Y, precAssign)
	case *js.ArrayLit:
		p.tok("[")
		for i, x := range e.Elems {
			if i > 0 {
				p.tok(",")
				p.space()
			}
			p.expr(x, precAssign)
		}
		p.tok("]")
	case *js.Func:
		p.function(e)
	default:
		p.fail(e)
	}
}

func (p *printer) args(args []js.Expr) {
	p.tok("(")
	for i, a := range args {
		if i > 0 {
			p.tok(",")
			p.space()
		}
		p.expr(a, precAssign)
	}
	p.tok(")")
}

func precedence(e js.Expr) int {
	switch e := e.(type) {
	case *js.NumberLit:
		if e.Value < 0 || (e.Value == 0 && math.Signbit(e.Value)) || math.IsInf(e.Value, -1) {
			return precUnary
		}
		return precPrimary
	case *js.BigIntLit:
		if e.Value < 0 {
			return precUnary
		}
		return precPrimary
	case *js.Binary:
		if prec, ok := binaryPrec[e.Op]; ok {
			return prec
		}
		return precPrimary
	case *js.Unary:
		return precUnary
	case *js.Assign:
		return precAssign
	case *js.Cond:
		return precCond
	case *js.Call, *js.New, *js.Dot, *js.Index:
		return precMember
	case *js.Func:
		return precFunc
	default:
		return precPrimary
	}
}

// hasCall reports whether a constructor expression contains a call outside parentheses, which
// would otherwise bind the argument list of a new expression.
func hasCall(e js.Expr) bool {
	for {
		switch x := e.(type) {
		case *js.Call:
			return true
		case *js.Dot:
			e = x.X
		case *js.Index:
			e = x.X
		default:
			return false
		}
	}
}

func number(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0 && math.Signbit(v):
		return "-0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Quote returns s as a double-quoted script string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case '\u2028', '\u2029':
			writeUnicodeEscape(&b, r)
		default:
			switch {
			case r < 0x20 || r == 0x7f:
				writeUnicodeEscape(&b, r)
			case r > 0xFFFF:
				r1, r2 := utf16.EncodeRune(r)
				writeUnicodeEscape(&b, r1)
				writeUnicodeEscape(&b, r2)
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	const hex = "0123456789abcdef"
	b.WriteString(`\u`)
	for shift := 12; shift >= 0; shift -= 4 {
		b.WriteByte(hex[(r>>shift)&0xF])
	}
}
