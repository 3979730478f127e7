package ast

// Param declares one method parameter.
type Param struct {
	Name string
	Type TypeRef
}

// Builder assembles a Program. Front ends and tests use it; it creates the three core
// classes lang.Object, lang.String and lang.Throwable up front.
type Builder struct {
	p   *Program
	pos Pos
}

// NewBuilder returns a builder holding only the core classes.
func NewBuilder() *Builder {
	b := &Builder{p: &Program{
		ObjectClass:    NoClass,
		StringClass:    NoClass,
		ThrowableClass: NoClass,
	}}
	obj := b.Class("lang", "Object", NoClass, 0)
	b.p.ObjectClass = obj
	ctor, _ := b.Constructor(obj, 0)
	b.SetBody(ctor)

	str := b.Class("lang", "String", obj, ClassFinal|ClassOverlay)
	b.p.StringClass = str
	length, _ := b.Method(str, "length", Prim(TypeInt), MethodNative|MethodFinal)
	b.p.Methods[length].Native = "return this.length;"

	thr := b.Class("lang", "Throwable", obj, 0)
	b.p.ThrowableClass = thr
	tctor, _ := b.Constructor(thr, 0)
	b.SetBody(tctor)
	return b
}

// Program returns the program under construction.
func (b *Builder) Program() *Program { return b.p }

// ObjectClass returns the root class.
func (b *Builder) ObjectClass() ClassID { return b.p.ObjectClass }

// StringClass returns the string class.
func (b *Builder) StringClass() ClassID { return b.p.StringClass }

// ThrowableClass returns the root of throwable classes.
func (b *Builder) ThrowableClass() ClassID { return b.p.ThrowableClass }

// At sets the source position stamped on nodes created afterwards.
func (b *Builder) At(file string, line int) *Builder {
	b.pos = Pos{File: file, Line: line}
	return b
}

// Class declares a class. A NoClass super defaults to lang.Object except for lang.Object itself.
func (b *Builder) Class(pkg, name string, super ClassID, flags ClassFlags, ifaces ...ClassID) ClassID {
	if super == NoClass && b.p.ObjectClass != NoClass && flags&ClassInterface == 0 {
		super = b.p.ObjectClass
	}
	b.p.Classes = append(b.p.Classes, Class{
		Package:    pkg,
		Name:       name,
		Flags:      flags,
		Super:      super,
		Interfaces: ifaces,
		Enclosing:  NoClass,
		Source:     SourceRange{File: b.pos.File, Line: b.pos.Line},
	})
	return ClassID(len(b.p.Classes) - 1)
}

// Interface declares an interface.
func (b *Builder) Interface(pkg, name string, ifaces ...ClassID) ClassID {
	return b.Class(pkg, name, NoClass, ClassInterface|ClassAbstract, ifaces...)
}

// Nested declares a class nested in outer.
func (b *Builder) Nested(outer ClassID, name string, super ClassID, flags ClassFlags) ClassID {
	o := b.p.Classes[outer]
	c := b.Class(o.Package, o.Name+"."+name, super, flags)
	b.p.Classes[c].Enclosing = outer
	return c
}

// Method declares a method and its parameters.
func (b *Builder) Method(c ClassID, name string, ret TypeRef, flags MethodFlags, params ...Param) (MethodID, []LocalID) {
	if b.p.Classes[c].Is(ClassInterface) && flags&MethodStatic == 0 {
		flags |= MethodAbstract
	}
	b.p.Methods = append(b.p.Methods, Method{
		Name:   name,
		Class:  c,
		Flags:  flags,
		Return: ret,
		Body:   NoStmt,
		Source: SourceRange{File: b.pos.File, Line: b.pos.Line},
	})
	m := MethodID(len(b.p.Methods) - 1)
	b.p.Classes[c].Methods = append(b.p.Classes[c].Methods, m)
	locals := make([]LocalID, len(params))
	for i, prm := range params {
		locals[i] = b.p.AddLocal(m, Local{Name: prm.Name, Type: prm.Type, Flags: LocalParam})
	}
	b.p.Methods[m].Params = locals
	return m, locals
}

// Constructor declares a constructor of c.
func (b *Builder) Constructor(c ClassID, flags MethodFlags, params ...Param) (MethodID, []LocalID) {
	return b.Method(c, "<init>", Prim(TypeVoid), flags|MethodConstructor, params...)
}

// SetBody installs a block of stmts as the body of m.
func (b *Builder) SetBody(m MethodID, stmts ...StmtID) {
	b.p.Methods[m].Body = b.Block(stmts...)
}

// Field declares a field; init may be NoExpr.
func (b *Builder) Field(c ClassID, name string, t TypeRef, flags FieldFlags, init ExprID) FieldID {
	b.p.Fields = append(b.p.Fields, Field{
		Name:   name,
		Class:  c,
		Flags:  flags,
		Type:   t,
		Init:   init,
		Source: SourceRange{File: b.pos.File, Line: b.pos.Line},
	})
	f := FieldID(len(b.p.Fields) - 1)
	b.p.Classes[c].Fields = append(b.p.Classes[c].Fields, f)
	return f
}

// Local declares a local variable of m.
func (b *Builder) Local(m MethodID, name string, t TypeRef) LocalID {
	return b.p.AddLocal(m, Local{Name: name, Type: t})
}

// Entry marks m as an entry point.
func (b *Builder) Entry(m MethodID) { b.p.EntryPoints = append(b.p.EntryPoints, m) }

// Root marks c as an extra root.
func (b *Builder) Root(c ClassID) { b.p.ExtraRoots = append(b.p.ExtraRoots, c) }

func (b *Builder) expr(e Expr) ExprID {
	if e.Pos == (Pos{}) {
		e.Pos = b.pos
	}
	return b.p.AddExpr(e)
}

// NewExpr returns an Expr of kind k with every index field set to "none".
func NewExpr(k ExprKind, t TypeRef) Expr {
	return Expr{
		Kind: k, Type: t,
		X: NoExpr, Y: NoExpr, Z: NoExpr,
		Local: NoLocal, Field: NoField, Method: NoMethod, Class: NoClass,
		Target: Prim(TypeVoid),
	}
}

// NewStmt returns a Stmt of kind k with every index field set to "none".
func NewStmt(k StmtKind) Stmt {
	return Stmt{Kind: k, X: NoExpr, Y: NoExpr, Then: NoStmt, Else: NoStmt, Local: NoLocal, Finally: NoStmt}
}

func (b *Builder) lit(t TypeRef, l Literal) ExprID {
	e := NewExpr(ExprLiteral, t)
	e.Lit = l
	return b.expr(e)
}

func (b *Builder) Int(v int32) ExprID  { return b.lit(Prim(TypeInt), Literal{Kind: LitInt, Int: int64(v)}) }
func (b *Builder) Long(v int64) ExprID { return b.lit(Prim(TypeLong), Literal{Kind: LitLong, Int: v}) }
func (b *Builder) Char(v rune) ExprID  { return b.lit(Prim(TypeChar), Literal{Kind: LitChar, Int: int64(v)}) }
func (b *Builder) Bool(v bool) ExprID  { return b.lit(Prim(TypeBoolean), Literal{Kind: LitBool, Bool: v}) }
func (b *Builder) Null() ExprID        { return b.lit(Prim(TypeNull), Literal{Kind: LitNull}) }
func (b *Builder) Double(v float64) ExprID {
	return b.lit(Prim(TypeDouble), Literal{Kind: LitDouble, Float: v})
}

// Str is a string literal.
func (b *Builder) Str(s string) ExprID {
	return b.lit(ClassType(b.p.StringClass), Literal{Kind: LitString, Str: s})
}

// Ref reads local l.
func (b *Builder) Ref(l LocalID) ExprID {
	e := NewExpr(ExprLocal, b.p.Locals[l].Type)
	e.Local = l
	return b.expr(e)
}

// This is the receiver inside an instance method of c.
func (b *Builder) This(c ClassID) ExprID {
	return b.expr(NewExpr(ExprThis, ClassType(c)))
}

// FieldRef reads field f of the object x; x is NoExpr for static fields.
func (b *Builder) FieldRef(x ExprID, f FieldID) ExprID {
	e := NewExpr(ExprField, b.p.Fields[f].Type)
	e.X, e.Field = x, f
	return b.expr(e)
}

// Bin is a binary operation. Comparisons yield boolean, string concatenation yields String.
func (b *Builder) Bin(op Op, x, y ExprID) ExprID {
	t := b.p.Exprs[x].Type
	switch {
	case op.IsComparison():
		t = Prim(TypeBoolean)
	case op == OpAnd || op == OpOr:
		t = Prim(TypeBoolean)
	case op == OpAdd && (b.isString(x) || b.isString(y)):
		t = ClassType(b.p.StringClass)
	case op != OpShl && op != OpShr && op != OpUshr:
		t = Promote(t, b.p.Exprs[y].Type)
	}
	e := NewExpr(ExprBinary, t)
	e.Op, e.X, e.Y = op, x, y
	return b.expr(e)
}

func (b *Builder) isString(x ExprID) bool {
	t := b.p.Exprs[x].Type
	return t.Kind == TypeClass && t.Dims == 0 && t.Class == b.p.StringClass
}

// Un is a unary operation.
func (b *Builder) Un(op Op, x ExprID) ExprID {
	t := b.p.Exprs[x].Type
	if op == OpNot {
		t = Prim(TypeBoolean)
	}
	e := NewExpr(ExprUnary, t)
	e.Op, e.X = op, x
	return b.expr(e)
}

// Assign stores y into the target x.
func (b *Builder) Assign(x, y ExprID) ExprID {
	return b.Compound(OpAssign, x, y)
}

// Compound is x op= y.
func (b *Builder) Compound(op Op, x, y ExprID) ExprID {
	e := NewExpr(ExprAssign, b.p.Exprs[x].Type)
	e.Op, e.X, e.Y = op, x, y
	return b.expr(e)
}

// Call invokes instance method m on x with virtual dispatch.
func (b *Builder) Call(x ExprID, m MethodID, args ...ExprID) ExprID {
	e := NewExpr(ExprCall, b.p.Methods[m].Return)
	e.X, e.Method, e.Args, e.Dispatch = x, m, args, DispatchVirtual
	return b.expr(e)
}

// SuperCall invokes m on x without virtual dispatch.
func (b *Builder) SuperCall(x ExprID, m MethodID, args ...ExprID) ExprID {
	id := b.Call(x, m, args...)
	b.p.Exprs[id].Dispatch = DispatchDirect
	return id
}

// StaticCall invokes static method m.
func (b *Builder) StaticCall(m MethodID, args ...ExprID) ExprID {
	e := NewExpr(ExprCall, b.p.Methods[m].Return)
	e.Method, e.Args, e.Dispatch = m, args, DispatchStatic
	return b.expr(e)
}

// New allocates an instance of c using constructor ctor.
func (b *Builder) New(c ClassID, ctor MethodID, args ...ExprID) ExprID {
	e := NewExpr(ExprNew, ClassType(c))
	e.Class, e.Method, e.Args = c, ctor, args
	return b.expr(e)
}

// NewArray allocates a one-dimensional array of elem with length n.
func (b *Builder) NewArray(elem TypeRef, n ExprID) ExprID {
	e := NewExpr(ExprNewArray, elem.Array())
	e.X = n
	return b.expr(e)
}

// Index reads element i of array a.
func (b *Builder) Index(a, i ExprID) ExprID {
	e := NewExpr(ExprArrayRef, b.p.Exprs[a].Type.Elem())
	e.X, e.Y = a, i
	return b.expr(e)
}

// Len is the length of array a.
func (b *Builder) Len(a ExprID) ExprID {
	e := NewExpr(ExprArrayLength, Prim(TypeInt))
	e.X = a
	return b.expr(e)
}

// Cast converts x to t.
func (b *Builder) Cast(t TypeRef, x ExprID) ExprID {
	e := NewExpr(ExprCast, t)
	e.Target, e.X = t, x
	return b.expr(e)
}

// InstanceOf tests whether x is a t.
func (b *Builder) InstanceOf(t TypeRef, x ExprID) ExprID {
	e := NewExpr(ExprInstanceOf, Prim(TypeBoolean))
	e.Target, e.X = t, x
	return b.expr(e)
}

// Cond is c ? x : y.
func (b *Builder) Cond(c, x, y ExprID) ExprID {
	e := NewExpr(ExprConditional, b.p.Exprs[x].Type)
	e.X, e.Y, e.Z = c, x, y
	return b.expr(e)
}

// Rebind requests a deferred-binding instance of the class named request, statically typed as t.
func (b *Builder) Rebind(request ClassID) ExprID {
	e := NewExpr(ExprRebind, ClassType(request))
	e.Name = b.p.Classes[request].QualifiedName()
	e.Class = request
	return b.expr(e)
}

// RunAsync schedules the static callback cb behind a new split point.
func (b *Builder) RunAsync(cb MethodID) ExprID {
	b.p.SplitPoints = append(b.p.SplitPoints, cb)
	e := NewExpr(ExprRunAsync, Prim(TypeVoid))
	e.Method, e.Index = cb, len(b.p.SplitPoints)
	return b.expr(e)
}

func (b *Builder) stmt(s Stmt) StmtID {
	if s.Pos == (Pos{}) {
		s.Pos = b.pos
	}
	return b.p.AddStmt(s)
}

// Block groups stmts.
func (b *Builder) Block(stmts ...StmtID) StmtID {
	s := NewStmt(StmtBlock)
	s.Body = stmts
	return b.stmt(s)
}

// Do evaluates x for its effects.
func (b *Builder) Do(x ExprID) StmtID {
	s := NewStmt(StmtExpr)
	s.X = x
	return b.stmt(s)
}

// Decl declares l with an optional initializer.
func (b *Builder) Decl(l LocalID, init ExprID) StmtID {
	s := NewStmt(StmtLocal)
	s.Local, s.X = l, init
	return b.stmt(s)
}

// If is a conditional statement; els may be NoStmt.
func (b *Builder) If(c ExprID, then, els StmtID) StmtID {
	s := NewStmt(StmtIf)
	s.X, s.Then, s.Else = c, then, els
	return b.stmt(s)
}

// While is a pre-tested loop.
func (b *Builder) While(c ExprID, body StmtID) StmtID {
	s := NewStmt(StmtWhile)
	s.X, s.Then = c, body
	return b.stmt(s)
}

// Return returns x, or nothing when x is NoExpr.
func (b *Builder) Return(x ExprID) StmtID {
	s := NewStmt(StmtReturn)
	s.X = x
	return b.stmt(s)
}

// Throw throws x.
func (b *Builder) Throw(x ExprID) StmtID {
	s := NewStmt(StmtThrow)
	s.X = x
	return b.stmt(s)
}

// Try is a try statement; fin may be NoStmt.
func (b *Builder) Try(body StmtID, catches []Catch, fin StmtID) StmtID {
	s := NewStmt(StmtTry)
	s.Then, s.Catches, s.Finally = body, catches, fin
	return b.stmt(s)
}

// Assert checks c, with an optional message expression.
func (b *Builder) Assert(c, msg ExprID) StmtID {
	s := NewStmt(StmtAssert)
	s.X, s.Y = c, msg
	return b.stmt(s)
}

func (b *Builder) Break() StmtID    { return b.stmt(NewStmt(StmtBreak)) }
func (b *Builder) Continue() StmtID { return b.stmt(NewStmt(StmtContinue)) }
