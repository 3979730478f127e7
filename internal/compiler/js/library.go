package js

import "slices"

// Runtime helper names. Normalization introduces calls to them; code generation declares the
// ones a program uses.
const (
	RTDefineClass   = "$defineClass"
	RTInstanceOf    = "$instanceOf"
	RTIsString      = "$isString"
	RTIsArray       = "$isArray"
	RTDynamicCast   = "$dynamicCast"
	RTCastToString  = "$castToString"
	RTIntDiv        = "$intDiv"
	RTIntRem        = "$intRem"
	RTLongWrap      = "$longWrap"
	RTLongDiv       = "$longDiv"
	RTLongRem       = "$longRem"
	RTLongUshr      = "$longUshr"
	RTLongFromInt   = "$longFromInt"
	RTLongToInt     = "$longToInt"
	RTLongToDouble  = "$longToDouble"
	RTLongFromFloat = "$longFromDouble"
	RTNewArray      = "$newArray"
	RTAssert        = "$assert"
	RTRunAsync      = "$runAsync"
	RTRegisterAsync = "$registerAsync"
)

// NativeFunction is a runtime helper with a hand-written body.
type NativeFunction struct {
	_      struct{} `cbor:",toarray"`
	Name   string
	Params []string
	Body   string
	Deps   []string
}

// Library is the runtime the generated program links against. It is plain data so the shared
// program cache can serialize it next to the source tree.
type Library struct {
	Functions []NativeFunction
}

// Lookup finds a helper by name.
func (l *Library) Lookup(name string) (NativeFunction, bool) {
	i := slices.IndexFunc(l.Functions, func(f NativeFunction) bool { return f.Name == name })
	if i < 0 {
		return NativeFunction{}, false
	}
	return l.Functions[i], true
}

// Closure returns names plus every helper they depend on, in library order.
func (l *Library) Closure(names []string) []NativeFunction {
	want := make(map[string]bool)
	var visit func(string)
	visit = func(n string) {
		if want[n] {
			return
		}
		f, ok := l.Lookup(n)
		if !ok {
			return
		}
		want[n] = true
		for _, d := range f.Deps {
			visit(d)
		}
	}
	for _, n := range names {
		visit(n)
	}
	var out []NativeFunction
	for _, f := range l.Functions {
		if want[f.Name] {
			out = append(out, f)
		}
	}
	return out
}

// DefaultLibrary returns the standard runtime.
func DefaultLibrary() *Library {
	const classCast = `throw new Error("ClassCastException");`
	return &Library{Functions: []NativeFunction{
		{
			Name:   RTDefineClass,
			Params: []string{"ctor", "sup", "ifaces", "name"},
			Body: `if (sup) { ctor.prototype = Object.create(sup.prototype); ctor.prototype.constructor = ctor; }
var c = new Set(sup ? sup.prototype.$castable : []);
c.add(ctor);
for (var i = 0; i < ifaces.length; i++) { ifaces[i].prototype.$castable.forEach(function (t) { c.add(t); }); }
ctor.prototype.$castable = c;
if (name !== undefined) { ctor.prototype.$className = name; }`,
		},
		{
			Name:   RTInstanceOf,
			Params: []string{"x", "t"},
			Body:   `return x != null && x.$castable !== undefined && x.$castable.has(t);`,
		},
		{
			Name:   RTIsString,
			Params: []string{"x"},
			Body:   `return typeof x === "string";`,
		},
		{
			Name:   RTIsArray,
			Params: []string{"x"},
			Body:   `return Array.isArray(x);`,
		},
		{
			Name:   RTDynamicCast,
			Params: []string{"x", "t"},
			Body:   `if (x != null && !$instanceOf(x, t)) { ` + classCast + ` } return x;`,
			Deps:   []string{RTInstanceOf},
		},
		{
			Name:   RTCastToString,
			Params: []string{"x"},
			Body:   `if (x != null && typeof x !== "string") { ` + classCast + ` } return x;`,
		},
		{
			Name:   RTIntDiv,
			Params: []string{"a", "b"},
			Body:   `if (b === 0) { throw new Error("ArithmeticException: / by zero"); } return (a / b) | 0;`,
		},
		{
			Name:   RTIntRem,
			Params: []string{"a", "b"},
			Body:   `if (b === 0) { throw new Error("ArithmeticException: / by zero"); } return (a % b) | 0;`,
		},
		{
			Name:   RTLongWrap,
			Params: []string{"x"},
			Body:   `return BigInt.asIntN(64, x);`,
		},
		{
			Name:   RTLongDiv,
			Params: []string{"a", "b"},
			Body:   `if (b === 0n) { throw new Error("ArithmeticException: / by zero"); } return BigInt.asIntN(64, a / b);`,
		},
		{
			Name:   RTLongRem,
			Params: []string{"a", "b"},
			Body:   `if (b === 0n) { throw new Error("ArithmeticException: / by zero"); } return a % b;`,
		},
		{
			Name:   RTLongUshr,
			Params: []string{"a", "b"},
			Body:   `return BigInt.asIntN(64, BigInt.asUintN(64, a) >> (b & 63n));`,
		},
		{
			Name:   RTLongFromInt,
			Params: []string{"x"},
			Body:   `return BigInt(x);`,
		},
		{
			Name:   RTLongToInt,
			Params: []string{"x"},
			Body:   `return Number(BigInt.asIntN(32, x));`,
		},
		{
			Name:   RTLongToDouble,
			Params: []string{"x"},
			Body:   `return Number(x);`,
		},
		{
			Name:   RTLongFromFloat,
			Params: []string{"x"},
			Body:   `return isFinite(x) ? BigInt.asIntN(64, BigInt(Math.trunc(x))) : 0n;`,
		},
		{
			Name:   RTNewArray,
			Params: []string{"n", "v"},
			Body:   `var a = new Array(n); for (var i = 0; i < n; i++) { a[i] = v; } return a;`,
		},
		{
			Name:   RTAssert,
			Params: []string{"c", "msg"},
			Body:   `if (!c) { throw new Error(msg === undefined ? "AssertionError" : "AssertionError: " + msg); }`,
		},
		{
			Name:   RTRunAsync,
			Params: []string{"i"},
			Body: `var cb = ($runAsync.callbacks || {})[i];
if (cb) { setTimeout(cb, 0); return; }
if (typeof $loadFragment === "function") { $loadFragment(i, function () { $runAsync(i); }); }`,
		},
		{
			Name:   RTRegisterAsync,
			Params: []string{"i", "cb"},
			Body:   `$runAsync.callbacks = $runAsync.callbacks || {}; $runAsync.callbacks[i] = cb;`,
			Deps:   []string{RTRunAsync},
		},
	}}
}
