package naming

// reservedWords can never be used as identifiers.
var reservedWords = []string{
	"await", "break", "case", "catch", "class", "const", "continue", "debugger", "default", "delete",
	"do", "else", "enum", "export", "extends", "false", "finally", "for", "function", "if", "implements",
	"import", "in", "instanceof", "interface", "let", "new", "null", "package", "private", "protected",
	"public", "return", "static", "super", "switch", "this", "throw", "true", "try", "typeof", "var",
	"void", "while", "with", "yield", "of",
	"arguments", "eval", "undefined", "NaN", "Infinity",
}

// hostGlobals are referenced by runtime helper bodies as raw text, so no generated global may
// shadow them.
var hostGlobals = []string{
	"Array", "BigInt", "Error", "Math", "Number", "Object", "Set", "String",
	"globalThis", "isFinite", "setTimeout", "$loadFragment",
}

// hostProperties are set or read by the runtime and the host.
var hostProperties = []string{
	"prototype", "constructor", "call", "apply", "length", "callbacks",
	"$castable", "$className", "toString", "valueOf", "hasOwnProperty", "__proto__",
}

func newTaken(lists ...[]string) map[string]bool {
	taken := make(map[string]bool)
	for _, l := range lists {
		for _, s := range l {
			taken[s] = true
		}
	}
	return taken
}
