package naming

import (
	"strings"

	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/core/domain"
)

// Pretty keeps the readable identifier of every name, adding a numeric suffix on collisions.
type Pretty struct{}

func (Pretty) Mode() domain.OutputMode { return domain.OutputModePretty }

func (Pretty) Apply(prog *js.Program) Stats {
	return Stats{Renamed: assign(collect(prog), inOrder, func(js.NameKind) namer {
		return func(n *js.Name, taken map[string]bool) string {
			return unique(n.Ident, taken)
		}
	})}
}

// Detailed names globals and properties after their fully qualified source element, signature
// included. Locals keep their readable identifier.
type Detailed struct{}

func (Detailed) Mode() domain.OutputMode { return domain.OutputModeDetailed }

func (Detailed) Apply(prog *js.Program) Stats {
	return Stats{Renamed: assign(collect(prog), inOrder, func(kind js.NameKind) namer {
		return func(n *js.Name, taken map[string]bool) string {
			if kind == js.NameLocal {
				return unique(n.Ident, taken)
			}
			return unique(mangle(n.Long), taken)
		}
	})}
}

var mangler = strings.NewReplacer("::", "__", ".", "_", "(", "__", ")", "", ",", "_", "[]", "_$", "\"", "")

// mangle turns a qualified source name such as app.Main::run(int,java.lang.String) into an
// identifier.
func mangle(long string) string {
	out := []byte(mangler.Replace(long))
	if len(out) == 0 {
		return "_"
	}
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '$':
		case c >= '0' && c <= '9' && i > 0:
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
