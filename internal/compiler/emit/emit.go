package emit

import (
	"go.trai.ch/permc/internal/compiler/split"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/zerr"
)

// Fragments renders every fragment in load order.
func Fragments(res *split.Result, r ports.Renderer, pretty bool) ([][]byte, error) {
	out := make([][]byte, 0, len(res.Fragments))
	for _, f := range res.Fragments {
		text, err := r.Render(f.Stmts, pretty)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to render fragment"), "fragment", f.Index)
		}
		out = append(out, text)
	}
	return out, nil
}
