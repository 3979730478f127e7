package progrock

import (
	"fmt"
	"io"

	"github.com/vito/progrock"
	"go.trai.ch/permc/internal/core/domain"
)

// permutationVertex is the progress record of one permutation compile.
type permutationVertex struct {
	rec *progrock.VertexRecorder
}

func (p permutationVertex) Stdout() io.Writer { return p.rec.Stdout() }

// Log writes "[level] msg"; errors go to the vertex's stderr stream.
func (p permutationVertex) Log(level domain.LogLevel, msg string) {
	w := p.rec.Stdout()
	if level >= domain.LogLevelError {
		w = p.rec.Stderr()
	}
	_, _ = fmt.Fprintf(w, "[%s] %s\n", level, msg)
}

func (p permutationVertex) Complete(err error) { p.rec.Done(err) }
