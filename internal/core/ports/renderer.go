package ports

import "go.trai.ch/permc/internal/compiler/js"

// Renderer turns a normalized, named output tree into text.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Render writes stmts in order. Pretty selects indented output.
	Render(stmts []js.Stmt, pretty bool) ([]byte, error)
}
