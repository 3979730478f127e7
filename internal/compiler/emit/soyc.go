package emit

import (
	"bytes"
	"maps"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.trai.ch/permc/internal/compiler/codegen"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/compiler/split"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"gopkg.in/yaml.v3"
)

const (
	storyRuntime = "(runtime)"
	storyOther   = "(other)"
)

type methodDeps struct {
	Method     string   `yaml:"method"`
	Fragment   int      `yaml:"fragment"`
	Source     string   `yaml:"source,omitempty"`
	Calls      []string `yaml:"calls,omitempty"`
	Dispatches []string `yaml:"dispatches,omitempty"`
	Classes    []string `yaml:"classes,omitempty"`
}

type splitPointReport struct {
	Index      int    `yaml:"index"`
	Callback   string `yaml:"callback"`
	Source     string `yaml:"source,omitempty"`
	Fragment   int    `yaml:"fragment"`
	Statements int    `yaml:"statements"`
	Bytes      int    `yaml:"bytes"`
}

type fragmentReport struct {
	Fragment   int `yaml:"fragment"`
	Statements int `yaml:"statements"`
	Bytes      int `yaml:"bytes"`
}

type splitPointsDoc struct {
	Initial     fragmentReport     `yaml:"initial"`
	SplitPoints []splitPointReport `yaml:"split_points,omitempty"`
	Leftovers   *fragmentReport    `yaml:"leftovers,omitempty"`
}

// Reports derives the dependency, size and split point reports of one permutation. Sizes are
// measured by rendering each top-level statement on its own; extra adds a per-member size
// breakdown.
func Reports(res *split.Result, names *codegen.NameMap, r ports.Renderer, pretty, extra bool) (*domain.DiagnosticArtifacts, error) {
	sizes := make([][]int, len(res.Fragments))
	for i, f := range res.Fragments {
		sizes[i] = make([]int, len(f.Stmts))
		for j, s := range f.Stmts {
			text, err := r.Render([]js.Stmt{s}, pretty)
			if err != nil {
				return nil, err
			}
			sizes[i][j] = len(text)
		}
	}

	deps, err := yaml.Marshal(dependencies(res, names))
	if err != nil {
		return nil, err
	}
	points, err := yaml.Marshal(splitPoints(res, sizes))
	if err != nil {
		return nil, err
	}
	return &domain.DiagnosticArtifacts{
		Dependencies: deps,
		Stories:      stories(res, sizes, extra),
		SplitPoints:  points,
	}, nil
}

func dependencies(res *split.Result, names *codegen.NameMap) []methodDeps {
	var out []methodDeps
	for _, f := range res.Fragments {
		for _, s := range f.Stmts {
			fd, ok := s.(*js.FuncDecl)
			if !ok {
				continue
			}
			if e, ok := names.Source(fd.Fn.Name); !ok || e.Kind != codegen.ElementMethod {
				continue
			}
			d := methodDeps{Method: fd.Fn.Name.Long, Fragment: f.Index, Source: location(fd.Fn.Name.Origin)}
			calls, dispatches, classes := make(map[string]bool), make(map[string]bool), make(map[string]bool)
			js.Walk(fd.Fn, func(n js.Node) bool {
				var name *js.Name
				switch n := n.(type) {
				case *js.NameRef:
					name = n.Name
				case *js.Dot:
					name = n.Prop
				default:
					return true
				}
				e, ok := names.Source(name)
				if !ok || name == fd.Fn.Name {
					return true
				}
				switch e.Kind {
				case codegen.ElementMethod:
					calls[name.Long] = true
				case codegen.ElementSlot:
					dispatches[name.Long] = true
				case codegen.ElementClass:
					classes[name.Long] = true
				}
				return true
			})
			d.Calls = slices.Sorted(maps.Keys(calls))
			d.Dispatches = slices.Sorted(maps.Keys(dispatches))
			d.Classes = slices.Sorted(maps.Keys(classes))
			out = append(out, d)
		}
	}
	return out
}

func splitPoints(res *split.Result, sizes [][]int) splitPointsDoc {
	report := func(i int) fragmentReport {
		return fragmentReport{Fragment: res.Fragments[i].Index, Statements: len(sizes[i]), Bytes: sum(sizes[i])}
	}
	doc := splitPointsDoc{Initial: report(0)}
	for i, f := range res.Fragments {
		switch f.Kind {
		case split.KindExclusive:
			fr := report(i)
			doc.SplitPoints = append(doc.SplitPoints, splitPointReport{
				Index:      f.Split.Index,
				Callback:   f.Split.Callback.Long,
				Source:     location(f.Split.Callback.Origin),
				Fragment:   fr.Fragment,
				Statements: fr.Statements,
				Bytes:      fr.Bytes,
			})
		case split.KindLeftovers:
			fr := report(i)
			doc.Leftovers = &fr
		}
	}
	return doc
}

// stories renders the size breakdown tables: per fragment, per class and, with extra, per
// top-level declaration.
func stories(res *split.Result, sizes [][]int, extra bool) []byte {
	var buf bytes.Buffer

	frags := table.NewWriter()
	frags.SetStyle(table.StyleLight)
	frags.SetTitle("Fragments")
	frags.AppendHeader(table.Row{"Fragment", "Kind", "Statements", "Bytes"})
	total := 0
	for i, f := range res.Fragments {
		n := sum(sizes[i])
		total += n
		frags.AppendRow(table.Row{f.Index, f.Kind.String(), len(f.Stmts), n})
	}
	frags.AppendFooter(table.Row{"", "total", "", total})
	buf.WriteString(frags.Render())
	buf.WriteString("\n\n")

	type key struct {
		story    string
		fragment int
	}
	byClass := make(map[key]int)
	var order []key
	members := table.NewWriter()
	members.SetStyle(table.StyleLight)
	members.SetTitle("Declarations")
	members.AppendHeader(table.Row{"Declaration", "Class", "Fragment", "Bytes"})
	for i, f := range res.Fragments {
		for j, s := range f.Stmts {
			k := key{story: story(s), fragment: f.Index}
			if _, seen := byClass[k]; !seen {
				order = append(order, k)
			}
			byClass[k] += sizes[i][j]
			if n := js.Defines(s); extra && n != nil {
				members.AppendRow(table.Row{n.Long, k.story, f.Index, sizes[i][j]})
			}
		}
	}

	classes := table.NewWriter()
	classes.SetStyle(table.StyleLight)
	classes.SetTitle("Classes")
	classes.AppendHeader(table.Row{"Class", "Fragment", "Bytes"})
	slices.SortStableFunc(order, func(a, b key) int { return byClass[b] - byClass[a] })
	for _, k := range order {
		classes.AppendRow(table.Row{k.story, k.fragment, byClass[k]})
	}
	buf.WriteString(classes.Render())
	buf.WriteString("\n")
	if extra {
		buf.WriteString("\n")
		buf.WriteString(members.Render())
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// story names the class a top-level statement is charged to.
func story(s js.Stmt) string {
	n := js.Defines(s)
	if n == nil {
		n = assignedClass(s)
	}
	switch {
	case n == nil:
		return storyOther
	case !n.Obfuscatable:
		return storyRuntime
	case n.Origin.Class != "":
		return n.Origin.Class
	default:
		return storyOther
	}
}

// assignedClass returns the class marker a prototype assignment or class registration refers to.
func assignedClass(s js.Stmt) *js.Name {
	es, ok := s.(*js.ExprStmt)
	if !ok {
		return nil
	}
	var e js.Expr
	switch x := es.X.(type) {
	case *js.Assign:
		e = x.X
	case *js.Call:
		ref, ok := x.Fn.(*js.NameRef)
		if !ok || ref.Name.Ident != js.RTDefineClass || len(x.Args) == 0 {
			return nil
		}
		e = x.Args[0]
	default:
		return nil
	}
	for {
		switch x := e.(type) {
		case *js.Dot:
			e = x.X
		case *js.NameRef:
			return x.Name
		default:
			return nil
		}
	}
}

func location(o js.Origin) string {
	switch {
	case o.File == "":
		return ""
	case o.Line <= 0:
		return o.File
	default:
		return o.File + ":" + strconv.Itoa(o.Line)
	}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
