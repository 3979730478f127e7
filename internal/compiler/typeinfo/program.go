package typeinfo

import (
	"fmt"
	"strings"

	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/core/ports"
)

// FromProgram registers every live class of p and refreshes the registry.
func FromProgram(p *ast.Program, logger ports.Logger, opts ...Option) (*Registry, RefreshReport, error) {
	r := New(opts...)
	for i := range p.Classes {
		c := &p.Classes[i]
		if c.Dead {
			continue
		}
		r.AddType(declFor(p, ast.ClassID(i)))
	}
	report, err := r.Refresh(logger)
	if err != nil {
		return nil, report, err
	}
	return r, report, nil
}

// declFor converts a source class into a registry declaration. When the front end kept no
// declaration text, a canonical signature listing stands in for it so content hashes still
// change exactly when the declaration does.
func declFor(p *ast.Program, id ast.ClassID) TypeDecl {
	c := &p.Classes[id]
	decl := TypeDecl{
		Package:   c.Package,
		Name:      c.Name,
		Interface: c.Is(ast.ClassInterface),
		Range:     c.Source,
		Decl:      id,
	}
	if c.Is(ast.ClassAbstract) {
		decl.Modifiers |= ModAbstract
	}
	if c.Is(ast.ClassFinal) {
		decl.Modifiers |= ModFinal
	}
	if c.Super != ast.NoClass {
		decl.Super = p.Classes[c.Super].QualifiedName()
	}
	for _, in := range c.Interfaces {
		decl.Interfaces = append(decl.Interfaces, p.Classes[in].QualifiedName())
	}
	for _, fid := range c.Fields {
		f := &p.Fields[fid]
		if f.Dead {
			continue
		}
		fd := FieldDecl{Name: f.Name, Type: p.TypeString(f.Type), TypeArgs: f.TypeArgs}
		if f.Is(ast.FieldStatic) {
			fd.Modifiers |= ModStatic
		}
		if f.Is(ast.FieldFinal) {
			fd.Modifiers |= ModFinal
		}
		if f.Is(ast.FieldPrivate) {
			fd.Modifiers |= ModPrivate
		}
		decl.Fields = append(decl.Fields, fd)
	}
	for _, mid := range c.Methods {
		m := &p.Methods[mid]
		if m.Dead {
			continue
		}
		md := MethodDecl{
			Name:        m.Name,
			Constructor: m.Is(ast.MethodConstructor),
			Return:      p.TypeString(m.Return),
			TypeArgs:    m.TypeArgs,
		}
		for flag, mod := range map[ast.MethodFlags]Modifier{
			ast.MethodStatic: ModStatic, ast.MethodFinal: ModFinal, ast.MethodPrivate: ModPrivate,
			ast.MethodAbstract: ModAbstract, ast.MethodNative: ModNative,
		} {
			if m.Is(flag) {
				md.Modifiers |= mod
			}
		}
		for _, l := range m.Params {
			md.Params = append(md.Params, ParamDecl{
				Name:     p.Locals[l].Name,
				Type:     p.TypeString(p.Locals[l].Type),
				TypeArgs: p.Locals[l].TypeArgs,
			})
		}
		decl.Methods = append(decl.Methods, md)
	}
	decl.Source = c.Decl
	if len(decl.Source) == 0 {
		decl.Source = []byte(signatureText(decl))
	}
	return decl
}

func signatureText(d TypeDecl) string {
	var b strings.Builder
	kind := "class"
	if d.Interface {
		kind = "interface"
	}
	fmt.Fprintf(&b, "%s %s.%s extends %s implements %s {\n", kind, d.Package, d.Name, d.Super,
		strings.Join(d.Interfaces, ","))
	for _, f := range d.Fields {
		fmt.Fprintf(&b, "  %d %s %s<%s>;\n", f.Modifiers, f.Type, f.Name, strings.Join(f.TypeArgs, ","))
	}
	for _, m := range d.Methods {
		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			params[i] = p.Type + " " + p.Name
		}
		fmt.Fprintf(&b, "  %d %s %s(%s);\n", m.Modifiers, m.Return, m.Name, strings.Join(params, ","))
	}
	b.WriteString("}")
	return b.String()
}
