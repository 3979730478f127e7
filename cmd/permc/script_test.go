package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"go.trai.ch/permc/internal/adapters/frontend"
	"go.trai.ch/permc/internal/compiler/ast"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"permc": func() { os.Exit(run()) },
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   filepath.Join("testdata", "script"),
		Setup: setupScript,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"mkprogram": cmdMkprogram,
		},
	})
}

func setupScript(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	env.Setenv("CI", "true")

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	return nil
}

// cmdMkprogram writes a program file for the front end.
//
//	mkprogram [-cyclic] file
//
// The program has a Console class with a native log method and an app.Main entry point
// calling it. With -cyclic, lang.Object extends app.Main.
func cmdMkprogram(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! mkprogram")
	}
	cyclic := len(args) == 2 && args[0] == "-cyclic"
	if cyclic {
		args = args[1:]
	}
	if len(args) != 1 {
		ts.Fatalf("usage: mkprogram [-cyclic] file")
	}

	b := ast.NewBuilder()
	str := ast.ClassType(b.StringClass())
	console := b.Class("app", "Console", ast.NoClass, 0)
	log, _ := b.Method(console, "log", ast.Prim(ast.TypeVoid), ast.MethodStatic|ast.MethodNative,
		ast.Param{Name: "s", Type: str})
	b.Program().Methods[log].Native = "console.log(s);"

	main := b.Class("app", "Main", ast.NoClass, 0)
	entry, _ := b.Method(main, "main", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(entry, b.Do(b.StaticCall(log, b.Str("hi"))))
	p := b.Program()
	if cyclic {
		p.Classes[p.ObjectClass].Super = main
	}

	ts.Check(frontend.Save(ts.MkAbs(args[0]), p))
}
