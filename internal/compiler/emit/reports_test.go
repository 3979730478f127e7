package emit_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/codegen"
	"go.trai.ch/permc/internal/compiler/emit"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/compiler/naming"
	"go.trai.ch/permc/internal/compiler/split"
	"go.trai.ch/permc/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// generateLoader compiles:
//
//	class Helper { static int work() { return 1; } }
//	class Loader { static void onLoad() { Helper.work(); } }
//	class Main { static void main() { runAsync(Loader.onLoad); } }
func generateLoader(t *testing.T) (*codegen.Result, *split.Result) {
	t.Helper()
	b := ast.NewBuilder()
	helper := b.At("app/Helper.java", 3).Class("app", "Helper", ast.NoClass, 0)
	work, _ := b.At("app/Helper.java", 4).Method(helper, "work", ast.Prim(ast.TypeInt), ast.MethodStatic)
	b.SetBody(work, b.Return(b.Int(1)))

	loader := b.At("app/Loader.java", 1).Class("app", "Loader", ast.NoClass, 0)
	onLoad, _ := b.At("app/Loader.java", 2).Method(loader, "onLoad", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(onLoad, b.Do(b.StaticCall(work)))

	main := b.At("app/Main.java", 1).Class("app", "Main", ast.NoClass, 0)
	run, _ := b.At("app/Main.java", 2).Method(main, "main", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(run, b.Do(b.RunAsync(onLoad)))
	b.Entry(run)

	gen, err := codegen.Generate(b.Program(), js.DefaultLibrary(), domain.DefaultCompileOptions(), nil)
	require.NoError(t, err)
	naming.Pretty{}.Apply(gen.Program)
	return gen, split.Split(gen.Program)
}

func symbolRows(t *testing.T, table []byte) map[string][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(table)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"name", "kind", "class", "member", "qualified", "file", "line"}, records[0])
	rows := make(map[string][]string)
	for _, r := range records[1:] {
		rows[r[4]] = r
	}
	return rows
}

func TestSymbolTable(t *testing.T) {
	gen, res := generateLoader(t)

	table, err := emit.SymbolTable(gen.Names, res)
	require.NoError(t, err)
	rows := symbolRows(t, table)

	assert.Equal(t,
		[]string{"app_Helper_work", "method", "app.Helper", "work()", "app.Helper::work()", "app/Helper.java", "4"},
		rows["app.Helper::work()"])
	assert.Equal(t, "class", rows["app.Main"][1])
}

func TestSymbolTableSkipsNamesNotEmitted(t *testing.T) {
	gen, res := generateLoader(t)
	require.Greater(t, len(res.Fragments), 1)

	primaryOnly := &split.Result{Fragments: res.Fragments[:1]}
	table, err := emit.SymbolTable(gen.Names, primaryOnly)
	require.NoError(t, err)
	rows := symbolRows(t, table)

	assert.Contains(t, rows, "app.Main::main()")
	assert.NotContains(t, rows, "app.Helper::work()")
}

func TestFragments(t *testing.T) {
	gen, res := generateLoader(t)

	frags, err := emit.Fragments(res, emit.NewRenderer(), false)
	require.NoError(t, err)
	require.Len(t, frags, 2)
	assert.Contains(t, string(frags[0]), "function app_Main_main(){$runAsync(1);}")
	assert.NotContains(t, string(frags[0]), "app_Helper_work")
	assert.Contains(t, string(frags[1]), "$registerAsync(1,app_Loader_onLoad);")
	assert.Contains(t, string(frags[1]), "function app_Helper_work(){return 1;}")
	assert.Len(t, gen.Program.Splits, 1)
}

func TestReports(t *testing.T) {
	gen, res := generateLoader(t)

	reports, err := emit.Reports(res, gen.Names, emit.NewRenderer(), false, true)
	require.NoError(t, err)

	var deps []struct {
		Method   string   `yaml:"method"`
		Fragment int      `yaml:"fragment"`
		Source   string   `yaml:"source"`
		Calls    []string `yaml:"calls"`
	}
	require.NoError(t, yaml.Unmarshal(reports.Dependencies, &deps))
	var onLoad, mainDeps bool
	for _, d := range deps {
		switch d.Method {
		case "app.Loader::onLoad()":
			onLoad = true
			assert.Equal(t, 1, d.Fragment)
			assert.Equal(t, "app/Loader.java:2", d.Source)
			assert.Equal(t, []string{"app.Helper::work()"}, d.Calls)
		case "app.Main::main()":
			mainDeps = true
			assert.Zero(t, d.Fragment)
			assert.Empty(t, d.Calls)
		}
	}
	assert.True(t, onLoad)
	assert.True(t, mainDeps)

	var points struct {
		Initial struct {
			Fragment int `yaml:"fragment"`
			Bytes    int `yaml:"bytes"`
		} `yaml:"initial"`
		SplitPoints []struct {
			Index    int    `yaml:"index"`
			Callback string `yaml:"callback"`
			Fragment int    `yaml:"fragment"`
			Bytes    int    `yaml:"bytes"`
		} `yaml:"split_points"`
	}
	require.NoError(t, yaml.Unmarshal(reports.SplitPoints, &points))
	assert.Positive(t, points.Initial.Bytes)
	require.Len(t, points.SplitPoints, 1)
	assert.Equal(t, "app.Loader::onLoad()", points.SplitPoints[0].Callback)
	assert.Equal(t, 1, points.SplitPoints[0].Fragment)
	assert.Positive(t, points.SplitPoints[0].Bytes)

	stories := string(reports.Stories)
	assert.Contains(t, stories, "app.Helper")
	assert.Contains(t, stories, "app.Helper::work()")
}
