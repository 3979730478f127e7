// Package app implements the application layer for permc.
package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.trai.ch/permc/internal/adapters/fs"     //nolint:depguard // Wired in app layer
	"go.trai.ch/permc/internal/adapters/oracle" //nolint:depguard // Wired in app layer
	"go.trai.ch/permc/internal/compiler/emit"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/compiler/normalize"
	"go.trai.ch/permc/internal/compiler/typeinfo"
	"go.trai.ch/permc/internal/compiler/unified"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/permc/internal/engine/pipeline"
	"go.trai.ch/permc/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	logger     ports.Logger
	options    ports.OptionsLoader
	modules    ports.ModuleLoader
	programs   ports.ProgramLoader
	oracles    ports.OracleFactory
	caches     ports.ByteCacheOpener
	writer     ports.ArtifactWriter
	verifier   *fs.Verifier
	scheduler  *scheduler.Scheduler
	tracer     ports.Tracer
	teaOptions []tea.ProgramOption
}

// New creates a new App instance.
func New(
	log ports.Logger,
	options ports.OptionsLoader,
	modules ports.ModuleLoader,
	programs ports.ProgramLoader,
	oracles ports.OracleFactory,
	caches ports.ByteCacheOpener,
	writer ports.ArtifactWriter,
	verifier *fs.Verifier,
	sched *scheduler.Scheduler,
	tracer ports.Tracer,
) *App {
	return &App{
		logger:    log,
		options:   options,
		modules:   modules,
		programs:  programs,
		oracles:   oracles,
		caches:    caches,
		writer:    writer,
		verifier:  verifier,
		scheduler: sched,
		tracer:    tracer,
	}
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// CompileRequest names the inputs of one compile.
type CompileRequest struct {
	// ConfigPath is the options file; empty means permc.yaml in the working directory, if any.
	ConfigPath string
	// ModulePath is the module descriptor; empty means module.yaml.
	ModulePath string
	// Flags carries the command line overrides. Only changed flags take effect.
	Flags *pflag.FlagSet
	// Progress shows the terminal progress view while compiling.
	Progress bool
}

// Summary describes a finished compile.
type Summary struct {
	Module       *domain.ModuleDescriptor
	Options      domain.CompileOptions
	Permutations []domain.Permutation
	StrongNames  []string
	Cache        unified.Stats
}

// Plan describes the permutations a compile would run, without running them.
type Plan struct {
	Module       *domain.ModuleDescriptor
	Options      domain.CompileOptions
	Permutations []domain.Permutation
	// Answers maps each request with rules to every answer some permutation chooses.
	Answers map[string][]string
	// Requests are the types still requested by rebind sites after precompile.
	Requests []string
	Registry typeinfo.RefreshReport
	Cache    unified.Stats
}

type levelSetter interface {
	SetLevel(level domain.LogLevel)
}

// inputs is everything a compile needs once its program sits in the shared cache.
type inputs struct {
	opts     domain.CompileOptions
	module   *domain.ModuleDescriptor
	perms    []domain.Permutation
	answers  map[string][]string
	registry typeinfo.RefreshReport
	program  *unified.AST
}

// Compile runs every permutation of the requested module and publishes the results.
func (a *App) Compile(ctx context.Context, req CompileRequest) (*Summary, error) {
	in, err := a.prepare(ctx, req, false)
	if err != nil {
		return nil, err
	}

	if req.Progress {
		return a.compileWithProgress(ctx, in)
	}
	return a.compile(ctx, in, a.tracer)
}

func (a *App) compile(ctx context.Context, in *inputs, tracer ports.Tracer) (*Summary, error) {
	pipe := pipeline.New(in.opts, emit.NewRenderer(), a.logger, tracer)

	results, err := a.scheduler.Run(ctx, pipe, in.program, in.perms, in.opts.LocalWorkers)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "compile failed"), "module", in.module.Name)
	}

	names, err := a.writer.Write(ctx, in.opts.OutDir, results)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to publish artifacts"), "out_dir", in.opts.OutDir)
	}

	a.logger.Info(fmt.Sprintf("compiled %d permutations of %s into %s", len(results), in.module.Name, in.opts.OutDir))
	return &Summary{
		Module:       in.module,
		Options:      in.opts,
		Permutations: in.perms,
		StrongNames:  names,
		Cache:        in.program.Stats(),
	}, nil
}

// Plan loads and precompiles the module like Compile does and reports what would run. The
// program is always serialized into the byte cache so its size is known.
func (a *App) Plan(ctx context.Context, req CompileRequest) (*Plan, error) {
	in, err := a.prepare(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Module:       in.module,
		Options:      in.opts,
		Permutations: in.perms,
		Answers:      in.answers,
		Requests:     in.program.RebindRequests(),
		Registry:     in.registry,
		Cache:        in.program.Stats(),
	}, nil
}

// Verify checks a published output directory against its manifest.
func (a *App) Verify(outDir string) (*fs.Manifest, error) {
	m, err := a.verifier.Verify(outDir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "verification failed"), "out_dir", outDir)
	}
	a.logger.Info(fmt.Sprintf("verified %d permutations in %s", len(m.Permutations), outDir))
	return m, nil
}

//nolint:cyclop // orchestration function
func (a *App) prepare(ctx context.Context, req CompileRequest, serialize bool) (*inputs, error) {
	// 1. Options and module
	opts, err := a.options.Load(req.ConfigPath, req.Flags)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load compile options")
	}
	if l, ok := a.logger.(levelSetter); ok {
		l.SetLevel(domain.ParseLogLevel(opts.LogLevel))
	}

	module, err := a.modules.Load(req.ModulePath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load module")
	}

	// 2. Permutations
	o, err := a.oracles.New(module)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to build rebind oracle"), "module", module.Name)
	}
	perms := o.Permutations()
	answers := oracle.Answers(o)
	a.logger.Debug(fmt.Sprintf("module %s has %d permutations", module.Name, len(perms)))

	// 3. Program
	prog, err := a.programs.Load(ctx, module.Program)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to load program"), "module", module.Name)
	}

	types, report, err := typeinfo.FromProgram(prog, a.logger)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "program type hierarchy is invalid"), "program", module.Program)
	}
	a.logger.Debug(fmt.Sprintf("registered %d types, %d skipped", report.Types, len(report.Skipped)))

	roots := normalize.Roots{EntryPoints: module.EntryPoints, ExtraRoots: module.ExtraRoots, Answers: answers}
	if err := normalize.Precompile(prog, types, roots, opts, len(perms), a.logger); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "precompile failed"), "module", module.Name)
	}
	prog.MaxNodes = opts.MaxNodes

	// 4. Shared cache
	cache, err := a.caches.Open(opts.CacheDir, opts.CacheMaxBytes)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open byte cache")
	}

	tree := &unified.Tree{Source: prog, Output: js.DefaultLibrary()}
	single := len(perms) == 1 && !serialize
	program, err := unified.NewAST(opts, tree, single, normalize.RebindRequests(prog), cache)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to cache program")
	}

	return &inputs{
		opts:     opts,
		module:   module,
		perms:    perms,
		answers:  answers,
		registry: report,
		program:  program,
	}, nil
}
