package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.trai.ch/permc/internal/adapters/detector"
	"go.trai.ch/permc/internal/app"
	"go.trai.ch/permc/internal/core/domain"
)

func (c *CLI) newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile every permutation of a module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := compileRequest(cmd)
			progress, _ := cmd.Flags().GetString("progress")
			req.Progress = detector.ResolveMode(detector.DetectEnvironment(), progress) == detector.ModeTUI

			summary, err := c.app.Compile(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, perm := range summary.Permutations {
				_, _ = fmt.Fprintf(out, "%s  %s\n", summary.StrongNames[i], perm.Label())
			}
			return nil
		},
	}
	addInputFlags(cmd.Flags())
	addOptionFlags(cmd.Flags())
	cmd.Flags().String("progress", "auto", "Live progress view: auto, on or off")
	return cmd
}

func addInputFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "Compile options file (default permc.yaml when present)")
	flags.StringP("module", "m", "", "Module descriptor (default module.yaml)")
}

// addOptionFlags declares one flag per compile option. Only flags set on the command line
// override the configuration file and the environment.
func addOptionFlags(flags *pflag.FlagSet) {
	d := domain.DefaultCompileOptions()

	flags.IntP("optimization-level", "O", d.OptimizationLevel, "Optimization level, 0 to 9")
	flags.Bool("draft", d.Draft, "Run a single optimization pass")
	flags.String("output-mode", string(d.OutputMode), "Naming strategy: OBFUSCATED, PRETTY or DETAILED")
	flags.Bool("aggressively-optimize", d.AggressivelyOptimize, "Enable aggressive optimizations and splitting")
	flags.Bool("cast-checking-disabled", d.CastCheckingDisabled, "Omit runtime cast checks")
	flags.Bool("class-metadata-disabled", d.ClassMetadataDisabled, "Omit class metadata")
	flags.Bool("enable-assertions", d.EnableAssertions, "Keep assert statements as runtime checks")
	flags.Bool("run-async-enabled", d.RunAsyncEnabled, "Honor runAsync split points")
	flags.Bool("soyc-enabled", d.SoycEnabled, "Write size-breakdown reports")
	flags.Bool("soyc-extra", d.SoycExtra, "Write the extended size-breakdown reports")
	flags.Bool("compiler-metrics-enabled", d.CompilerMetricsEnabled, "Record per-pass compiler metrics")
	flags.Bool("strict", d.Strict, "Fail on unresolvable extra roots")
	flags.Int("max-optimize-iterations", d.MaxOptimizeIterations, "Bound on each optimization fixpoint loop")
	flags.Int("max-nodes", d.MaxNodes, "Bound on the node count of one program")
	flags.IntP("local-workers", "j", d.LocalWorkers, "Permutations compiled concurrently")
	flags.String("cache-dir", d.CacheDir, "Directory of the byte cache (empty keeps it in memory)")
	flags.Int64("cache-max-bytes", d.CacheMaxBytes, "Byte cache capacity (0 is unbounded)")
	flags.StringP("out-dir", "o", d.OutDir, "Output directory")
	flags.String("log-level", d.LogLevel, "Log level: debug, info, warn or error")
}

func compileRequest(cmd *cobra.Command) app.CompileRequest {
	configPath, _ := cmd.Flags().GetString("config")
	modulePath, _ := cmd.Flags().GetString("module")
	return app.CompileRequest{
		ConfigPath: configPath,
		ModulePath: modulePath,
		Flags:      cmd.Flags(),
	}
}
