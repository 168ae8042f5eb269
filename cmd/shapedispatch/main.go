// Package main implements the CLI driver for shapedispatch.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/715d/shapedispatch/internal/naming"
	"github.com/715d/shapedispatch/internal/workload"
	"github.com/715d/shapedispatch/pkg/dispatch"
)

// Config holds all command-line configuration options.
type Config struct {
	Verbose   bool     // enables debug logging on stderr
	JSON      bool     // enables JSON output format
	Packages  []string // packages to inspect
	Dir       string   // directory packages are loaded from
	BuildTags []string // build tags to use during package loading
	Method    string   // method whose call sites are inspected
	Tests     bool     // also inspect test files
}

const exitError = 2

var (
	// Set via ldflags during build.
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var cfg Config

func main() {
	rootCmd := newRootCmd(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		if err.Error() != "" {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		var cErr *codedError
		if errors.As(err, &cErr) {
			os.Exit(cErr.code)
		}
		os.Exit(exitError)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shapedispatch",
		Short: "Compare static and dynamic dispatch of a shape area calculation",
		Long: `shapedispatch computes a triangle's area twice: once through a slice of
interface values (dynamic dispatch) and once through a generic collection
whose element type is fixed at compile time (static dispatch).

It prints the first element of each collection after the calculation.`,
		Example: `  shapedispatch                     # Print both collections
  shapedispatch --json              # JSON report
  shapedispatch inspect ./...       # Show how CalculateArea calls are dispatched`,
		Args:              cobra.NoArgs,
		RunE:              func(cmd *cobra.Command, _ []string) error { return runWorkload(cmd.OutOrStdout(), &cfg) },
		PersistentPreRunE: setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           version,
	}
	rootCmd.SetOut(out)
	rootCmd.SetVersionTemplate(fmt.Sprintf("shapedispatch version %s\n  commit: %s\n  built:  %s\n", version, gitCommit, buildTime))

	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&cfg.JSON, "json", false, "Output in JSON format")

	inspectCmd := &cobra.Command{
		Use:   "inspect [packages...]",
		Short: "Report the dispatch mode of every call to a method",
		Long: `inspect loads the given packages, builds their SSA form with generic
instantiation, and prints each call of the method (CalculateArea by default)
as dynamic, static, or generic.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Packages = args
			if len(cfg.Packages) == 0 {
				cfg.Packages = []string{"./..."}
			}
			return runInspect(cmd.Context(), cmd.OutOrStdout(), &cfg)
		},
	}
	inspectCmd.Flags().StringSliceVar(&cfg.BuildTags, "build-tags", []string{}, "Build tags to use during package loading")
	inspectCmd.Flags().StringVar(&cfg.Method, "method", dispatch.DefaultMethod, "Method whose call sites are reported")
	inspectCmd.Flags().StringVar(&cfg.Dir, "dir", "", "Directory to load packages from (default: current directory)")
	inspectCmd.Flags().BoolVar(&cfg.Tests, "tests", false, "Include test files")
	rootCmd.AddCommand(inspectCmd)

	return rootCmd
}

func runWorkload(out io.Writer, cfg *Config) error {
	slog.Info("running workload")
	report := workload.Run(naming.NewCache())

	if cfg.JSON {
		data, err := json.MarshalIndent(jReport{
			Report:    report,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}, "", "  ")
		if err != nil {
			return errWithCode(fmt.Errorf("marshaling json output: %w", err), exitError)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	var output strings.Builder
	for _, e := range report.Entries {
		if cfg.Verbose {
			output.WriteString(fmt.Sprintf("%s: %s (%s, %d shapes)\n", e.Dispatch, e.Debug, e.CollectionType, e.Len))
			continue
		}
		output.WriteString(fmt.Sprintf("%s: %s\n", e.Dispatch, e.Debug))
	}
	_, err := io.WriteString(out, output.String())
	return err
}

func runInspect(ctx context.Context, out io.Writer, cfg *Config) error {
	start := time.Now()
	slog.Info("loading packages", "packages", cfg.Packages)
	if len(cfg.BuildTags) > 0 {
		slog.Info("using build tags", "tags", cfg.BuildTags)
	}

	pkgs, err := dispatch.LoadPackages(ctx, dispatch.LoaderOptions{
		Packages:  cfg.Packages,
		BuildTags: cfg.BuildTags,
		Dir:       cfg.Dir,
		Tests:     cfg.Tests,
	})
	if err != nil {
		return errWithCode(fmt.Errorf("inspect: %w", err), exitError)
	}
	slog.Info("loaded packages", "num", len(pkgs))

	inspector, err := dispatch.NewInspector(pkgs, dispatch.Options{Method: cfg.Method})
	if err != nil {
		return errWithCode(fmt.Errorf("inspect: %w", err), exitError)
	}
	sites := inspector.CallSites()
	slog.Info("inspection completed", "sites", len(sites), "dur", time.Since(start))

	if cfg.JSON {
		data, err := json.MarshalIndent(jInspect{
			Method:    cfg.Method,
			CallSites: sites,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}, "", "  ")
		if err != nil {
			return errWithCode(fmt.Errorf("marshaling json output: %w", err), exitError)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	var output strings.Builder
	for _, s := range sites {
		// Format: filename:line:column caller -> callee (mode)
		output.WriteString(fmt.Sprintf("%s:%d:%d %s -> %s (%s)\n",
			s.Position.Filename, s.Position.Line, s.Position.Column, s.Caller, s.Callee, s.Mode))
	}
	_, err = io.WriteString(out, output.String())
	return err
}

type jReport struct {
	*workload.Report
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type jInspect struct {
	Method    string              `json:"method"`
	CallSites []dispatch.CallSite `json:"call_sites"`
	Version   string              `json:"version"`
	Timestamp string              `json:"timestamp"`
}

func setup(_ *cobra.Command, _ []string) error {
	// Disable logger unless verbose flag is set.
	slog.SetDefault(slog.New(slog.DiscardHandler))
	if cfg.Verbose {
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
		if cfg.JSON {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		}
		slog.SetDefault(slog.New(handler))
	}
	return nil
}

func errWithCode(err error, code int) error {
	return &codedError{err: err, code: code}
}

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}

func (e *codedError) Unwrap() error {
	return e.err
}
