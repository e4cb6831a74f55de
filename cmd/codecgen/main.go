// Command codecgen compiles a schema file into Go codecs.
//
//	codecgen -i sample.schema -o sample_gen.go -c sample.Serializer -m
//	codecgen --config codecgen.yaml --check
//
// Without -o the generated source is written to stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reoring/codecgen/internal/config"
)

type options struct {
	input     string
	output    string
	class     string
	access    string
	makeTypes bool

	configPath string
	check      bool
	watch      bool
	logLevel   string
	logFormat  string
}

// usageError reports invalid command line input; it exits with status 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// errStale is returned by --check when an output differs from what the
// schema generates.
var errStale = errors.New("generated code is out of date")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and returns the process exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)

	var usage *usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage):
		red := errColor(stderr)
		fmt.Fprintln(stderr, red.Sprint("error: "+usage.msg))
		fmt.Fprint(stderr, cmd.UsageString())
		return 2
	case errors.Is(err, errStale):
		fmt.Fprintln(stderr, errColor(stderr).Sprint(err))
		return 1
	default:
		fmt.Fprintln(stderr, errColor(stderr).Sprint("error: "+err.Error()))
		return 1
	}
}

func errColor(w io.Writer) *color.Color {
	c := color.New(color.FgRed, color.Bold)
	if !isTerminal(w) {
		c.DisableColor()
	}
	return c
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opt options
	cmd := &cobra.Command{
		Use:   "codecgen -i schema -c pkg.Serializer [-o out.go] [-a access] [-m]",
		Short: "Compile a schema into reflection-free Go codecs",
		Long: `codecgen reads a schema describing objects, fields and their wire keys and
emits Go source that encodes and decodes those objects over a token stream.

Either name one schema with --input and --class, or list several targets in
a YAML file passed with --config.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &usageError{msg: fmt.Sprintf("unexpected argument %q", args[0])}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, &opt, stdout, stderr)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return &usageError{msg: err.Error()} })
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&opt.input, "input", "i", "", "schema file to compile")
	f.StringVarP(&opt.output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&opt.class, "class", "c", "", "qualified serializer name, e.g. sample.Serializer")
	f.StringVarP(&opt.access, "access", "a", "public", "access of generated identifiers: public, internal or private")
	f.BoolVarP(&opt.makeTypes, "make", "m", false, "also emit the data holder types")
	f.StringVar(&opt.configPath, "config", "", "YAML file listing several targets")
	f.BoolVar(&opt.check, "check", false, "report outputs that differ from the generated code instead of writing them")
	f.BoolVar(&opt.watch, "watch", false, "regenerate whenever a schema changes")
	f.StringVar(&opt.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	f.StringVar(&opt.logFormat, "log-format", "auto", "log format: auto, console or json")
	return cmd
}

// loadTargets returns the targets named on the command line or in the
// config file. Logging flags given explicitly override the file.
func loadTargets(cmd *cobra.Command, opt *options) ([]config.Target, error) {
	if opt.configPath == "" {
		if opt.input == "" || opt.class == "" {
			return nil, &usageError{msg: "--input and --class are required unless --config is given"}
		}
		return []config.Target{{
			Input:  opt.input,
			Output: opt.output,
			Class:  opt.class,
			Access: opt.access,
			Make:   opt.makeTypes,
		}}, nil
	}
	for _, name := range []string{"input", "output", "class", "access", "make"} {
		if cmd.Flags().Changed(name) {
			return nil, &usageError{msg: fmt.Sprintf("--%s cannot be combined with --config", name)}
		}
	}
	cfg, err := config.Load(opt.configPath)
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("log-level") {
		opt.logLevel = cfg.Logging.Level
	}
	if !cmd.Flags().Changed("log-format") {
		opt.logFormat = cfg.Logging.Format
	}
	return cfg.Targets, nil
}

func run(ctx context.Context, cmd *cobra.Command, opt *options, stdout, stderr io.Writer) error {
	if opt.check && opt.watch {
		return &usageError{msg: "--check and --watch cannot be combined"}
	}
	targets, err := loadTargets(cmd, opt)
	if err != nil {
		return err
	}
	log, err := newLogger(stderr, opt.logLevel, opt.logFormat)
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	if opt.check {
		for _, t := range targets {
			if t.Output == "" {
				return &usageError{msg: "--check needs an output file for every target"}
			}
		}
	}

	g := &generator{log: log, stdout: stdout, stderr: stderr, check: opt.check}
	if !opt.watch {
		return g.run(ctx, targets)
	}
	w := &watcher{log: log, configPath: opt.configPath, generate: g.run}
	if opt.configPath != "" {
		w.reload = func() ([]config.Target, error) { return loadTargets(cmd, opt) }
	}
	return w.run(ctx, targets)
}
