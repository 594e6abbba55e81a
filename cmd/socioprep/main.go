package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/wdm0006/socioprep/dataio"
	"github.com/wdm0006/socioprep/pkg/config"
	ds "github.com/wdm0006/socioprep/pkg/dataset"
	iox "github.com/wdm0006/socioprep/pkg/io/ioutils"
	"github.com/wdm0006/socioprep/pkg/profile"
)

var version = "0.1.0-dev"

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

func main() {
	os.Exit(int(Run(os.Args[1:], os.Stdout)))
}

// app carries the state shared by every subcommand.
type app struct {
	verbose bool
	log     *slog.Logger
	stdout  io.Writer
}

func Run(args []string, stdout io.Writer) ExitCode {
	a := &app{stdout: stdout}
	rootCmd := &cobra.Command{
		Use:           "socioprep",
		Short:         "Preprocess poverty incidence and food price tables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.log = newLogger(a.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "set debug logging level")

	rootCmd.AddCommand(
		newPovertyCmd(a),
		newFoodCmd(a),
		newRunCmd(a),
		newProfileCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version and exit",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(a.stdout, "socioprep", version)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		if a.log == nil {
			a.log = newLogger(a.verbose)
		}
		a.log.Error("socioprep failed", "error", err)
		return exitCodeError
	}
	return exitCodeSuccess
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// ioFlags are the input and output flags every processing command shares.
type ioFlags struct {
	output       string
	outputFormat string
	inputFormat  string
	delimiter    string
	sample       int
}

func (f *ioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output path; default <dir>/processed-data/<stem>_processed.<ext>, \"-\" for stdout")
	cmd.Flags().StringVar(&f.outputFormat, "output-format", "", "csv, jsonl or parquet; default from the output extension")
	cmd.Flags().StringVar(&f.inputFormat, "input-format", "", "csv, jsonl or parquet; default from the input extension")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "csv input delimiter; sniffed when empty")
	cmd.Flags().IntVar(&f.sample, "sample", 5, "print the first N processed rows (0 disables)")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// process loads input, runs the pipeline built from the loaded frame's
// columns and saves the result.
func (a *app) process(input string, raw bool, fl ioFlags, build func(*ds.Frame) (*ds.Pipeline, error)) error {
	in, err := dataio.Load(input, dataio.Options{
		Format:    fl.inputFormat,
		Delimiter: config.Delimiter(fl.delimiter),
		Raw:       raw,
		Logger:    a.log,
	})
	if err != nil {
		return err
	}
	p, err := build(in)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	out, err := p.Run(ctx, in)
	if err != nil {
		return err
	}
	if fl.sample > 0 && fl.output != "-" {
		profile.WriteSample(a.stdout, out, fl.sample)
	}
	dst := fl.output
	if dst == "" {
		dst = iox.ProcessedPath(input)
	}
	return dataio.Save(dst, out, dataio.Options{Format: fl.outputFormat, Logger: a.log})
}
