package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aria-lang/polyatrim-go/internal/config"
	"github.com/aria-lang/polyatrim-go/internal/fastx"
	"github.com/aria-lang/polyatrim-go/internal/pipeline"
	"github.com/aria-lang/polyatrim-go/internal/trim"
)

type trimFlags struct {
	model     string
	workers   int
	batchSize int
	color     string
	generic   bool
	report    string
	summary   string
}

func newTrimCmd(a *app) *cobra.Command {
	var f trimFlags
	cmd := &cobra.Command{
		Use:   "trim <reads> [model]",
		Short: "Trim poly-A tails from a FASTA or FASTQ file",
		Long: `Trim writes each read with its poly-A tail removed to stdout and a
"name<TAB>tail length" line per read to the report stream (stderr by default).

The input may be gzip, bzip2 or zstd compressed; "-" reads standard input.
Iso-Seq FLNC headers get their coordinates adjusted unless --generic is set.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTrim(cmd, args, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.model, "model", "m", "", "model file (default: built-in model)")
	fl.IntVarP(&f.workers, "workers", "t", 0, "worker goroutines")
	fl.IntVar(&f.batchSize, "batch-size", 0, "reads per work batch")
	fl.StringVar(&f.color, "color", "", "show trimmed tails in red: never, always or auto (as --color=MODE)")
	fl.Lookup("color").NoOptDefVal = config.ColorAlways
	fl.BoolVar(&f.generic, "generic", false, "treat headers as generic FASTA names")
	fl.StringVar(&f.report, "report", "", "tail length report: stderr, stdout, none or a file path")
	fl.StringVar(&f.summary, "summary", "", "write run statistics as JSON to this file")
	return cmd
}

func (a *app) runTrim(cmd *cobra.Command, args []string, f trimFlags) error {
	cfg := a.cfg
	fl := cmd.Flags()
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("batch-size") {
		cfg.BatchSize = f.batchSize
	}
	if fl.Changed("color") {
		cfg.Color = f.color
	}
	if fl.Changed("report") {
		cfg.Report = f.report
	}
	if f.generic {
		cfg.IsoSeq = false
	}
	switch {
	case fl.Changed("model"):
		cfg.Model = f.model
	case len(args) == 2:
		cfg.Model = args[1]
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	m, err := a.loadModel(cfg.Model)
	if err != nil {
		return err
	}

	in, err := openInput(cmd, args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	stdout := cmd.OutOrStdout()
	report, closeReport, err := openReport(cmd, cfg.Report)
	if err != nil {
		return err
	}
	defer closeReport()

	reader := fastx.NewReader(in)
	reader.OnWarning = func(err error) {
		a.logger.Warn("malformed record", "err", err)
	}
	sink := pipeline.StreamSink{
		Out:    fastx.NewWriter(stdout, useColor(cfg.Color, stdout)),
		Report: fastx.NewReportWriter(report),
	}

	summary, runErr := pipeline.Run(cmd.Context(), m, pipeline.Options{
		Workers:   cfg.Workers,
		BatchSize: cfg.BatchSize,
		Trim:      trim.Options{IsoSeq: cfg.IsoSeq},
		Logger:    a.logger,
	}, reader, sink)
	if err := errors.Join(runErr, sink.Flush()); err != nil {
		return err
	}

	if f.summary != "" {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.summary, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if fastx.IsStdin(path) {
		rc, _, err := fastx.Decompress(io.NopCloser(cmd.InOrStdin()))
		return rc, err
	}
	return fastx.Open(path)
}

// openReport resolves the report destination. A nil writer discards.
func openReport(cmd *cobra.Command, dest string) (io.Writer, func(), error) {
	switch dest {
	case "stderr":
		return cmd.ErrOrStderr(), func() {}, nil
	case "stdout":
		return cmd.OutOrStdout(), func() {}, nil
	case "none":
		return nil, func() {}, nil
	}
	fh, err := os.Create(dest)
	if err != nil {
		return nil, nil, fmt.Errorf("open report: %w", err)
	}
	return fh, func() { fh.Close() }, nil
}

// useColor resolves a color mode against the output stream.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorAuto:
		fh, ok := w.(*os.File)
		return ok && (isatty.IsTerminal(fh.Fd()) || isatty.IsCygwinTerminal(fh.Fd()))
	default:
		return false
	}
}
