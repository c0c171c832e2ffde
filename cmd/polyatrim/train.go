package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aria-lang/polyatrim-go/internal/fastx"
	"github.com/aria-lang/polyatrim-go/internal/hmm"
)

func newTrainCmd(a *app) *cobra.Command {
	var polyA, nonPolyA, out string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Estimate a model from labelled tail and body sequences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tails, err := readSymbols(polyA)
			if err != nil {
				return err
			}
			bodies, err := readSymbols(nonPolyA)
			if err != nil {
				return err
			}
			m, err := hmm.Train(tails, bodies)
			if err != nil {
				return err
			}
			a.logger.Info("model trained", "polya", len(tails), "nonpolya", len(bodies))

			if out == "" || out == "-" {
				_, err = m.WriteTo(cmd.OutOrStdout())
				return err
			}
			return m.Save(out)
		},
	}
	cmd.Flags().StringVar(&polyA, "polya", "", "FASTA/FASTQ of poly-A tail sequences")
	cmd.Flags().StringVar(&nonPolyA, "nonpolya", "", "FASTA/FASTQ of read body sequences")
	cmd.Flags().StringVarP(&out, "output", "o", "", "model file to write (default: stdout)")
	cmd.MarkFlagRequired("polya")
	cmd.MarkFlagRequired("nonpolya")
	return cmd
}

func readSymbols(path string) ([]hmm.Symbols, error) {
	rc, err := fastx.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	recs, err := fastx.ReadAll(fastx.NewReader(rc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]hmm.Symbols, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out, nil
}
