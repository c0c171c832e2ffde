package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aria-lang/polyatrim-go/internal/hmm"
	"github.com/aria-lang/polyatrim-go/internal/trim"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		model     string
		forward   bool
		posterior bool
	)
	cmd := &cobra.Command{
		Use:   "decode <sequence>",
		Short: "Print the most likely state path of a sequence",
		Long: `Decode prints the Viterbi path with one letter per base, P for POLYA and
N for NONPOLYA. The sequence is decoded from its 3' end, as trim does, and
the path is printed in that order, unless --forward is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModel(model)
			if err != nil {
				return err
			}
			var s hmm.Symbols = hmm.String(args[0])
			if !forward {
				s = hmm.Reversed(s)
			}

			ws := hmm.NewWorkspace()
			path := ws.Viterbi(m, s)
			var sb strings.Builder
			for _, st := range path.Data() {
				if hmm.State(st) == hmm.PolyA {
					sb.WriteByte('P')
				} else {
					sb.WriteByte('N')
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, sb.String())
			if !forward {
				fmt.Fprintf(w, "polyA length: %d\n", trim.PolyALength(path))
			}
			lp := ws.LogProbability(m, s)
			if math.IsInf(lp, -1) {
				fmt.Fprintln(w, "log2 probability: -inf")
			} else {
				fmt.Fprintf(w, "log2 probability: %.6f\n", lp)
			}
			if posterior {
				post := ws.Posterior(m, s)
				for j := 0; j < post.Cols(); j++ {
					fmt.Fprintf(w, "%d\t%c\t%.6f\t%.6f\n", j, s.At(j), post.At(0, j), post.At(1, j))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model file (default: built-in model)")
	cmd.Flags().BoolVar(&forward, "forward", false, "decode 5' to 3' instead")
	cmd.Flags().BoolVar(&posterior, "posterior", false, "also print per-base posterior probabilities")
	return cmd
}
