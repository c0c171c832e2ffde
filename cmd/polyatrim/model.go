package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aria-lang/polyatrim-go/internal/hmm"
)

func newModelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect and write model files",
	}

	show := &cobra.Command{
		Use:   "show [model]",
		Short: "Print model parameters as a table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			m, err := a.loadModel(path)
			if err != nil {
				return err
			}
			return printModel(cmd, m)
		},
	}

	var out string
	def := &cobra.Command{
		Use:   "default",
		Short: "Write the built-in model in model file format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := hmm.DefaultModel()
			if out == "" || out == "-" {
				_, err := m.WriteTo(cmd.OutOrStdout())
				return err
			}
			return m.Save(out)
		},
	}
	def.Flags().StringVarP(&out, "output", "o", "", "file to write (default: stdout)")

	validate := &cobra.Command{
		Use:   "validate <model>",
		Short: "Check that a model file holds valid probabilities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.loadModel(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(show, def, validate)
	return cmd
}

func printModel(cmd *cobra.Command, m *hmm.Model) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	states := []hmm.State{hmm.PolyA, hmm.NonPolyA}

	fmt.Fprintln(tw, "STATE\tINIT\t->POLYA\t->NONPOLYA\tA\tC\tG\tT")
	for _, s := range states {
		fmt.Fprintf(tw, "%s\t%g", s, m.InitialProb(s))
		for _, to := range states {
			fmt.Fprintf(tw, "\t%g", m.TransProb(s, to))
		}
		for sym := 0; sym < hmm.NumSymbols; sym++ {
			fmt.Fprintf(tw, "\t%g", m.EmitProb(s, sym))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
