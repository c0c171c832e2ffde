package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aria-lang/polyatrim-go/pkg/polyatrim"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), polyatrim.Info())
			return nil
		},
	}
}
