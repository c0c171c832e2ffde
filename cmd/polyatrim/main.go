// Command polyatrim detects and trims poly-A tails from sequencing reads.
//
// Usage:
//
//	polyatrim <command> [options]
//
// Commands:
//
//	trim        Trim poly-A tails from a FASTA or FASTQ file
//	train       Estimate a model from labelled sequences
//	model       Show, write or validate model files
//	decode      Print the Viterbi path of one sequence
//	config      Write a default configuration file
//	version     Show version information
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
