package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aria-lang/polyatrim-go/internal/config"
	"github.com/aria-lang/polyatrim-go/internal/hmm"
	"github.com/aria-lang/polyatrim-go/internal/logging"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "polyatrim",
		Short:         "Detect and trim poly-A tails with a two-state HMM",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newTrimCmd(a),
		newTrainCmd(a),
		newModelCmd(a),
		newDecodeCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

// loadModel returns the model at path, or the built-in one for an empty
// path. Invalid models are refused.
func (a *app) loadModel(path string) (*hmm.Model, error) {
	if path == "" {
		return hmm.DefaultModel(), nil
	}
	m, err := hmm.LoadModel(path)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(hmm.DefaultTolerance); err != nil {
		return nil, err
	}
	if m.States() != hmm.NumStates || m.Symbols() < hmm.NumSymbols {
		return nil, fmt.Errorf("%w: %s has %d states and %d symbols, want %d and at least %d",
			hmm.ErrInvalidModel, path, m.States(), m.Symbols(), hmm.NumStates, hmm.NumSymbols)
	}
	a.logger.Debug("model loaded", "path", path)
	return m, nil
}
