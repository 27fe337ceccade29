package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/barrio/internal/config"
	"github.com/yanizio/barrio/internal/logger"
	"github.com/yanizio/barrio/internal/vault"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dir      string
	mode     string
	logDir   string
	verbose  bool
	useVault bool
}

func newRootCommand() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "barrio-config",
		Short:         "Resolve and inspect the commerce backend configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lvl := zapcore.InfoLevel
			if g.verbose {
				lvl = zapcore.DebugLevel
			}
			_, err := logger.New(logger.Options{Dir: g.logDir, Tee: logger.InTTY(), Level: lvl})
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = zap.L().Sync()
		},
	}

	root.PersistentFlags().StringVar(&g.dir, "dir", "", "directory holding .env files (default: working directory)")
	root.PersistentFlags().StringVar(&g.mode, "mode", "", "environment mode (default: $NODE_ENV, else development)")
	root.PersistentFlags().StringVar(&g.logDir, "log-dir", "", "write JSON logs to this directory")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&g.useVault, "vault", os.Getenv("VAULT_ADDR") != "", "expand vault: references (default: on when VAULT_ADDR is set)")

	root.AddCommand(newPrintCommand(&g))
	root.AddCommand(newCheckCommand(&g))
	return root
}

// resolve loads the config the way the runtime would.  The Vault client is
// returned when one was built so check can probe it.
func resolve(ctx context.Context, g *globalFlags) (*config.Config, *vault.Client, error) {
	opts := config.LoadOptions{Dir: g.dir, Mode: config.Mode(g.mode)}

	var cli *vault.Client
	if g.useVault {
		var err error
		if cli, err = vault.New(ctx, zap.S().Debugf); err != nil {
			return nil, nil, err
		}
		opts.Transform = func(ctx context.Context, src config.Source) (config.Source, error) {
			return vault.Expand(ctx, src, cli)
		}
	}

	cfg, err := config.Load(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cli, nil
}
