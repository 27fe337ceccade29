package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/barrio/internal/config"
	"github.com/yanizio/barrio/internal/database"
)

const probeTimeout = 10 * time.Second

var errCheckFailed = errors.New("configuration check failed")

func newCheckCommand(g *globalFlags) *cobra.Command {
	var (
		strict bool
		pingDB bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit the resolved configuration and optionally probe its backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, cli, err := resolve(ctx, g)
			if err != nil {
				return err
			}

			findings := config.Audit(cfg)
			out := cmd.OutOrStdout()
			for _, f := range findings {
				fmt.Fprintln(out, f)
			}

			ctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			eg, ctx := errgroup.WithContext(ctx)

			if pingDB {
				eg.Go(func() error { return probeDatabase(ctx, cfg) })
			}
			if cli != nil {
				eg.Go(func() error { return cli.Healthy(ctx) })
			}
			if err := eg.Wait(); err != nil {
				return err
			}

			if config.HasErrors(findings) || (strict && len(findings) > 0) {
				return fmt.Errorf("%w: %d finding(s)", errCheckFailed, len(findings))
			}
			fmt.Fprintf(out, "ok: mode=%s env_file=%s modules=%d\n", cfg.Mode, cfg.EnvFile, len(cfg.Modules))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings as well as errors")
	cmd.Flags().BoolVar(&pingDB, "ping-db", false, "connect to the database and ping it")
	return cmd
}

func probeDatabase(ctx context.Context, cfg *config.Config) error {
	dsn, err := database.DSN(cfg.Database.URL, cfg.Database.Options.SSL)
	if err != nil {
		return err
	}
	db, err := database.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer db.Close()

	if err := database.Ping(ctx, db, probeTimeout); err != nil {
		return err
	}
	zap.S().Infow("database reachable", "driver", database.DriverName)
	return nil
}
