package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newPrintCommand(g *globalFlags) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the resolved configuration and module list as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := resolve(cmd.Context(), g)
			if err != nil {
				return err
			}
			if !reveal {
				cfg = cfg.Redacted()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print secrets in clear text")
	return cmd
}
