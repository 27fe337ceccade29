// cmd/barrio-config/main.go
//
// Operator CLI for the commerce backend configuration.
//
// Commands
// --------
//
//  1. print: resolve and dump the config and module list as JSON,
//     secrets masked unless --reveal is given.
//
//  2. check: resolve, audit, and optionally probe the database and
//     Vault.  Exits non-zero on error findings, or on any finding with
//     --strict.
//
// Both commands resolve exactly as the runtime does: `.env`, then the
// mode file, then the process environment, then `vault:` indirection when
// Vault is configured.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
