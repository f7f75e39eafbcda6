// Package main provides the entry point for the voting contract monitor.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"voting-monitor/internal/config"
	"voting-monitor/internal/logger"
	"voting-monitor/internal/tui"
)

func main() {
	// Try to load .env from CWD if present; otherwise use environment as-is
	if _, statErr := os.Stat(".env"); statErr == nil {
		_ = godotenv.Load(".env")
	}

	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var networkID uint64

	loadConfig := func() config.Config {
		cfg := config.Load()
		if networkID != 0 {
			cfg.NetworkID = networkID
		}
		return cfg
	}

	tuiCmd := tuiCommand(loadConfig)
	root := &cobra.Command{
		Use:          "voting-monitor",
		Short:        "Terminal client for the on-chain voting contract",
		SilenceUsage: true,
		RunE:         tuiCmd.RunE,
	}
	root.PersistentFlags().Uint64Var(&networkID, "network", 0, "active network id (overrides NETWORK_ID)")
	root.AddCommand(tuiCmd, snapshotCommand(loadConfig), networksCommand(loadConfig))
	return root
}

func tuiCommand(loadConfig func() config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Watch the contract and run actions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()

			// The TUI owns the terminal: debug logs go to a file, everything else is dropped
			var logWriter io.Writer = io.Discard
			if cfg.Debug {
				logFile, err := os.OpenFile("monitor.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err == nil {
					defer logFile.Close()
					logWriter = logFile
					fmt.Fprintf(os.Stderr, "Debug logs written to monitor.log\n")
				} else {
					fmt.Fprintf(os.Stderr, "Warning: failed to open log file, logs disabled: %v\n", err)
				}
			}
			log := logger.NewWithWriter(cfg.Debug, logWriter)

			fmt.Printf("Voting monitor starting...\n")
			fmt.Printf("Config loaded: %s\n", cfg.DebugString())
			fmt.Printf("Connecting...\n")

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a, err := setup(ctx, cfg, log)
			if err != nil {
				return err
			}
			updates := a.ctrl.Subscribe(UpdateChannelBufferSize)

			tuiDone := make(chan struct{})
			go func() {
				defer close(tuiDone)
				if err := tui.Run(ctx, a.ctrl, a.watcher, updates); err != nil {
					log.Printf("TUI error: %v", err)
				}
				// TUI exited, cancel context to trigger shutdown
				cancel()
			}()

			go func() {
				if err := a.ctrl.Mount(ctx); err != nil {
					log.Printf("mount failed: %v", err)
				}
				a.runRefresher(ctx, cfg.RefreshInterval)
			}()

			<-ctx.Done()
			log.Println("shutting down...")

			// Closing the subscription quits the TUI
			a.Close()
			select {
			case <-tuiDone:
			case <-time.After(TUICloseDelay):
			}

			// Ensure logs flushed in some environments
			_ = os.Stderr.Sync()
			_ = os.Stdout.Sync()
			return nil
		},
	}
}

func snapshotCommand(loadConfig func() config.Config) *cobra.Command {
	var archived int

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Run one reconciliation pass and print the view model as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			log := logger.New(cfg.Debug)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a, err := setup(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctrl.Mount(ctx); err != nil {
				return err
			}

			out := map[string]interface{}{"view": a.ctrl.View()}
			if archived > 0 && a.archive != nil {
				rows, err := a.archive.Recent(ctx, cfg.NetworkID, archived)
				if err != nil {
					return err
				}
				out["archived"] = rows
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().IntVar(&archived, "archived", 0, "also print the N latest archived events (needs DATABASE_URL)")
	return cmd
}

func networksCommand(loadConfig func() config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the resolved network bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			registry, err := loadRegistry(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\tID\tNAME\tCONTRACT\tSTART\tRPC")
			for _, b := range registry.Bindings() {
				marker := ""
				if b.NetworkID == cfg.NetworkID {
					marker = "*"
				}
				rpc := b.RPCEndpoint
				if _, ok := registry.Lookup(b.NetworkID); !ok {
					rpc = "(unsupported: no rpc endpoint)"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n", marker, b.NetworkID, b.Name, b.ContractAddress.Hex(), b.StartBlock, rpc)
			}
			return w.Flush()
		},
	}
}
