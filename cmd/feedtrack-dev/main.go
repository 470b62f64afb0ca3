// Command feedtrack-dev hosts the feedtrack SPA build locally and inspects
// its route manifest.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vcrobe/feedtrack/internal/devserver"
	"github.com/vcrobe/feedtrack/manifest"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "feedtrack-dev",
		Short:         "Development tools for the feedtrack SPA",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "feedtrack.yaml", "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newServeCmd(), newRoutesCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*devserver.Config, error) {
	cfg, err := devserver.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("root") {
		cfg.Root, _ = cmd.Flags().GetString("root")
	}
	if cmd.Flags().Changed("manifest") {
		cfg.Manifest, _ = cmd.Flags().GetString("manifest")
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the SPA build with history fallback",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			m, err := manifest.Load(cfg.Manifest)
			if err != nil {
				return err
			}
			table, err := m.Table()
			if err != nil {
				return err
			}
			srv, err := devserver.New(*cfg, table, slog.Default())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides config)")
	cmd.Flags().String("root", "", "directory holding the SPA build (overrides config)")
	cmd.Flags().String("manifest", "", "route manifest path (overrides config)")
	return cmd
}

func newRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes [path...]",
		Short: "Print the route table, or resolve paths against it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			m, err := manifest.Load(cfg.Manifest)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			if len(args) == 0 {
				fmt.Fprintln(w, "PATTERN\tCOMPONENT\tBUNDLE")
				for _, r := range m.Routes {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.Pattern, r.Component, orDash(r.Bundle))
				}
				if m.NotFound != nil {
					fmt.Fprintf(w, "%s\t%s\t%s\n", "(not found)", m.NotFound.Component, orDash(m.NotFound.Bundle))
				}
				return nil
			}

			table, err := m.Table()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "PATH\tCOMPONENT")
			for _, p := range args {
				res, err := table.Resolve(p)
				if err != nil {
					fmt.Fprintf(w, "%s\t(error: %v)\n", p, err)
					continue
				}
				component := res.Component
				if res.NotFound {
					component += " (not found)"
				}
				fmt.Fprintf(w, "%s\t%s\n", p, component)
			}
			return nil
		},
	}
	cmd.Flags().String("manifest", "", "route manifest path (overrides config)")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
