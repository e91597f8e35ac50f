package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsumogiri/riichi-client/internal/config"
)

var (
	cfgPath        string
	serverOverride string
	cfg            config.Config
	logger         *slog.Logger
)

// version is stamped by the release build.
var version = "dev"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "riichi",
		Short: "Terminal client for the riichi game server",
		Long: `riichi is a terminal client for the network riichi mahjong server.

It plays or observes live sessions over the server's line-delimited JSON
protocol, records sessions as replays, and can list and re-render them.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			if serverOverride != "" {
				cfg.Server.Addr = serverOverride
			}
			logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.Log.SlogLevel(),
			}))
			slog.SetDefault(logger)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&serverOverride, "server", "", "Game server address (env: RIICHI_SERVER)")

	// Add subcommands
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newObserveCmd())
	rootCmd.AddCommand(newReplaysCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
