package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/orbita/internal/config"
	"github.com/example/orbita/internal/wire"
)

// closeTimeout bounds how long a command waits for mission loops to stop.
const closeTimeout = 10 * time.Second

// AddGlobalFlags registers the configuration flags on the root command.
func AddGlobalFlags(root *cobra.Command) {
	config.RegisterFlags(root.PersistentFlags())
}

// loadConfig resolves configuration for cmd: defaults, file, environment,
// then any flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(config.FlagConfig)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyFlags(cmd.Flags(), cfg); err != nil {
		return nil, fmt.Errorf("invalid flag: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// withApp builds the application for one command invocation and tears it
// down afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *wire.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := wire.New(cfg, os.Stderr)
	if err != nil {
		return err
	}

	runErr := fn(cmd.Context(), a)

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return runErr
}

// RootCmd assembles the orbita command tree.
func RootCmd(versionString string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "orbita",
		Short:   "ORBITA - autonomous mission operations",
		Version: versionString,
		Long: `ORBITA runs an autonomy loop per spacecraft mission: telemetry is
simulated or fetched from a ground station, assessed by the decision
engine, corrected, persisted and streamed to observers.`,
		SilenceUsage: true,
	}

	AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(MissionCmd())
	rootCmd.AddCommand(ForecastCmd())
	rootCmd.AddCommand(AssessCmd())
	rootCmd.AddCommand(DecisionCmd())
	rootCmd.AddCommand(WatchCmd())

	// Maintenance
	rootCmd.AddCommand(DBCmd())

	return rootCmd
}
