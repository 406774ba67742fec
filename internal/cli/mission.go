package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/orbita/internal/wire"
)

// MissionCmd returns the mission command group.
func MissionCmd() *cobra.Command {
	missionCmd := &cobra.Command{
		Use:   "mission",
		Short: "Manage missions (one autonomous spacecraft each)",
		Long:  "Create, list, inspect, start and stop missions in the ORBITA store.",
	}

	missionCmd.AddCommand(missionCreateCmd())
	missionCmd.AddCommand(missionListCmd())
	missionCmd.AddCommand(missionShowCmd())
	missionCmd.AddCommand(missionStartCmd())
	missionCmd.AddCommand(missionStopCmd())
	missionCmd.AddCommand(missionReportCmd())

	return missionCmd
}

func missionCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new mission",
		Long: `Create a new mission. The mission is stored active; its autonomy loop
runs whenever 'orbita serve' or 'orbita watch' is running.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, _ := cmd.Flags().GetString("class")
			altitude, _ := cmd.Flags().GetFloat64("altitude")
			inclination, _ := cmd.Flags().GetFloat64("inclination")

			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.MissionAdapter(cmd.OutOrStdout()).Create(ctx, args[0], class, altitude, inclination)
				return err
			})
		},
	}
	cmd.Flags().StringP("class", "c", "LEO", "Vehicle class: LEO, MEO or GEO")
	cmd.Flags().Float64("altitude", 0, "Orbit altitude in km (sets the forecast orbital period)")
	cmd.Flags().Float64("inclination", 0, "Orbit inclination in degrees")
	return cmd
}

func missionListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			activeOnly, _ := cmd.Flags().GetBool("active")

			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				return a.MissionAdapter(cmd.OutOrStdout()).List(ctx, activeOnly)
			})
		},
	}
	cmd.Flags().BoolP("active", "a", false, "Only list active missions")
	return cmd
}

func missionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [mission-id]",
		Short: "Show mission details",
		Args:  missionIDArg(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.MissionAdapter(cmd.OutOrStdout()).Show(ctx, args[0])
				return err
			})
		},
	}
}

func missionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [mission-id]",
		Short: "Mark a mission active",
		Args:  missionIDArg(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				return a.MissionAdapter(cmd.OutOrStdout()).Start(ctx, args[0])
			})
		},
	}
}

func missionStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [mission-id]",
		Short: "Mark a mission inactive",
		Args:  missionIDArg(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				return a.MissionAdapter(cmd.OutOrStdout()).Stop(ctx, args[0])
			})
		},
	}
}

func missionReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [mission-id]",
		Short: "Show the decision log of a mission",
		Args:  missionIDArg(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				return a.MissionAdapter(cmd.OutOrStdout()).Report(ctx, args[0])
			})
		},
	}
}

// ForecastCmd returns the power forecast command.
func ForecastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forecast [mission-id]",
		Short: "Project a mission's battery over the next 24 hours",
		Args:  missionIDArg(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				return a.MissionAdapter(cmd.OutOrStdout()).Forecast(ctx, args[0])
			})
		},
	}
}

// DecisionCmd returns the decision command group.
func DecisionCmd() *cobra.Command {
	decisionCmd := &cobra.Command{
		Use:   "decision",
		Short: "Audit autonomous decisions",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify [mission-id] [decision-id]",
		Short: "Record whether a decision's outcome was confirmed",
		Args:  missionIDArg(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decisionID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid decision ID '%s': must be an integer", args[1])
			}
			rejected, _ := cmd.Flags().GetBool("rejected")

			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				return a.MissionAdapter(cmd.OutOrStdout()).Verify(ctx, args[0], decisionID, !rejected)
			})
		},
	}
	verifyCmd.Flags().Bool("rejected", false, "Record the outcome as not confirmed")

	decisionCmd.AddCommand(verifyCmd)
	return decisionCmd
}
