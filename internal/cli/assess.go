package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/orbita/internal/core/telemetry"
	"github.com/example/orbita/internal/wire"
)

// AssessCmd returns the command that runs the decision engine on a
// snapshot given as flags. Nothing is persisted.
func AssessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run the decision engine on a hand-entered snapshot",
		Example: `  orbita assess --battery 15
  orbita assess --thermal 92 --latency 300
  orbita assess --roll 25 --unstable`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			battery, _ := f.GetFloat64("battery")
			thermal, _ := f.GetFloat64("thermal")
			roll, _ := f.GetFloat64("roll")
			pitch, _ := f.GetFloat64("pitch")
			yaw, _ := f.GetFloat64("yaw")
			latency, _ := f.GetFloat64("latency")
			unstable, _ := f.GetBool("unstable")

			snapshot := telemetry.Snapshot{
				BatteryLevel:     battery,
				ThermalState:     thermal,
				OrientationRoll:  roll,
				OrientationPitch: pitch,
				OrientationYaw:   yaw,
				SignalLatency:    latency,
				IsStable:         !unstable,
			}

			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				return a.MissionAdapter(cmd.OutOrStdout()).Assess(ctx, snapshot)
			})
		},
	}

	cmd.Flags().Float64("battery", 90, "Battery level (%)")
	cmd.Flags().Float64("thermal", 20, "Thermal state (°C)")
	cmd.Flags().Float64("roll", 0, "Roll (deg)")
	cmd.Flags().Float64("pitch", 0, "Pitch (deg)")
	cmd.Flags().Float64("yaw", 0, "Yaw (deg)")
	cmd.Flags().Float64("latency", 50, "Signal latency (ms)")
	cmd.Flags().Bool("unstable", false, "Mark the spacecraft unstable")

	return cmd
}
