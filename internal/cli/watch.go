package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/orbita/internal/adapters/cli"
	"github.com/example/orbita/internal/live"
	"github.com/example/orbita/internal/ports/primary"
	"github.com/example/orbita/internal/wire"
)

// WatchCmd returns the command that runs mission loops in-process and
// prints each live update.
func WatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [mission-id...]",
		Short: "Run mission loops and print live updates",
		Long: `Run the autonomy loop of the named missions (default: every active
mission) in this process and print each tick until interrupted.`,
		Args: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := validateMissionID(id); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return watch(ctx, a, cliadapter.NewConsoleSubscriber(cmd.OutOrStdout()), args)
			})
		},
	}
}

func watch(ctx context.Context, a *wire.App, console live.Subscriber, ids []string) error {
	if len(ids) == 0 {
		active, err := a.Missions.ListMissions(ctx, primary.MissionFilters{ActiveOnly: true})
		if err != nil {
			return err
		}
		for _, m := range active {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no active missions to watch\nHint: orbita mission create <name>")
	}

	// Subscribe first so the first tick is not missed.
	handles := make([]live.Handle, 0, len(ids))
	defer func() {
		for _, h := range handles {
			a.Registry.Unsubscribe(h)
		}
	}()
	for _, id := range ids {
		if _, err := a.Missions.GetMission(ctx, id); err != nil {
			return err
		}
		handles = append(handles, a.Registry.Subscribe(id, console))
	}
	for _, id := range ids {
		if _, err := a.Missions.StartMission(ctx, id); err != nil {
			return err
		}
	}

	a.Logger.Info("watching missions", "count", len(ids))
	<-ctx.Done()
	return nil
}
