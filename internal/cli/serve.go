package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/orbita/internal/version"
	"github.com/example/orbita/internal/wire"
)

const readHeaderTimeout = 10 * time.Second

// ServeCmd returns the command that runs the HTTP API and every active
// mission loop until interrupted.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the mission control API",
		Long: `Run the HTTP API and resume the autonomy loop of every active mission.

Stops on SIGINT or SIGTERM: live streams are closed, loops finish their
current tick, then the store is closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return serve(ctx, a)
			})
		},
	}
}

func serve(ctx context.Context, a *wire.App) error {
	resumed, err := a.Missions.ResumeActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to resume missions: %w", err)
	}

	// Live streams hang off baseCtx so they end before Shutdown waits on them.
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	srv := &http.Server{
		Addr:              a.Config.ListenAddr,
		Handler:           a.HTTPServer().Router(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	a.Logger.Info(version.Banner(), "addr", a.Config.ListenAddr, "resumed", resumed, "version", version.String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	cancelStreams()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
