package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/ambitions/internal/config"
	"github.com/alexanderramin/ambitions/internal/httpapi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the goals HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := httpapi.NewServer(a.Services,
				httpapi.WithToken(a.Config.APIToken),
				httpapi.WithLogger(a.Logger),
				httpapi.WithHealthCheck(a.Health),
			)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Serve(ctx, a.Config.Listen, a.Config.ShutdownTimeout)
			})
			if a.Roster != nil {
				g.Go(func() error {
					return a.Roster.Watch(ctx, a.Logger)
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().String("listen", "", "Address to listen on (default 127.0.0.1:8080)")
	cmd.Flags().String("token", "", "Bearer token required on every API call")
	_ = a.viper.BindPFlag(config.KeyListen, cmd.Flags().Lookup("listen"))
	_ = a.viper.BindPFlag(config.KeyAPIToken, cmd.Flags().Lookup("token"))

	return cmd
}
