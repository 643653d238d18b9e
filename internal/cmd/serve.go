package cmd

import (
	"os/signal"
	"syscall"

	"anoa.com/cfptracker/internal/bootstrap"
	"anoa.com/cfptracker/internal/server"
	"github.com/spf13/cobra"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the CFP deadline schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := setup(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		if !skipMigrate {
			email, password := rt.adminCredentials()
			if err := bootstrap.Run(rt.db, email, password, rt.cfg.DefaultScoreThreshold); err != nil {
				return err
			}
		}

		srv, err := server.NewServer(rt.cfg, rt.db, rt.redis, rt.log)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Start without running migrations and seeds")
}
