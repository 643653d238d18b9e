package cmd

import (
	"anoa.com/cfptracker/internal/bootstrap"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and seed defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		email, password := rt.adminCredentials()
		if err := bootstrap.Run(rt.db, email, password, rt.cfg.DefaultScoreThreshold); err != nil {
			return err
		}
		rt.log.Info("migrations applied")
		return nil
	},
}
