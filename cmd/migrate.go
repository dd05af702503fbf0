package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dosada05/athletics-meet/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			if err := db.Migrate(cmd.Context(), dbConn, logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}
