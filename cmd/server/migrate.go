package main

import (
	"github.com/JonMunkholm/certvault/internal/store"
	"github.com/spf13/cobra"
)

func (a *app) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the certificates table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg := a.cfg.Database
			dbCfg.AutoMigrate = true

			backend, err := store.Open(cmd.Context(), dbCfg, a.logger)
			if err != nil {
				return err
			}
			defer backend.Close()

			a.logger.Info("schema ready", "driver", dbCfg.Driver)
			return nil
		},
	}
}
