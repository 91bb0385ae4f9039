package cmd

import (
	"github.com/emrgen/sweater/internal/config"
	"github.com/emrgen/sweater/internal/model"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			db, err := config.GetDb(cfg)
			if err != nil {
				return err
			}

			if err := model.Migrate(db); err != nil {
				return err
			}

			color.Green("migrated %s database", cfg.DB.Driver)
			return nil
		},
	}

	return command
}
