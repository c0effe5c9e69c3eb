package main

import (
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/config"
)

func migrateCMD() *cobra.Command {
	var migDir string
	var direction string
	var steps int
	var cfgPath string

	var cmd = &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations (postgres backend only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			dsn, err := cfg.Storage.Postgres.DSN()
			if err != nil {
				return err
			}
			m, err := migrate.New(migDir, dsn)
			if err != nil {
				return err
			}
			switch direction {
			case "down":
				if steps > 0 {
					return m.Steps(-steps)
				}
				return m.Down()
			default:
				if steps > 0 {
					return m.Steps(steps)
				}
				return m.Up()
			}
		},
	}
	cmd.Flags().StringVar(&migDir, "dir", "file://migrations", "migrations source (file://migrations)")
	cmd.Flags().StringVar(&direction, "direction", "up", "up or down")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config.json)")

	return cmd
}
