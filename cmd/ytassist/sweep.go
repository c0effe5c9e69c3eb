package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/config"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session"
)

func sweepCMD() *cobra.Command {
	var cfgPath string
	var cmd = &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired sessions from the durable backend once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			ctx := context.Background()
			backend, closeBackend, err := openBackend(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			defer closeBackend()

			store := session.NewStore(backend, cfg.Storage.SessionTTL, nil)
			n, err := store.SweepExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("removed %d expired sessions\n", n)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config.json)")
	return cmd
}
