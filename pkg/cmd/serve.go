package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/filecdn/pkg/app"
	"github.com/yeisme/filecdn/pkg/configs"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "start the http server",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, configs.GetConfig())
		if err != nil {
			return err
		}

		return a.Run(ctx)
	},
}

func registerServeCommand() {
	rootCmd.AddCommand(serveCmd)
}
