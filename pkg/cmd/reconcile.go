package cmd

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/service"
	"github.com/yeisme/filecdn/pkg/internal/storage"
	"github.com/yeisme/filecdn/pkg/log"
)

var (
	failOnOrphans bool

	reconcileCmd = &cobra.Command{
		Use:     "reconcile",
		Short:   "report metadata records whose content is missing",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := configs.GetConfig()

			log.Init(cfg.Log, cfg.Server.Debug)
			defer log.Close() //nolint:errcheck

			mgr, err := storage.New(ctx, cfg, log.Logger())
			if err != nil {
				return err
			}
			defer mgr.Close(ctx) //nolint:errcheck

			svc := service.NewFileService(mgr.Meta, mgr.Content, log.Logger())

			report, err := svc.Reconcile(ctx)
			if err != nil {
				return err
			}

			b, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			if failOnOrphans && len(report.Orphans) > 0 {
				return errors.New("orphaned metadata found")
			}

			return nil
		},
	}
)

func registerReconcileCommand() {
	reconcileCmd.Flags().BoolVar(&failOnOrphans, "fail-on-orphans", false, "exit with an error when orphans are found")

	rootCmd.AddCommand(reconcileCmd)
}
