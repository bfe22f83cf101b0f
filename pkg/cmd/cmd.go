// Package cmd contains the command line applications for the project.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yeisme/filecdn/pkg/configs"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:          "filecdn",
		Short:        "A minimal file storage CDN",
		Version:      configs.AppVersion,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory containing config.*")

	registerServeCommand()
	registerConfigsCommands()
	registerStoreCommands()
	registerReconcileCommand()
}

// loadConfig 读取并校验配置，供需要配置的子命令在运行前调用.
func loadConfig(*cobra.Command, []string) error {
	_, err := configs.InitConfig(configPath)
	return err
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
