package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/filecdn/pkg/configs"
)

var (
	// config 子命令.
	configCmd = &cobra.Command{
		Use:               "config",
		Short:             "config subcommands",
		PersistentPreRunE: loadConfig,
	}

	// 打印当前使用的配置文件路径.
	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the path of the current config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := configs.GetViper()
			if v == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "config not initialized")

				return nil
			}

			cfg := v.ConfigFileUsed()
			if cfg == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file used (maybe using defaults or env)")

				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cfg)

			return nil
		},
	}

	// 以 JSON 打印生效的配置，--debug 时附带 viper 的 Debug 输出.
	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "print the current config values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := configs.GetViper()
			c := configs.GetConfig()

			if v == nil || c == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "config not initialized.")

				return nil
			}

			if debug {
				v.DebugTo(cmd.ErrOrStderr())
			}

			b, err := sonic.ConfigStd.MarshalIndent(c, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config to JSON: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			fmt.Fprintf(cmd.OutOrStdout(), "database: %s\npublic_url: %s\n", c.Database(), c.PublicURL())

			return nil
		},
	}
)

// registerConfigsCommands 注册 CLI 子命令.
func registerConfigsCommands() {
	debugCmd.Flags().BoolVar(&debug, "debug", false, "also print viper debug output")

	configCmd.AddCommand(pathCmd)
	configCmd.AddCommand(debugCmd)

	rootCmd.AddCommand(configCmd)
}
