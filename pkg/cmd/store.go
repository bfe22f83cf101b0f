package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yeisme/filecdn/pkg/internal/storage/content"
	"github.com/yeisme/filecdn/pkg/internal/storage/meta"
	"github.com/yeisme/filecdn/pkg/internal/storage/mq"
)

var (
	storeCmd = &cobra.Command{
		Use:   "store",
		Short: "storage backend related commands",
	}

	storeListCmd = &cobra.Command{
		Use:   "ls",
		Short: "list all registered backend types",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()

			printTypes(out, "Registered metadata store types:", meta.RegisteredTypes())
			printTypes(out, "Registered content store types:", content.RegisteredTypes())
			printTypes(out, "Registered event bus types:", mq.RegisteredTypes())
		},
	}
)

func printTypes(w io.Writer, title string, types []string) {
	fmt.Fprintln(w, title)

	for _, t := range types {
		fmt.Fprintln(w, " - "+t)
	}
}

// registerStoreCommands 注册存储相关命令.
func registerStoreCommands() {
	rootCmd.AddCommand(storeCmd)

	storeCmd.AddCommand(storeListCmd)
}
