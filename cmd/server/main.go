package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// newRootCommand 根命令：serve / migrate / reconcile / token
func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "campus-life",
		Short:         "校园生活课表与待办服务",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认 ./config/config.yaml）")

	root.AddCommand(
		newServeCommand(&configPath),
		newMigrateCommand(&configPath),
		newReconcileCommand(&configPath),
		newTokenCommand(&configPath),
	)
	return root
}
