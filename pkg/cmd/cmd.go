// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// configPath 配置文件路径，空值时按默认搜索路径与环境变量加载.
	configPath string

	// debug 开启后 config debug 额外打印 viper 内部状态.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "objectvault",
		Short: "Object storage management service with full-text search",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print extra debug output")

	registerServeCommands()
	registerConfigsCommands()
	registerStorageCommands()
	registerESCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
