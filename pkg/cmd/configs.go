package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/objectvault/pkg/configs"
	"github.com/yeisme/objectvault/pkg/rule"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "config subcommands",
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the path of the current config file",
		RunE:  runConfigPath,
	}

	configDebugCmd = &cobra.Command{
		Use:   "debug",
		Short: "print the current config values",
		RunE:  runConfigDebug,
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "validate the current config against field rules",
		RunE:  runConfigValidate,
	}
)

func runConfigPath(cmd *cobra.Command, _ []string) error {
	v := configs.GetViper()
	if v == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "config not initialized")

		return nil
	}

	if cfg := v.ConfigFileUsed(); cfg != "" {
		fmt.Fprintln(cmd.OutOrStdout(), cfg)

		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "no config file used (maybe using defaults or env)")

	return nil
}

func runConfigDebug(cmd *cobra.Command, _ []string) error {
	v := configs.GetViper()
	if v == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "config not initialized.")

		return nil
	}

	if debug {
		v.Debug()
	}

	// 以 JSON 格式打印合并后的配置
	b, err := json.MarshalIndent(configs.GetConfig(), "", "  ")
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "failed to marshal config to JSON:", err)

		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(b))

	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	c := configs.GetConfig()
	if c == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "config not initialized.")

		return nil
	}

	if err := rule.ValidateStruct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "config OK")

	return nil
}

// registerConfigsCommands 注册 CLI 子命令.
func registerConfigsCommands() {
	configCmd.AddCommand(configPathCmd, configDebugCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
