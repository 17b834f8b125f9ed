package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/objectvault/pkg/configs"
	es "github.com/yeisme/objectvault/pkg/internal/storage/es"
)

var (
	esCmd = &cobra.Command{
		Use:     "es",
		Short:   "Elasticsearch index related commands",
		Aliases: []string{"elasticsearch", "index"},
	}

	// 按配置的映射创建缺失的索引.
	esInitCmd = &cobra.Command{
		Use:   "init",
		Short: "create the article and pipeline indices if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newESClient(cmd.Context())
			if err != nil {
				return err
			}

			if err := client.InitIndices(cmd.Context()); err != nil {
				return err
			}

			cfg := configs.GetConfig().ES
			fmt.Fprintf(cmd.OutOrStdout(), "indices ready: %s, %s\n", cfg.ArticleIndex, cfg.PipelineIndex)

			return nil
		},
	}

	// 全量搬运一个索引到另一个索引，用于映射升级.
	esReindexCmd = &cobra.Command{
		Use:   "reindex <source> <target>",
		Short: "copy all documents from source index into target index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newESClient(cmd.Context())
			if err != nil {
				return err
			}

			if err := client.Reindex(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "reindexed %s -> %s\n", args[0], args[1])

			return nil
		},
	}

	esDeleteCmd = &cobra.Command{
		Use:     "delete <index>",
		Short:   "delete an index",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newESClient(cmd.Context())
			if err != nil {
				return err
			}

			if err := client.DeleteIndex(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted index %s\n", args[0])

			return nil
		},
	}
)

// newESClient 加载配置并建立 ES 连接，供离线索引管理命令使用.
func newESClient(ctx context.Context) (*es.Client, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return es.New(ctx)
}

// registerESCommands 注册 Elasticsearch 相关命令.
func registerESCommands() {
	rootCmd.AddCommand(esCmd)

	esCmd.AddCommand(esInitCmd)
	esCmd.AddCommand(esReindexCmd)
	esCmd.AddCommand(esDeleteCmd)
}
