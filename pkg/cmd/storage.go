package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/objectvault/pkg/internal/storage/db"
	"github.com/yeisme/objectvault/pkg/internal/storage/kv"
	"github.com/yeisme/objectvault/pkg/internal/storage/mq"
)

// newListCmd 构造一个打印某类存储后端已注册驱动的 list 命令.
func newListCmd(kind string, types func() []string) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   fmt.Sprintf("list all registered %s types", kind),
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s types:\n", kind)
			for _, t := range types() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+t)
			}
		},
	}
}

// registerStorageCommands 注册 db/kv/mq 驱动查询命令.
func registerStorageCommands() {
	dbCmd := &cobra.Command{Use: "db", Short: "Database related commands"}
	dbCmd.AddCommand(newListCmd("database", func() []string {
		types := db.GetRegisteredDBTypes()
		out := make([]string, len(types))
		for i, t := range types {
			out[i] = string(t)
		}

		return out
	}))

	kvCmd := &cobra.Command{Use: "kv", Short: "Key-Value store related commands", Aliases: []string{"keyvalue"}}
	kvCmd.AddCommand(newListCmd("kv", func() []string {
		types := kv.GetRegisteredKVTypes()
		out := make([]string, len(types))
		for i, t := range types {
			out[i] = string(t)
		}

		return out
	}))

	mqCmd := &cobra.Command{Use: "mq", Short: "Message queue related commands", Aliases: []string{"messagequeue"}}
	mqCmd.AddCommand(newListCmd("mq", func() []string {
		types := mq.GetRegisteredMQTypes()
		out := make([]string, len(types))
		for i, t := range types {
			out[i] = string(t)
		}

		return out
	}))

	rootCmd.AddCommand(dbCmd, kvCmd, mqCmd)
}
