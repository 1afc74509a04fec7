package main

import (
	"os"

	"github.com/spf13/cobra"

	"gitgate/internal/interfaces/cli/migrate"
	"gitgate/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gitgate",
		Short: "GitGate - GitHub installation access resolver",
		Long:  `GitGate links GitHub App installations to users and answers repository access questions from a synced local cache.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
