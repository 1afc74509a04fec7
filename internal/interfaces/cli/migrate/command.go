// Package migrate implements the schema migration subcommand.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitgate/internal/infrastructure/config"
	"gitgate/internal/infrastructure/database"
	"gitgate/internal/infrastructure/migration"
	"gitgate/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply the schema contract or inspect which of its tables exist.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply the schema contract",
		RunE:  runUp,
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which contract tables exist",
		RunE:  runStatus,
	}
}

func initEnv() (logger.Interface, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return logger.NewLogger(), nil
}

func runUp(cmd *cobra.Command, args []string) error {
	log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migration.AutoMigrate(database.Get(), log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	_, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	status, err := migration.Status(database.Get())
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	for table, exists := range status {
		marker := "missing"
		if exists {
			marker = "ok"
		}
		fmt.Printf("%-28s %s\n", table, marker)
	}
	return nil
}
