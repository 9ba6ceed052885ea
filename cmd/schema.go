package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"opsconsole/internal/directory"
	"opsconsole/internal/logger"
	"opsconsole/internal/store/postgres"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the Postgres tables",
	Long: `Create the projects, beneficiaries and bank_accounts tables if they do not
exist. With --seed, projects and beneficiaries from a directory JSON file are
inserted or updated.

Required environment variables:
  DATABASE_URL - Postgres connection string`,
	Example: `  opsconsole schema
  opsconsole schema --seed directory.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("schema")
		seedPath, _ := cmd.Flags().GetString("seed")
		timeoutSecs, _ := cmd.Flags().GetInt("timeout")

		ctx, cancel := createCommandContext(timeoutSecs, log)
		defer cancel()

		db, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		log.Info().Msg("Schema is up to date")

		if seedPath == "" {
			return nil
		}

		dir, err := directory.Load(ctx, directory.FileSource{Path: seedPath})
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
		if err := postgres.NewDirectoryRepository(db).Import(ctx, dir.Projects, dir.Beneficiaries); err != nil {
			return fmt.Errorf("failed to import seed data: %w", err)
		}

		log.Info().
			Int("projects", len(dir.Projects)).
			Int("beneficiaries", len(dir.Beneficiaries)).
			Msg("Seed data imported")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().String("seed", "", "Directory JSON file to import")
	schemaCmd.Flags().Int("timeout", 60, "Timeout in seconds")
}
