// File: cmd/stowage/migrate_cmd.go
package main

import (
	"fmt"

	"stowage/internal/flags"
	"stowage/pkg/multi/migration"

	"github.com/spf13/cobra"
)

type migrateFlags struct {
	from         string
	to           string
	prefix       string
	conflict     string
	concurrency  int
	deleteSource bool
	force        bool
}

func newMigrateCmd() *cobra.Command {
	cmdFlags := migrateFlags{}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy or move objects between two backends",
		Long: `Copies every object under --prefix from one configured backend to another.
With --delete-source each object is removed from the source once copied.
--conflict decides what happens when the destination already holds an id:
overwrite (default), skip, or fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := servicesFromContext(cmd.Context())
			if err != nil {
				return err
			}

			opts := migration.DefaultOptions()
			opts.Prefix = cmdFlags.prefix
			opts.DeleteSource = cmdFlags.deleteSource

			conflict := app.Config.Migration.Conflict
			if cmd.Flags().Changed(flags.Conflict) {
				conflict = cmdFlags.conflict
			}
			if opts.Conflict, err = migration.ParseConflict(conflict); err != nil {
				return err
			}

			opts.Concurrency = app.Config.Migration.Concurrency
			if cmd.Flags().Changed(flags.Concurrency) {
				opts.Concurrency = cmdFlags.concurrency
			}

			if cmdFlags.deleteSource && !cmdFlags.force {
				message := fmt.Sprintf("Objects will be deleted from '%s' after they are copied to '%s'.", cmdFlags.from, cmdFlags.to)
				ok, err := app.prompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(message, cmdFlags.from)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Migration cancelled.")
					return nil
				}
			}

			result, err := app.StorageService.Migrate(cmd.Context(), cmdFlags.from, cmdFlags.to, opts)
			if err != nil {
				return fmt.Errorf("error migrating from %s to %s: %w", cmdFlags.from, cmdFlags.to, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), app.StorageFormatter.FormatMigrationResult(result))
			if !result.Complete() {
				return fmt.Errorf("migration finished with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	migrateCmd.Flags().StringVar(&cmdFlags.from, flags.From, "", "Source backend (required)")
	migrateCmd.MarkFlagRequired(flags.From)
	migrateCmd.Flags().StringVar(&cmdFlags.to, flags.To, "", "Destination backend (required)")
	migrateCmd.MarkFlagRequired(flags.To)
	migrateCmd.Flags().StringVar(&cmdFlags.prefix, flags.Prefix, "", "Only migrate ids starting with this prefix")
	migrateCmd.Flags().StringVar(&cmdFlags.conflict, flags.Conflict, "overwrite", "What to do with ids already at the destination: overwrite, skip or fail (default from migration.conflict)")
	migrateCmd.Flags().IntVar(&cmdFlags.concurrency, flags.Concurrency, migration.DefaultConcurrency, "Objects transferred at once (default from migration.concurrency)")
	migrateCmd.Flags().BoolVar(&cmdFlags.deleteSource, flags.DeleteSource, false, "Delete each object from the source after copying it")
	migrateCmd.Flags().BoolVarP(&cmdFlags.force, flags.Force, flags.ForceShort, false, "Do not ask for confirmation before deleting from the source")

	return migrateCmd
}
