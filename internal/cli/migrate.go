package cli

import (
	"fmt"

	"bread-calculator/internal/storage"

	"github.com/spf13/cobra"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	Down bool
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Down, "down", false, "roll back every applied migration")

	return cmd
}

func runMigrate(rootOpts *RootOptions, opts *MigrateOptions, cmd *cobra.Command) error {
	cfg, log, err := bootstrap(rootOpts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close(db)

	if opts.Down {
		if err := storage.Rollback(db, cfg.Database.Driver); err != nil {
			return err
		}
	} else if err := storage.Migrate(db, cfg.Database.Driver); err != nil {
		return err
	}

	version, dirty, err := storage.SchemaVersion(db, cfg.Database.Driver)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
	return nil
}
