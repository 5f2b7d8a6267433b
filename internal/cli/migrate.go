package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/tempo/internal/db"
	"gorm.io/gorm"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and print their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDatabase(*configPath)
			if err != nil {
				return err
			}
			defer closeDatabase(database)
			return printMigrationStatus(cmd.OutOrStdout(), database)
		},
	}
}

// printMigrationStatus runs after db.Open, which has already applied every
// pending migration.
func printMigrationStatus(out io.Writer, database *gorm.DB) error {
	if database.Dialector.Name() != db.DriverSQLite {
		fmt.Fprintln(out, "schema reconciled with AutoMigrate")
		return nil
	}

	states, err := db.MigrationStatus(database)
	if err != nil {
		return err
	}
	for _, state := range states {
		marker := "pending"
		if state.Applied {
			marker = "applied"
		}
		fmt.Fprintf(out, "%s  %-8s %s\n", state.Version, marker, state.Name)
	}
	return nil
}
