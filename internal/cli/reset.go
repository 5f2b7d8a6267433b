package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/security"
	"github.com/terraincognita07/tempo/internal/services"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

func newResetPasswordCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Replace a user's password with a temporary one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDatabase(*configPath)
			if err != nil {
				return err
			}
			defer closeDatabase(database)
			return RunResetPasswordCommand(cmd.OutOrStdout(), database, args[0])
		},
	}
}

// RunResetPasswordCommand sets a temporary password, flags the account to
// change it and signs the user out everywhere.
func RunResetPasswordCommand(out io.Writer, database *gorm.DB, username string) error {
	normalized, err := services.NormalizeUsername(username)
	if err != nil {
		return fmt.Errorf("invalid username %q", username)
	}

	users := db.NewUserRepository(database)
	user, err := users.FindByUsername(normalized)
	if err != nil {
		if db.IsNotFound(err) {
			return fmt.Errorf("user %s not found", normalized)
		}
		return fmt.Errorf("load user: %w", err)
	}

	temporaryPassword, err := generateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}
	passwordHash, err := security.HashPassword(temporaryPassword)
	if err != nil {
		return fmt.Errorf("hash temporary password: %w", err)
	}

	if err := users.UpdatePassword(user.ID, passwordHash, true); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if err := db.NewAuthSessionRepository(database).DeleteByUser(user.ID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	fmt.Fprintln(out, "Password reset successful")
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "User must change password on next login.")
	return nil
}

func generateTemporaryPassword(length int) (string, error) {
	password, err := security.TemporaryPassword(length)
	if err != nil {
		return "", err
	}
	if services.ValidatePasswordStrength(password) != nil {
		return "", errors.New("temporary password is too weak")
	}
	return password, nil
}
