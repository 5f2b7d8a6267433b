package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
	"github.com/terraincognita07/tempo/internal/security"
	"github.com/terraincognita07/tempo/internal/services"
	"gorm.io/gorm"
)

func newCreateAdminCommand(configPath *string) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create-admin <username>",
		Short: "Create an approved admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptNewPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			database, err := openDatabase(*configPath)
			if err != nil {
				return err
			}
			defer closeDatabase(database)

			user, err := CreateAdmin(database, args[0], email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "optional email address")
	return cmd
}

// CreateAdmin inserts an approved admin, bypassing the registration queue.
func CreateAdmin(database *gorm.DB, username string, email string, password string) (models.User, error) {
	normalized, err := services.NormalizeUsername(username)
	if err != nil {
		return models.User{}, fmt.Errorf("invalid username %q", username)
	}
	if email != "" {
		if email = services.NormalizeAuthEmail(email); email == "" {
			return models.User{}, errors.New("invalid email address")
		}
	}
	password = strings.TrimSpace(password)
	if err := services.ValidatePasswordStrength(password); err != nil {
		return models.User{}, errors.New("password must be at least 8 characters with a letter and a digit")
	}

	users := db.NewUserRepository(database)
	exists, err := users.ExistsByUsername(normalized)
	if err != nil {
		return models.User{}, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return models.User{}, fmt.Errorf("user %s already exists", normalized)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		Username:     normalized,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
		Status:       models.UserStatusApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(&user, false); err != nil {
		return models.User{}, fmt.Errorf("create admin: %w", err)
	}
	return user, nil
}

func promptNewPassword(prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	first, err := readPasswordNoEcho(os.Stdin)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(prompt, "Repeat password: ")
	second, err := readPasswordNoEcho(os.Stdin)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
