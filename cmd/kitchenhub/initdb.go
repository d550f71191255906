package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shalteor/kitchenhub/internal/crypto"
	"github.com/shalteor/kitchenhub/internal/db"
	"github.com/shalteor/kitchenhub/internal/service"
)

var seedUsers = []string{"admin", "user1"}

const seedPassword = "password"

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the schema and seed demo data",
	Long: `Creates the database schema and seeds the demo accounts
admin and user1 (password "password") plus a few shopping list items.
Existing users and a non-empty shopping list are left alone.`,
	RunE: runInitDB,
}

func runInitDB(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	hasher, err := crypto.NewHasher(crypto.Algorithm(cfg.Auth.PasswordHash))
	if err != nil {
		return err
	}
	svc := service.New(database, service.Options{Hasher: hasher, Logger: logger})

	for _, username := range seedUsers {
		created, err := svc.EnsureUser(ctx, username, seedPassword)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", username, err)
		}
		logger.Info("seed user", zap.String("username", username), zap.Bool("created", created))
	}

	n, err := svc.SeedShoppingItems(ctx)
	if err != nil {
		return err
	}
	logger.Info("seed shopping items", zap.Int("added", n))

	fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s\n", cfg.Database.Path)
	return nil
}
