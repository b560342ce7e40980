package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tgyn-admin-api/internal/auth"
	"github.com/tgyn-admin-api/internal/config"
	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/repository"
	"github.com/tgyn-admin-api/internal/sheetdb"
	"github.com/tgyn-admin-api/pkg/logger"
)

// Rewrites plain-text passwords in the Users worksheet as bcrypt hashes.
// Already-hashed rows are left untouched, so the tool is safe to re-run.
func main() {
	log := logger.New()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	store, err := sheetdb.New(ctx, &cfg.Sheets, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to sheet store")
	}

	repos := repository.New(store)
	users, err := repos.User.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load users")
	}
	fmt.Printf("Found %d users in the Users worksheet\n", len(users))

	var pending []*models.User
	for _, user := range users {
		switch {
		case strings.TrimSpace(user.Password) == "":
			fmt.Printf("  %s: no password set, skipping\n", user.Username)
		case auth.IsHashed(user.Password):
			fmt.Printf("  %s: already hashed\n", user.Username)
		default:
			pending = append(pending, user)
		}
	}

	if len(pending) == 0 {
		fmt.Println("All passwords are already hashed, nothing to do.")
		return
	}

	fmt.Printf("\n%d passwords to migrate:\n", len(pending))
	for _, user := range pending {
		fmt.Printf("  - %s\n", user.Username)
	}
	fmt.Println("\nThis permanently rewrites the stored passwords. Make sure you have a backup.")
	fmt.Print("Do you want to proceed? (yes/no): ")

	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if strings.TrimSpace(strings.ToLower(answer)) != "yes" {
		fmt.Println("Migration cancelled.")
		return
	}

	updated := 0
	for _, user := range pending {
		hashed, err := auth.HashPassword(user.Password)
		if err != nil {
			log.Error().Err(err).Str("username", user.Username).Msg("Failed to hash password")
			continue
		}
		if err := repos.User.UpdatePassword(ctx, user.Row, hashed); err != nil {
			log.Error().Err(err).Str("username", user.Username).Msg("Failed to update password")
			continue
		}
		fmt.Printf("  migrated %s\n", user.Username)
		updated++
	}

	fmt.Printf("\nMigration complete. Updated %d of %d passwords.\n", updated, len(pending))
}
