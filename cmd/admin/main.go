// Package main provides account management utilities for the blog API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"blogapi/internal/bootstrap"
	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/models"
	"blogapi/internal/repository"
	"blogapi/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin activate <user_id>     - Re-enable a user account")
	fmt.Println("  go run ./cmd/admin deactivate <user_id>   - Disable a user account")
	fmt.Println("  go run ./cmd/admin show <user_id>         - Show a user account")
}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	id, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil || id == 0 {
		fmt.Printf("Invalid user ID: %s\n", os.Args[2])
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SkipSchema: true, SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	users := service.NewUserService(repository.NewStore(db, database.TxOptions(db)))
	ctx := context.Background()

	var user *models.User
	switch os.Args[1] {
	case "activate":
		user, err = users.SetActive(ctx, uint(id), true)
	case "deactivate":
		user, err = users.SetActive(ctx, uint(id), false)
	case "show":
		user, err = users.GetByID(ctx, uint(id))
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			fmt.Printf("User with ID %d not found\n", id)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}

	fmt.Printf("ID: %d | Username: %s | Email: %s | Active: %t | Created: %s\n",
		user.ID, user.Username, user.Email, user.IsActive, user.CreatedAt.Format("2006-01-02"))
}
