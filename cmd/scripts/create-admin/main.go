// Command create-admin provisions an operator account for the admin API.
//
// Usage: ADMIN_PASSWORD=... create-admin admin@example.com
package main

import (
	"context"
	"os"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/config"
	mongorepo "github.com/ArowuTest/skinjackpot-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"github.com/ArowuTest/skinjackpot-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

func main() {
	if len(os.Args) < 2 {
		slog.Error("Admin email is required as a command line argument")
		os.Exit(2)
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		slog.Error("ADMIN_PASSWORD environment variable is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	admins := mongorepo.NewAdminUserRepository(client.Database())
	if err := admins.EnsureIndexes(ctx); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}
	// Only the admin repository is needed to create accounts
	auth := services.NewAuthService(nil, nil, nil, nil, admins, "", "")
	admin, err := auth.CreateAdmin(ctx, os.Args[1], password)
	if err != nil {
		slog.Error("Failed to create admin", "error", err)
		os.Exit(1)
	}
	slog.Info("Admin created", "id", admin.ID.Hex(), "email", admin.Email)
}
