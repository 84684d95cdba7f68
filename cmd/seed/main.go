// Seed bootstraps a fresh database with a superuser, a system token, and an
// initial invite code, printing the generated credentials once.
package main

import (
	"log"
	"os"

	"github.com/raidledger/api/internal/auth"
	"github.com/raidledger/api/internal/config"
	"github.com/raidledger/api/internal/database"
	"github.com/raidledger/api/internal/model"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	username := getEnv("SEED_USERNAME", "admin")
	password := getEnv("SEED_PASSWORD", "")
	if password == "" {
		log.Fatal("SEED_PASSWORD is required")
	}

	var existing model.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		log.Fatalf("User %q already exists; refusing to reseed", username)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := model.User{
		Username:       username,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create superuser: %v", err)
	}

	key, err := auth.GenerateKey()
	if err != nil {
		log.Fatalf("Failed to generate token key: %v", err)
	}
	token := model.Token{
		Key:       key,
		TokenType: model.TokenTypeSystem,
		Name:      "seed system token",
		IsActive:  true,
	}
	if err := db.Create(&token).Error; err != nil {
		log.Fatalf("Failed to create system token: %v", err)
	}

	code, err := auth.GenerateInviteCode()
	if err != nil {
		log.Fatalf("Failed to generate invite code: %v", err)
	}
	invite := model.Invite{
		Code:        code,
		CreatedByID: &user.ID,
		IsActive:    true,
	}
	if err := db.Create(&invite).Error; err != nil {
		log.Fatalf("Failed to create invite: %v", err)
	}

	log.Printf("Created superuser %q (id %d)", user.Username, user.ID)
	log.Printf("System token: %s", key)
	log.Printf("Invite code: %s", code)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
