package main

import (
	"flag"
	"log"

	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/pkg/config"
	"go-commerce-ledger/pkg/database"

	"golang.org/x/crypto/bcrypt"
)

// Operational escape hatch: reset a user's password directly in the database.
func main() {
	email := flag.String("email", "admin@example.com", "email of the account to reset")
	password := flag.String("password", "admin123", "new password")
	flag.Parse()

	cfg := config.Load()
	db := database.Connect(cfg)

	var user model.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("user %s not found: %v", *email, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// Rotate the token version too so existing sessions are invalidated.
	updates := map[string]interface{}{
		"password":      string(hashedPassword),
		"token_version": "",
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		log.Fatalf("failed to update password: %v", err)
	}

	log.Printf("password for %s has been reset", *email)
}
