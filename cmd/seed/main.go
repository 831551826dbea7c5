package main

import (
	"log"
	"os"

	"ai-assistant-be/internal/model"
	"ai-assistant-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding sample users...")

	users := []model.User{
		{Name: "Alice Johnson", Email: "alice.johnson@example.com", Balance: 1250.75, Active: true},
		{Name: "Bob Smith", Email: "bob.smith@example.com", Balance: 340.20, Active: true},
		{Name: "Carol Martinez", Email: "carol.martinez@example.com", Balance: 0, Active: false},
		{Name: "David Lee", Email: "david.lee@example.com", Balance: 987.50, Active: true},
		{Name: "Eve Thompson", Email: "eve.thompson@example.com", Balance: 52.10, Active: false},
	}

	for _, u := range users {
		var existing model.User
		if err := db.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			log.Printf("User '%s' already exists, skipping...", u.Email)
			continue
		}

		if err := db.Create(&u).Error; err != nil {
			log.Printf("Error creating user '%s': %v", u.Email, err)
		} else {
			log.Printf("Created user: %s (%s)", u.Name, u.Email)
		}
	}

	log.Println("User seeding completed!")
}
