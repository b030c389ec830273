package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/82deutschmark/Disavowed/seed/seeders"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, characters")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			envOr("DB_HOST", "localhost"),
			envOr("DB_PORT", "5432"),
			envOr("DB_USER", "postgres"),
			envOr("DB_PASSWORD", "postgres"),
			envOr("DB_NAME", "disavowed"),
			envOr("DB_SSLMODE", "disable"),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "characters":
		log.Println("Seeding characters only...")
		if err := mainSeeder.SeedCharactersOnly(); err != nil {
			log.Fatalf("Failed to seed characters: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all' or 'characters'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func showHelp() {
	log.Println(`
Database Seeding Tool for Disavowed

Usage: go run seed/main.go [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, characters
  -help
        Show this help message

Environment Variables:
  DATABASE_URL - Full connection string, or the DB_* parts`)
}
