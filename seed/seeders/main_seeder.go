package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	characterSeeder := NewCharacterSeeder(s.db)
	if err := characterSeeder.SeedCharacters(); err != nil {
		log.Printf("Character seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedCharactersOnly seeds only characters
func (s *MainSeeder) SeedCharactersOnly() error {
	characterSeeder := NewCharacterSeeder(s.db)
	return characterSeeder.SeedCharacters()
}
