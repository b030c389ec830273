package seeders

import (
	"encoding/json"
	"log"
	"time"

	"github.com/82deutschmark/Disavowed/model"
	"gorm.io/gorm"
)

// CharacterSeeder handles seeding the character catalog
type CharacterSeeder struct {
	db *gorm.DB
}

// NewCharacterSeeder creates a new character seeder
func NewCharacterSeeder(db *gorm.DB) *CharacterSeeder {
	return &CharacterSeeder{db: db}
}

// SeedCharacters seeds the database with the base espionage cast
func (s *CharacterSeeder) SeedCharacters() error {
	characters := s.getCharacters()

	for _, character := range characters {
		var existingChar model.Character
		if err := s.db.Where("id = ?", character.ID).First(&existingChar).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&character).Error; err != nil {
					log.Printf("Error creating character %s: %v", character.Name, err)
					return err
				}
				log.Printf("Created character: %s", character.Name)
			} else {
				log.Printf("Error checking character %s: %v", character.Name, err)
				return err
			}
		} else {
			log.Printf("Character %s already exists, skipping", character.Name)
		}
	}

	log.Println("Character seeding completed successfully")
	return nil
}

// getCharacters returns the base cast: mission givers, villains, partners,
// and civilians for the choice pool
func (s *CharacterSeeder) getCharacters() []model.Character {
	now := time.Now()

	characters := []model.Character{
		{
			ID:          "char_director_hale",
			Name:        "Director Marcus Hale",
			Role:        model.RoleMissionGiver,
			Traits:      jsonArray([]string{"calculating", "loyal to the agency", "chain smoker"}),
			Backstory:   "Thirty years in clandestine services, the last ten running deniable operations out of a shipping company front in Rotterdam. Hale burned his own network once to protect an asset and never talks about it.",
			Description: "A gaunt man in his sixties with a gravel voice, perpetually rumpled suit and a lighter he flips open but rarely uses.",
			ImageURL:    "/assets/characters/director_hale.jpg",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "char_madame_okafor",
			Name:        "Madame Adaeze Okafor",
			Role:        model.RoleMissionGiver,
			Traits:      jsonArray([]string{"charming", "ruthless broker", "owes nobody"}),
			Backstory:   "Former intelligence officer turned information broker operating from a private bank in Geneva. She trades in secrets the way others trade in currency, and every favor she grants accrues interest.",
			Description: "An elegant woman in her fifties, impeccable tailoring, gold-rimmed glasses she looks over rather than through.",
			ImageURL:    "/assets/characters/madame_okafor.jpg",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "char_viktor_morozov",
			Name:        "Viktor Morozov",
			Role:        model.RoleVillain,
			Traits:      jsonArray([]string{"brilliant", "vindictive", "collector of debts"}),
			Backstory:   "Ex-military arms dealer who rebuilt himself as a legitimate logistics magnate after a rival sold him out. He keeps a ledger of everyone who wronged him and has crossed out every name but three.",
			Description: "A broad-shouldered man with a boxer's nose and a banker's wardrobe, always flanked by two silent staff.",
			ImageURL:    "/assets/characters/viktor_morozov.jpg",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "char_dr_lin_zhao",
			Name:        "Dr. Lin Zhao",
			Role:        model.RoleVillain,
			Traits:      jsonArray([]string{"visionary", "amoral", "believes the ends justify everything"}),
			Backstory:   "A biotech prodigy who lost her lab, her funding and her reputation to a government inquiry she swears was manufactured. Now she sells her work to whoever pays and calls it science without borders.",
			Description: "Mid-forties, lab coat over designer clothes, speaks softly and never repeats herself.",
			ImageURL:    "/assets/characters/dr_lin_zhao.jpg",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "char_elena_vasquez",
			Name:        "Elena Vásquez",
			Role:        model.RolePartner,
			Traits:      jsonArray([]string{"resourceful", "trusts no one fully", "excellent driver"}),
			Backstory:   "Former federal police, drummed out for refusing to bury a case. She freelances now, and the agency keeps her on retainer for jobs that need someone who can disappear into any city in Latin America.",
			Description: "Compact, athletic, leather jacket and a mechanic's hands. Smiles easily, which people always misread as friendliness.",
			ImageURL:    "/assets/characters/elena_vasquez.jpg",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "char_kwame_mensah",
			Name:        "Kwame Mensah",
			Role:        model.RolePartner,
			Traits:      jsonArray([]string{"patient", "ex-signals officer", "photographic memory"}),
			Backstory:   "Ran signals intercepts for a decade before going private. He can coax a conversation out of any network on earth and remembers every frequency he has ever heard.",
			Description: "Tall, unhurried, headphones around his neck, carries a battered aluminum case he lets no one touch.",
			ImageURL:    "/assets/characters/kwame_mensah.jpg",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "char_sofia_lindqvist",
			Name:        "Sofia Lindqvist",
			Role:        model.RoleCivilian,
			Traits:      jsonArray([]string{"observant", "journalist", "keeps receipts"}),
			Backstory:   "Investigative reporter whose sources keep ending up in the middle of your operations. She suspects more than she prints, which makes her both useful and dangerous.",
			Description: "Thirties, press lanyard, a notebook full of shorthand nobody else can read.",
			ImageURL:    "/assets/characters/sofia_lindqvist.jpg",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "char_tariq_nassar",
			Name:        "Tariq Nassar",
			Role:        model.RoleCivilian,
			Traits:      jsonArray([]string{"connected", "hotel concierge", "hears everything"}),
			Backstory:   "Head concierge at a five-star hotel favored by diplomats and worse. Twenty years of discreet favors have left him owed by half the intelligence services in the region.",
			Description: "Immaculate uniform, silver mustache, a memory for faces that borders on the supernatural.",
			ImageURL:    "/assets/characters/tariq_nassar.jpg",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	return characters
}

func jsonArray(items []string) json.RawMessage {
	data, _ := json.Marshal(items)
	return data
}
