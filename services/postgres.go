package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		// Fallback to individual environment variables
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "disavowed"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		ds.database = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return err
	}

	models := []interface{}{
		&model.User{},
		&model.Character{},
		&model.PlayerProgress{},
		&model.Mission{},
		&model.StoryGeneration{},
		&model.StoryNode{},
		&model.StoryChoice{},
		&model.Transaction{},
		&model.SceneImage{},
	}

	err = ds.db.AutoMigrate(models...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
}

// Transaction runs fn against a store bound to one database transaction.
func (ds *PostgresService) Transaction(fn func(tx GameStore) error) error {
	return ds.db.Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{db: tx})
	})
}

// Store returns the root GameStore handle (no transaction scope).
func (ds *PostgresService) Store() GameStore {
	return &txStore{db: ds.db}
}

// txStore implements GameStore over a *gorm.DB, which may be the root handle
// or a transaction handle.
type txStore struct {
	db *gorm.DB
}

func (s *txStore) Transaction(fn func(tx GameStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{db: tx})
	})
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ==================== USERS ====================

func (s *txStore) GetUserByID(id string) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (s *txStore) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("email = ? OR username = ?", emailOrUsername, emailOrUsername).First(&user).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (s *txStore) CreateUser(user *model.User) error {
	return storeError(s.db.Create(user).Error)
}

func (s *txStore) SaveUser(user *model.User) error {
	return storeError(s.db.Save(user).Error)
}

// ==================== PLAYER PROGRESS ====================

func (s *txStore) GetProgressByPlayerID(playerID string) (*model.PlayerProgress, error) {
	var progress model.PlayerProgress
	if err := s.db.First(&progress, "player_id = ?", playerID).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &progress, nil
}

func (s *txStore) GetProgressByUserID(userID string) (*model.PlayerProgress, error) {
	var progress model.PlayerProgress
	if err := s.db.First(&progress, "user_id = ?", userID).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &progress, nil
}

func (s *txStore) CreateProgress(progress *model.PlayerProgress) error {
	return storeError(s.db.Create(progress).Error)
}

func (s *txStore) SaveProgress(progress *model.PlayerProgress) error {
	return storeError(s.db.Save(progress).Error)
}

func (s *txStore) DeleteProgress(id string) error {
	return storeError(s.db.Delete(&model.PlayerProgress{}, "id = ?", id).Error)
}

// ==================== CHARACTERS ====================

func (s *txStore) GetCharacter(id string) (*model.Character, error) {
	var character model.Character
	if err := s.db.First(&character, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &character, nil
}

func (s *txStore) ListCharacters() ([]model.Character, error) {
	var characters []model.Character
	if err := s.db.Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

func (s *txStore) RandomCharacters(limit int) ([]model.Character, error) {
	var characters []model.Character
	if err := s.db.Order("RANDOM()").Limit(limit).Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

func (s *txStore) CreateCharacter(character *model.Character) error {
	return storeError(s.db.Create(character).Error)
}

// ==================== MISSIONS ====================

func (s *txStore) GetMission(id string) (*model.Mission, error) {
	var mission model.Mission
	if err := s.db.First(&mission, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &mission, nil
}

func (s *txStore) CreateMission(mission *model.Mission) error {
	return storeError(s.db.Create(mission).Error)
}

func (s *txStore) SaveMission(mission *model.Mission) error {
	return storeError(s.db.Save(mission).Error)
}

// ==================== STORY GRAPH ====================

func (s *txStore) CreateStory(story *model.StoryGeneration) error {
	return storeError(s.db.Create(story).Error)
}

func (s *txStore) GetStory(id string) (*model.StoryGeneration, error) {
	var story model.StoryGeneration
	if err := s.db.First(&story, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &story, nil
}

func (s *txStore) GetNode(id string) (*model.StoryNode, error) {
	var node model.StoryNode
	if err := s.db.First(&node, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &node, nil
}

func (s *txStore) CreateNode(node *model.StoryNode) error {
	return storeError(s.db.Create(node).Error)
}

func (s *txStore) SaveNode(node *model.StoryNode) error {
	return storeError(s.db.Save(node).Error)
}

func (s *txStore) GetChoice(id string) (*model.StoryChoice, error) {
	var choice model.StoryChoice
	if err := s.db.First(&choice, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &choice, nil
}

func (s *txStore) GetChoicesByNode(nodeID string) ([]model.StoryChoice, error) {
	var choices []model.StoryChoice
	if err := s.db.Where("node_id = ?", nodeID).Order("created_at").Find(&choices).Error; err != nil {
		return nil, err
	}
	return choices, nil
}

func (s *txStore) CreateChoice(choice *model.StoryChoice) error {
	return storeError(s.db.Create(choice).Error)
}

func (s *txStore) SaveChoice(choice *model.StoryChoice) error {
	return storeError(s.db.Save(choice).Error)
}

// ==================== TRANSACTIONS ====================

func (s *txStore) CreateTransaction(transaction *model.Transaction) error {
	return storeError(s.db.Create(transaction).Error)
}

func (s *txStore) ListTransactions(playerID string) ([]model.Transaction, error) {
	var transactions []model.Transaction
	if err := s.db.Where("player_id = ?", playerID).Order("created_at").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// ==================== SCENE IMAGES ====================

func (s *txStore) CreateSceneImage(scene *model.SceneImage) error {
	return storeError(s.db.Create(scene).Error)
}

func (s *txStore) RandomSceneImage() (*model.SceneImage, error) {
	var scene model.SceneImage
	if err := s.db.Order("RANDOM()").First(&scene).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &scene, nil
}

// storeError maps write failures onto HTTP-ish categories and logs them
// with a severity matching the category. Every txStore write path routes
// through it, so constraint violations surface as proper statuses instead
// of generic 500s.
func storeError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "duplicate key value") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return shared.NewAppError(statusCode, err, errorType)
}
