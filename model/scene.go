package model

import "time"

// SceneImage is metadata for an illustration stored in object storage.
type SceneImage struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:200"`
	ObjectKey string    `json:"object_key" gorm:"size:500;not null"`
	Format    string    `json:"format" gorm:"size:10"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SizeBytes int64     `json:"size_bytes"`
	SceneType string    `json:"scene_type" gorm:"size:100"`
	Setting   string    `json:"setting" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
}
