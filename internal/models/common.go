package models

import (
	"time"
)

type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// AllModels - список моделей для миграций
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&MatchRequest{},
		&ProfileImage{},
	}
}
