package repositories

import (
	"errors"
	"time"

	"mentormatch_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProfileImageNotFound = errors.New("profile image not found")

type ProfileImageRepository interface {
	// Upsert заменяет текущее изображение пользователя целиком.
	Upsert(db *gorm.DB, img *models.ProfileImage) error
	FindByUserID(db *gorm.DB, userID uint) (*models.ProfileImage, error)
}

type profileImageRepository struct{}

func NewProfileImageRepository() ProfileImageRepository {
	return &profileImageRepository{}
}

func (r *profileImageRepository) Upsert(db *gorm.DB, img *models.ProfileImage) error {
	img.UpdatedAt = time.Now()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mime_type", "size", "data", "storage_key", "updated_at"}),
	}).Create(img).Error
}

func (r *profileImageRepository) FindByUserID(db *gorm.DB, userID uint) (*models.ProfileImage, error) {
	var img models.ProfileImage
	if err := db.Where("user_id = ?", userID).First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileImageNotFound
		}
		return nil, err
	}
	return &img, nil
}
