package repositories

import (
	"errors"
	"time"

	"mentormatch_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrMatchRequestNotFound = errors.New("match request not found")
	// ErrMatchRequestPairTaken - сработал уникальный индекс (mentor_id, mentee_id)
	ErrMatchRequestPairTaken = errors.New("match request for this pair already exists")
)

type MatchRequestRepository interface {
	Create(db *gorm.DB, req *models.MatchRequest) error
	// FindByIDForMentor и FindByIDForMentee ищут заявку с учетом владельца.
	FindByIDForMentor(db *gorm.DB, id, mentorID uint) (*models.MatchRequest, error)
	FindByIDForMentee(db *gorm.DB, id, menteeID uint) (*models.MatchRequest, error)
	FindByPair(db *gorm.DB, mentorID, menteeID uint) (*models.MatchRequest, error)
	Delete(db *gorm.DB, id uint) error

	HasPendingWithOtherMentor(db *gorm.DB, menteeID, mentorID uint) (bool, error)
	HasOtherAccepted(db *gorm.DB, mentorID, exceptID uint) (bool, error)

	UpdateStatus(db *gorm.DB, req *models.MatchRequest, status models.MatchRequestStatus) error
	RejectOtherPending(db *gorm.DB, mentorID, exceptID uint) (int64, error)

	ListByMentor(db *gorm.DB, mentorID uint) ([]models.MatchRequest, error)
	ListByMentee(db *gorm.DB, menteeID uint) ([]models.MatchRequest, error)
}

type matchRequestRepository struct{}

func NewMatchRequestRepository() MatchRequestRepository {
	return &matchRequestRepository{}
}

func (r *matchRequestRepository) Create(db *gorm.DB, req *models.MatchRequest) error {
	if err := db.Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrMatchRequestPairTaken
		}
		return err
	}
	return nil
}

func (r *matchRequestRepository) FindByIDForMentor(db *gorm.DB, id, mentorID uint) (*models.MatchRequest, error) {
	return r.first(db.Where("id = ? AND mentor_id = ?", id, mentorID))
}

func (r *matchRequestRepository) FindByIDForMentee(db *gorm.DB, id, menteeID uint) (*models.MatchRequest, error) {
	return r.first(db.Where("id = ? AND mentee_id = ?", id, menteeID))
}

func (r *matchRequestRepository) FindByPair(db *gorm.DB, mentorID, menteeID uint) (*models.MatchRequest, error) {
	return r.first(db.Where("mentor_id = ? AND mentee_id = ?", mentorID, menteeID))
}

func (r *matchRequestRepository) first(query *gorm.DB) (*models.MatchRequest, error) {
	var req models.MatchRequest
	if err := query.First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *matchRequestRepository) Delete(db *gorm.DB, id uint) error {
	result := db.Delete(&models.MatchRequest{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMatchRequestNotFound
	}
	return nil
}

func (r *matchRequestRepository) HasPendingWithOtherMentor(db *gorm.DB, menteeID, mentorID uint) (bool, error) {
	var count int64
	err := db.Model(&models.MatchRequest{}).
		Where("mentee_id = ? AND mentor_id <> ? AND status = ?", menteeID, mentorID, models.MatchRequestStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *matchRequestRepository) HasOtherAccepted(db *gorm.DB, mentorID, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&models.MatchRequest{}).
		Where("mentor_id = ? AND id <> ? AND status = ?", mentorID, exceptID, models.MatchRequestStatusAccepted).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatus записывает статус без проверки предыдущего и обновляет req.
func (r *matchRequestRepository) UpdateStatus(db *gorm.DB, req *models.MatchRequest, status models.MatchRequestStatus) error {
	now := time.Now()
	result := db.Model(&models.MatchRequest{}).Where("id = ?", req.ID).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMatchRequestNotFound
	}
	req.Status = status
	req.UpdatedAt = now
	return nil
}

func (r *matchRequestRepository) RejectOtherPending(db *gorm.DB, mentorID, exceptID uint) (int64, error) {
	result := db.Model(&models.MatchRequest{}).
		Where("mentor_id = ? AND id <> ? AND status = ?", mentorID, exceptID, models.MatchRequestStatusPending).
		Updates(map[string]interface{}{
			"status":     models.MatchRequestStatusRejected,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *matchRequestRepository) ListByMentor(db *gorm.DB, mentorID uint) ([]models.MatchRequest, error) {
	requests := []models.MatchRequest{}
	err := db.Where("mentor_id = ?", mentorID).
		Order("created_at DESC").Order("id DESC").
		Find(&requests).Error
	return requests, err
}

func (r *matchRequestRepository) ListByMentee(db *gorm.DB, menteeID uint) ([]models.MatchRequest, error) {
	requests := []models.MatchRequest{}
	err := db.Where("mentee_id = ?", menteeID).
		Order("created_at DESC").Order("id DESC").
		Find(&requests).Error
	return requests, err
}
