package repositories

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"mentormatch_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// Порядок сортировки в каталоге менторов
const (
	MentorOrderByID    = "id"
	MentorOrderByName  = "name"
	MentorOrderBySkill = "skill"
)

// MentorFilter - параметры выборки каталога менторов
type MentorFilter struct {
	Skill   string
	OrderBy string
}

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id uint) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByIDAndRole(db *gorm.DB, id uint, role models.UserRole) (*models.User, error)
	// UpdateFields применяет частичное обновление и всегда сдвигает updated_at.
	UpdateFields(db *gorm.DB, id uint, fields map[string]interface{}) error
	ListMentors(db *gorm.DB, filter MentorFilter) ([]models.User, error)
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExists
	}

	if err := db.Create(user).Error; err != nil {
		// Гонка между проверкой и вставкой: ловим уникальный индекс
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByID(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDAndRole(db *gorm.DB, id uint, role models.UserRole) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ? AND role = ?", id, role).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateFields(db *gorm.DB, id uint, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = time.Now()

	result := db.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ListMentors(db *gorm.DB, filter MentorFilter) ([]models.User, error) {
	query := db.Where("role = ?", models.UserRoleMentor)

	if filter.Skill != "" {
		// Навыки хранятся JSON-массивом, ищем элемент целиком, вместе с кавычками
		needle, err := json.Marshal(filter.Skill)
		if err != nil {
			return nil, err
		}
		query = query.Where("skills LIKE ? ESCAPE '!'", "%"+escapeLike(string(needle))+"%")
	}

	switch filter.OrderBy {
	case MentorOrderByName:
		query = query.Order("name ASC").Order("id ASC")
	case MentorOrderBySkill:
		query = query.Order("skills ASC").Order("id ASC")
	default:
		query = query.Order("id ASC")
	}

	var mentors []models.User
	if err := query.Find(&mentors).Error; err != nil {
		return nil, err
	}

	if filter.Skill == "" {
		return mentors, nil
	}

	// LIKE зависит от регистра по-разному в разных СУБД, поэтому точное
	// совпадение проверяется здесь
	filtered := make([]models.User, 0, len(mentors))
	for _, m := range mentors {
		for _, s := range m.SkillList() {
			if s == filter.Skill {
				filtered = append(filtered, m)
				break
			}
		}
	}
	return filtered, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
