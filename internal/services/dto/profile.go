package dto

import (
	"mentormatch_backend/internal/models"
)

// Profile - публичная часть профиля. Конкретный тип зависит от роли:
// MentorProfile содержит навыки, MenteeProfile - нет.
type Profile interface {
	Role() models.UserRole
}

type MentorProfile struct {
	Name     string   `json:"name"`
	Bio      string   `json:"bio"`
	ImageURL string   `json:"imageUrl"`
	Skills   []string `json:"skills"`
}

func (MentorProfile) Role() models.UserRole { return models.UserRoleMentor }

type MenteeProfile struct {
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	ImageURL string `json:"imageUrl"`
}

func (MenteeProfile) Role() models.UserRole { return models.UserRoleMentee }

// NewProfile строит вариант профиля по роли пользователя.
func NewProfile(user *models.User, imageURL string) Profile {
	if user.IsMentor() {
		return MentorProfile{
			Name:     user.Name,
			Bio:      user.Bio,
			ImageURL: imageURL,
			Skills:   user.SkillList(),
		}
	}
	return MenteeProfile{
		Name:     user.Name,
		Bio:      user.Bio,
		ImageURL: imageURL,
	}
}

// MeResponse - ответ GET /me и PUT /profile
type MeResponse struct {
	ID      uint            `json:"id"`
	Email   string          `json:"email"`
	Role    models.UserRole `json:"role"`
	Profile Profile         `json:"profile"`
}

// ImageUpload - декодированное изображение из multipart или base64.
type ImageUpload struct {
	Data     []byte
	Filename string
}

// UpdateProfileRequest - частичное обновление: nil означает "поле не передано".
type UpdateProfileRequest struct {
	Role   *string   `json:"role,omitempty" validate:"omitempty,is-user-role"`
	Name   *string   `json:"name,omitempty" validate:"omitempty,not-blank,max=255"`
	Bio    *string   `json:"bio,omitempty" validate:"omitempty,max=1000,no-null-bytes"`
	Skills SkillList `json:"skills,omitempty" validate:"omitempty,max=50,dive,not-blank,max=100"`
	// Image - base64 или data URL; в multipart вместо него приходит файл
	Image *string `json:"image,omitempty"`

	Upload *ImageUpload `json:"-"`
}

// ImageContent - бинарное изображение для GET /images/:role/:id
type ImageContent struct {
	Data     []byte
	MimeType string
	Size     int64
	// RedirectURL заполнен, когда изображения нет и надо отдать заглушку
	RedirectURL string
}
