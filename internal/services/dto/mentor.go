package dto

import (
	"mentormatch_backend/internal/models"
)

// MentorListQuery - параметры GET /mentors
type MentorListQuery struct {
	Skill   string `form:"skill" validate:"max=100"`
	OrderBy string `form:"order_by" validate:"max=20"`
}

// MentorResponse - проекция ментора в каталоге
type MentorResponse struct {
	ID      uint            `json:"id"`
	Email   string          `json:"email"`
	Role    models.UserRole `json:"role"`
	Profile MentorProfile   `json:"profile"`
}
