package auth

import "errors"

const (
	RoleMentor = "mentor"
	RoleMentee = "mentee"
)

var ErrInvalidRole = errors.New("invalid role")

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch role {
	case RoleMentor, RoleMentee:
		return nil
	default:
		return ErrInvalidRole
	}
}
