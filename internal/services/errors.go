package services

import (
	"errors"

	"gorm.io/gorm"

	"mentormatch_backend/internal/repositories"
	"mentormatch_backend/pkg/apperrors"
)

func handleUserError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrUserNotFound
	}
	return apperrors.InternalError(err)
}

func handleMatchRequestError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, repositories.ErrMatchRequestNotFound) {
		return apperrors.ErrMatchRequestNotFound
	}
	if errors.Is(err, repositories.ErrMatchRequestPairTaken) {
		return apperrors.ErrRequestAlreadyExists
	}
	return apperrors.InternalError(err)
}
