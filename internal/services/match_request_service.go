package services

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"gorm.io/gorm"

	"mentormatch_backend/internal/logger"
	"mentormatch_backend/internal/models"
	"mentormatch_backend/internal/repositories"
	"mentormatch_backend/internal/services/dto"
	"mentormatch_backend/pkg/apperrors"
)

const maxMessageLength = 500

type MatchRequestService interface {
	Create(db *gorm.DB, callerID uint, req *dto.CreateMatchRequest) (*dto.MatchRequestResponse, error)
	ListIncoming(db *gorm.DB, mentorID uint) ([]dto.MatchRequestResponse, error)
	ListOutgoing(db *gorm.DB, menteeID uint) ([]dto.MatchRequestResponse, error)
	Accept(db *gorm.DB, requestID, mentorID uint) (*dto.MatchRequestResponse, error)
	Reject(db *gorm.DB, requestID, mentorID uint) (*dto.MatchRequestResponse, error)
	Cancel(db *gorm.DB, requestID, menteeID uint) (*dto.MatchRequestResponse, error)
}

type MatchRequestServiceImpl struct {
	requestRepo repositories.MatchRequestRepository
	userRepo    repositories.UserRepository
}

func NewMatchRequestService(
	requestRepo repositories.MatchRequestRepository,
	userRepo repositories.UserRepository,
) MatchRequestService {
	return &MatchRequestServiceImpl{
		requestRepo: requestRepo,
		userRepo:    userRepo,
	}
}

// Create создает заявку менти к ментору.
// Существующая пара в статусе pending/accepted блокирует создание,
// rejected/cancelled удаляется и освобождает место под новую заявку.
func (s *MatchRequestServiceImpl) Create(db *gorm.DB, callerID uint, req *dto.CreateMatchRequest) (*dto.MatchRequestResponse, error) {
	menteeID := req.MenteeID.Uint()
	if menteeID == 0 || menteeID != callerID {
		return nil, apperrors.NewValidationError("Invalid mentee id")
	}
	mentorID := req.MentorID.Uint()
	if mentorID == 0 {
		return nil, apperrors.NewValidationError("Invalid mentor id")
	}
	if req.Message == nil {
		return nil, apperrors.NewValidationError("Message is required")
	}
	if utf8.RuneCountInString(*req.Message) > maxMessageLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Message must be at most %d characters long", maxMessageLength))
	}

	ctx := db.Statement.Context

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if _, err := s.userRepo.FindByIDAndRole(tx, mentorID, models.UserRoleMentor); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrMentorNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	existing, err := s.requestRepo.FindByPair(tx, mentorID, menteeID)
	switch {
	case err == nil:
		if existing.Status.IsActive() {
			return nil, apperrors.ErrRequestAlreadyExists
		}
		if err := s.requestRepo.Delete(tx, existing.ID); err != nil {
			return nil, handleMatchRequestError(err)
		}
		logger.CtxDebug(ctx, "removed terminal match request before recreate",
			"request_id_old", existing.ID, "status", existing.Status)
	case !errors.Is(err, repositories.ErrMatchRequestNotFound):
		return nil, apperrors.InternalError(err)
	}

	hasPending, err := s.requestRepo.HasPendingWithOtherMentor(tx, menteeID, mentorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if hasPending {
		return nil, apperrors.ErrPendingWithOtherMentor
	}

	request := &models.MatchRequest{
		MentorID: mentorID,
		MenteeID: menteeID,
		Message:  *req.Message,
		Status:   models.MatchRequestStatusPending,
	}
	if err := s.requestRepo.Create(tx, request); err != nil {
		return nil, handleMatchRequestError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "match request created",
		"match_request_id", request.ID, "mentor_id", mentorID, "mentee_id", menteeID)

	resp := dto.NewMatchRequestResponse(request)
	return &resp, nil
}

func (s *MatchRequestServiceImpl) ListIncoming(db *gorm.DB, mentorID uint) ([]dto.MatchRequestResponse, error) {
	requests, err := s.requestRepo.ListByMentor(db, mentorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	result := make([]dto.MatchRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, dto.NewMatchRequestResponse(&requests[i]))
	}
	return result, nil
}

func (s *MatchRequestServiceImpl) ListOutgoing(db *gorm.DB, menteeID uint) ([]dto.MatchRequestResponse, error) {
	requests, err := s.requestRepo.ListByMentee(db, menteeID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	result := make([]dto.MatchRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, dto.NewOutgoingMatchRequestResponse(&requests[i]))
	}
	return result, nil
}

// Accept принимает заявку и в той же транзакции отклоняет остальные
// ожидающие заявки этого ментора. Текущий статус заявки не проверяется,
// единственное ограничение - у ментора нет другой принятой заявки.
func (s *MatchRequestServiceImpl) Accept(db *gorm.DB, requestID, mentorID uint) (*dto.MatchRequestResponse, error) {
	ctx := db.Statement.Context

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	request, err := s.requestRepo.FindByIDForMentor(tx, requestID, mentorID)
	if err != nil {
		return nil, handleMatchRequestError(err)
	}

	hasAccepted, err := s.requestRepo.HasOtherAccepted(tx, mentorID, request.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if hasAccepted {
		return nil, apperrors.ErrMentorAlreadyAccepted
	}

	if err := s.requestRepo.UpdateStatus(tx, request, models.MatchRequestStatusAccepted); err != nil {
		return nil, handleMatchRequestError(err)
	}

	rejected, err := s.requestRepo.RejectOtherPending(tx, mentorID, request.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "match request accepted",
		"match_request_id", request.ID, "auto_rejected", rejected)

	resp := dto.NewMatchRequestResponse(request)
	return &resp, nil
}

// Reject не проверяет предыдущий статус: повторный вызов просто
// перезаписывает rejected.
func (s *MatchRequestServiceImpl) Reject(db *gorm.DB, requestID, mentorID uint) (*dto.MatchRequestResponse, error) {
	request, err := s.requestRepo.FindByIDForMentor(db, requestID, mentorID)
	if err != nil {
		return nil, handleMatchRequestError(err)
	}
	return s.setStatus(db, request, models.MatchRequestStatusRejected)
}

// Cancel доступен только менти-владельцу заявки.
func (s *MatchRequestServiceImpl) Cancel(db *gorm.DB, requestID, menteeID uint) (*dto.MatchRequestResponse, error) {
	request, err := s.requestRepo.FindByIDForMentee(db, requestID, menteeID)
	if err != nil {
		return nil, handleMatchRequestError(err)
	}
	return s.setStatus(db, request, models.MatchRequestStatusCancelled)
}

func (s *MatchRequestServiceImpl) setStatus(db *gorm.DB, request *models.MatchRequest, status models.MatchRequestStatus) (*dto.MatchRequestResponse, error) {
	previous := request.Status
	if err := s.requestRepo.UpdateStatus(db, request, status); err != nil {
		return nil, handleMatchRequestError(err)
	}

	logger.CtxInfo(db.Statement.Context, "match request status changed",
		"match_request_id", request.ID, "from", previous, "to", status)

	resp := dto.NewMatchRequestResponse(request)
	return &resp, nil
}
