package dto

import (
	"time"

	"mentormatch_backend/internal/models"
)

// CreateMatchRequest - тело POST /match-requests.
// Message - указатель: пустая строка допустима, отсутствие поля - нет.
type CreateMatchRequest struct {
	MentorID FlexibleID `json:"mentorId"`
	MenteeID FlexibleID `json:"menteeId"`
	Message  *string    `json:"message" validate:"omitempty,max=500"`
}

type MatchRequestResponse struct {
	ID        uint                      `json:"id"`
	MentorID  uint                      `json:"mentorId"`
	MenteeID  uint                      `json:"menteeId"`
	Message   *string                   `json:"message,omitempty"`
	Status    models.MatchRequestStatus `json:"status"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// NewMatchRequestResponse - полная проекция заявки.
func NewMatchRequestResponse(req *models.MatchRequest) MatchRequestResponse {
	message := req.Message
	return MatchRequestResponse{
		ID:        req.ID,
		MentorID:  req.MentorID,
		MenteeID:  req.MenteeID,
		Message:   &message,
		Status:    req.Status,
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
}

// NewOutgoingMatchRequestResponse - проекция для исходящих заявок, без текста сообщения.
func NewOutgoingMatchRequestResponse(req *models.MatchRequest) MatchRequestResponse {
	resp := NewMatchRequestResponse(req)
	resp.Message = nil
	return resp
}
