package models

// MatchRequest - заявка менти к ментору.
// Уникальный индекс по паре (mentor_id, mentee_id) - последняя линия защиты
// от дубликатов при гонках.
type MatchRequest struct {
	BaseModel
	MentorID uint               `gorm:"not null;uniqueIndex:idx_match_requests_pair;index" json:"mentorId"`
	MenteeID uint               `gorm:"not null;uniqueIndex:idx_match_requests_pair;index" json:"menteeId"`
	Message  string             `gorm:"type:text;not null" json:"message"`
	Status   MatchRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
}
