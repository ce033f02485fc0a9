package models

type UserRole string
type MatchRequestStatus string

const (
	UserRoleMentor UserRole = "mentor"
	UserRoleMentee UserRole = "mentee"

	MatchRequestStatusPending   MatchRequestStatus = "pending"
	MatchRequestStatusAccepted  MatchRequestStatus = "accepted"
	MatchRequestStatusRejected  MatchRequestStatus = "rejected"
	MatchRequestStatusCancelled MatchRequestStatus = "cancelled"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleMentor || r == UserRoleMentee
}

func (r UserRole) String() string {
	return string(r)
}

func (s MatchRequestStatus) IsValid() bool {
	switch s {
	case MatchRequestStatusPending, MatchRequestStatusAccepted,
		MatchRequestStatusRejected, MatchRequestStatusCancelled:
		return true
	}
	return false
}

// IsTerminal: из accepted, rejected и cancelled переходов нет.
func (s MatchRequestStatus) IsTerminal() bool {
	return s != MatchRequestStatusPending && s.IsValid()
}

// IsActive - pending и accepted занимают пару (mentor, mentee).
func (s MatchRequestStatus) IsActive() bool {
	return s == MatchRequestStatusPending || s == MatchRequestStatusAccepted
}
