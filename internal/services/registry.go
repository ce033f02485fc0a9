package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	ProfileService      ProfileService
	MentorService       MentorService
	MatchRequestService MatchRequestService
}
