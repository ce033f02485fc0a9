package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	ProfileHandler      *ProfileHandler
	MentorHandler       *MentorHandler
	MatchRequestHandler *MatchRequestHandler
	HealthHandler       *HealthHandler
}
