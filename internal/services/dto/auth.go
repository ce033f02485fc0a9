package dto

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,max=72"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Role     string  `json:"role" validate:"required,is-user-role"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse - подписанный токен доступа
type LoginResponse struct {
	Token string `json:"token"`
}

// MessageResponse - ответ без данных, только сообщение
type MessageResponse struct {
	Message string `json:"message"`
}
