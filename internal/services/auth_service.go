package services

import (
	"strings"

	"gorm.io/gorm"

	"mentormatch_backend/internal/auth"
	"mentormatch_backend/internal/logger"
	"mentormatch_backend/internal/models"
	"mentormatch_backend/internal/repositories"
	"mentormatch_backend/internal/services/dto"
	"mentormatch_backend/pkg/apperrors"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) error
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
	VerifyToken(token string) (*auth.Claims, error)
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
}

func NewAuthService(userRepo repositories.UserRepository, tokens *auth.TokenManager) AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Register - регистрация нового пользователя
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) error {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" || req.Role == "" {
		return apperrors.NewValidationError("Email, password and role are required")
	}
	if err := auth.ValidateRole(req.Role); err != nil {
		return apperrors.ErrInvalidUserRole
	}
	// bcrypt работает максимум с 72 байтами
	if len(req.Password) > 72 {
		return apperrors.NewValidationError("Password is too long")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         models.UserRole(req.Role),
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if err := user.SetSkills(nil); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return apperrors.ErrEmailAlreadyExists
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(db.Statement.Context, "user registered", "new_user_id", user.ID, "role", user.Role)
	return nil
}

// Login - аутентификация пользователя. Неизвестный email и неверный пароль
// дают одну и ту же ошибку.
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.FindByEmail(db, normalizeEmail(req.Email))
	if err != nil {
		if !apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.InternalError(err)
		}
		auth.CheckPasswordHashOrDummy(req.Password, "")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(db.Statement.Context, "failed login attempt", "target_user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LoginResponse{Token: token}, nil
}

// VerifyToken проверяет токен доступа и возвращает его claims.
func (s *AuthServiceImpl) VerifyToken(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, apperrors.ErrMissingToken
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken.WithError(err)
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
