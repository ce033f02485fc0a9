package helpers

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"mentormatch_backend/internal/auth"
	"mentormatch_backend/internal/config"
	"mentormatch_backend/internal/database"
	"mentormatch_backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// NewTestDB открывает изолированную SQLite базу в памяти с примененными миграциями.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Отдельное имя - отдельная база для каждого теста
	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err, "Не удалось открыть тестовую БД")
	require.NoError(t, database.Migrate(db), "Не удалось выполнить миграции")

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// CreateUser сохраняет пользователя напрямую в БД. Пароль хешируется.
func CreateUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole, name string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	require.NoError(t, user.SetSkills(nil))
	require.NoError(t, db.Create(user).Error, "Не удалось создать пользователя %s", email)
	return user
}

// CreateMentor создает ментора с навыками.
func CreateMentor(t *testing.T, db *gorm.DB, email, name string, skills ...string) *models.User {
	t.Helper()

	user := CreateUser(t, db, email, "password123", models.UserRoleMentor, name)
	if len(skills) > 0 {
		require.NoError(t, user.SetSkills(skills))
		require.NoError(t, db.Model(user).Update("skills", user.Skills).Error)
	}
	return user
}

// CreateMatchRequest сохраняет заявку с нужным статусом в обход сервиса.
func CreateMatchRequest(t *testing.T, db *gorm.DB, mentorID, menteeID uint, status models.MatchRequestStatus) *models.MatchRequest {
	t.Helper()

	req := &models.MatchRequest{
		MentorID: mentorID,
		MenteeID: menteeID,
		Message:  "hello",
		Status:   status,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}
