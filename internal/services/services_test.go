package services_test

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"mentormatch_backend/internal/auth"
	"mentormatch_backend/internal/logger"
	"mentormatch_backend/internal/models"
	"mentormatch_backend/internal/repositories"
	"mentormatch_backend/internal/services"
	"mentormatch_backend/internal/services/dto"
	"mentormatch_backend/internal/storage"
	"mentormatch_backend/pkg/apperrors"
	"mentormatch_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Init("test")
	os.Exit(m.Run())
}

var testImages = services.ImageSettings{
	MaxSize:           1 << 20,
	AllowedTypes:      []string{"image/jpeg", "image/png"},
	MentorPlaceholder: "https://placehold.co/500x500.jpg?text=MENTOR",
	MenteePlaceholder: "https://placehold.co/500x500.jpg?text=MENTEE",
	URLPrefix:         "/api/images",
}

var pngData = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0x07}, 32)...)

var jpegData = append([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), bytes.Repeat([]byte{0x05}, 32)...)

func strPtr(s string) *string { return &s }

func newMatchService() services.MatchRequestService {
	return services.NewMatchRequestService(repositories.NewMatchRequestRepository(), repositories.NewUserRepository())
}

func createReq(mentorID, menteeID uint) *dto.CreateMatchRequest {
	return &dto.CreateMatchRequest{
		MentorID: dto.FlexibleID(mentorID),
		MenteeID: dto.FlexibleID(menteeID),
		Message:  strPtr("hi"),
	}
}

// --- Auth ---

func TestAuthService_RegisterAndLogin(t *testing.T) {
	db := helpers.NewTestDB(t)
	tokens := auth.NewTokenManager("secret", "iss", "aud", time.Hour)
	svc := services.NewAuthService(repositories.NewUserRepository(), tokens)

	require.NoError(t, svc.Register(db, &dto.RegisterRequest{
		Email: " Alice@Test.com ", Password: "pw", Name: strPtr("Alice"), Role: "mentor",
	}))

	err := svc.Register(db, &dto.RegisterRequest{Email: "alice@test.com", Password: "x", Role: "mentee"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	err = svc.Register(db, &dto.RegisterRequest{Email: "bob@test.com", Password: "x", Role: "admin"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidUserRole)

	resp, err := svc.Login(db, &dto.LoginRequest{Email: "ALICE@test.com", Password: "pw"})
	require.NoError(t, err)

	claims, err := svc.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", claims.Email)
	assert.Equal(t, "mentor", claims.Role)
	assert.Equal(t, "Alice", claims.Name)

	_, err = svc.Login(db, &dto.LoginRequest{Email: "alice@test.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(db, &dto.LoginRequest{Email: "ghost@test.com", Password: "pw"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.VerifyToken("")
	assert.ErrorIs(t, err, apperrors.ErrMissingToken)
	_, err = svc.VerifyToken("junk")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

// --- Match requests ---

func TestMatchRequestService_CreateRules(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := newMatchService()

	mentorA := helpers.CreateMentor(t, db, "a@test.com", "A", "Go")
	mentorB := helpers.CreateMentor(t, db, "b@test.com", "B", "Go")
	mentee := helpers.CreateUser(t, db, "m@test.com", "pw", models.UserRoleMentee, "M")

	_, err := svc.Create(db, mentee.ID+100, createReq(mentorA.ID, mentee.ID))
	assert.ErrorIs(t, err, apperrors.NewValidationError("Invalid mentee id"))

	_, err = svc.Create(db, mentee.ID, createReq(mentee.ID, mentee.ID))
	assert.ErrorIs(t, err, apperrors.ErrMentorNotFound)

	noMessage := createReq(mentorA.ID, mentee.ID)
	noMessage.Message = nil
	_, err = svc.Create(db, mentee.ID, noMessage)
	assert.Error(t, err)

	created, err := svc.Create(db, mentee.ID, createReq(mentorA.ID, mentee.ID))
	require.NoError(t, err)
	assert.Equal(t, models.MatchRequestStatusPending, created.Status)

	_, err = svc.Create(db, mentee.ID, createReq(mentorA.ID, mentee.ID))
	assert.ErrorIs(t, err, apperrors.ErrRequestAlreadyExists)

	_, err = svc.Create(db, mentee.ID, createReq(mentorB.ID, mentee.ID))
	assert.ErrorIs(t, err, apperrors.ErrPendingWithOtherMentor)
}

func TestMatchRequestService_RecreateReplacesTerminalRow(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := newMatchService()

	mentor := helpers.CreateMentor(t, db, "a@test.com", "A", "Go")
	mentee := helpers.CreateUser(t, db, "m@test.com", "pw", models.UserRoleMentee, "M")
	old := helpers.CreateMatchRequest(t, db, mentor.ID, mentee.ID, models.MatchRequestStatusRejected)

	created, err := svc.Create(db, mentee.ID, createReq(mentor.ID, mentee.ID))
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, created.ID)

	var count int64
	require.NoError(t, db.Model(&models.MatchRequest{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMatchRequestService_AcceptIsExclusive(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := newMatchService()

	mentor := helpers.CreateMentor(t, db, "a@test.com", "A", "Go")
	otherMentor := helpers.CreateMentor(t, db, "o@test.com", "O", "Go")
	b := helpers.CreateUser(t, db, "b@test.com", "pw", models.UserRoleMentee, "B")
	c := helpers.CreateUser(t, db, "c@test.com", "pw", models.UserRoleMentee, "C")
	d := helpers.CreateUser(t, db, "d@test.com", "pw", models.UserRoleMentee, "D")

	reqB := helpers.CreateMatchRequest(t, db, mentor.ID, b.ID, models.MatchRequestStatusPending)
	reqC := helpers.CreateMatchRequest(t, db, mentor.ID, c.ID, models.MatchRequestStatusPending)
	reqOther := helpers.CreateMatchRequest(t, db, otherMentor.ID, d.ID, models.MatchRequestStatusPending)

	_, err := svc.Accept(db, reqB.ID, otherMentor.ID)
	assert.ErrorIs(t, err, apperrors.ErrMatchRequestNotFound, "чужая заявка выглядит как отсутствующая")

	accepted, err := svc.Accept(db, reqB.ID, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchRequestStatusAccepted, accepted.Status)

	var reloaded models.MatchRequest
	require.NoError(t, db.First(&reloaded, reqC.ID).Error)
	assert.Equal(t, models.MatchRequestStatusRejected, reloaded.Status)
	require.NoError(t, db.First(&reloaded, reqOther.ID).Error)
	assert.Equal(t, models.MatchRequestStatusPending, reloaded.Status, "заявки другого ментора не затронуты")

	reqD := helpers.CreateMatchRequest(t, db, mentor.ID, d.ID, models.MatchRequestStatusPending)
	_, err = svc.Accept(db, reqD.ID, mentor.ID)
	assert.ErrorIs(t, err, apperrors.ErrMentorAlreadyAccepted)
	require.NoError(t, db.First(&reloaded, reqD.ID).Error)
	assert.Equal(t, models.MatchRequestStatusPending, reloaded.Status, "неудачное принятие откатывается целиком")
}

func TestMatchRequestService_AcceptRejectedRequest(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := newMatchService()

	mentor := helpers.CreateMentor(t, db, "a@test.com", "A", "Go")
	mentee := helpers.CreateUser(t, db, "m@test.com", "pw", models.UserRoleMentee, "M")
	req := helpers.CreateMatchRequest(t, db, mentor.ID, mentee.ID, models.MatchRequestStatusPending)

	_, err := svc.Reject(db, req.ID, mentor.ID)
	require.NoError(t, err)

	accepted, err := svc.Accept(db, req.ID, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchRequestStatusAccepted, accepted.Status)

	var reloaded models.MatchRequest
	require.NoError(t, db.First(&reloaded, req.ID).Error)
	assert.Equal(t, models.MatchRequestStatusAccepted, reloaded.Status)
}

func TestMatchRequestService_RejectAndCancel(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := newMatchService()

	mentor := helpers.CreateMentor(t, db, "a@test.com", "A", "Go")
	mentee := helpers.CreateUser(t, db, "m@test.com", "pw", models.UserRoleMentee, "M")
	stranger := helpers.CreateUser(t, db, "s@test.com", "pw", models.UserRoleMentee, "S")
	req := helpers.CreateMatchRequest(t, db, mentor.ID, mentee.ID, models.MatchRequestStatusPending)

	_, err := svc.Cancel(db, req.ID, stranger.ID)
	assert.ErrorIs(t, err, apperrors.ErrMatchRequestNotFound)

	rejected, err := svc.Reject(db, req.ID, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchRequestStatusRejected, rejected.Status)

	again, err := svc.Reject(db, req.ID, mentor.ID)
	require.NoError(t, err, "повторное отклонение не ошибка")
	assert.Equal(t, models.MatchRequestStatusRejected, again.Status)

	cancelled, err := svc.Cancel(db, req.ID, mentee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchRequestStatusCancelled, cancelled.Status)

	outgoing, err := svc.ListOutgoing(db, mentee.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Nil(t, outgoing[0].Message)

	incoming, err := svc.ListIncoming(db, mentor.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	require.NotNil(t, incoming[0].Message)
	assert.Equal(t, "hello", *incoming[0].Message)

	empty, err := svc.ListIncoming(db, stranger.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

// --- Mentors ---

func TestMentorService_ListMentors(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := services.NewMentorService(repositories.NewUserRepository(), testImages)

	helpers.CreateMentor(t, db, "z@test.com", "Zoe", "Go", "React")
	helpers.CreateMentor(t, db, "a@test.com", "Ann", "react")
	helpers.CreateUser(t, db, "m@test.com", "pw", models.UserRoleMentee, "Mentee")

	all, err := svc.ListMentors(db, &dto.MentorListQuery{OrderBy: "name"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ann", all[0].Profile.Name)
	assert.Equal(t, testImages.MentorPlaceholder, all[0].Profile.ImageURL)

	react, err := svc.ListMentors(db, &dto.MentorListQuery{Skill: "React"})
	require.NoError(t, err)
	require.Len(t, react, 1, "сравнение навыков чувствительно к регистру")
	assert.Equal(t, "Zoe", react[0].Profile.Name)
	assert.Equal(t, []string{"Go", "React"}, react[0].Profile.Skills)
}

// --- Profile ---

// storedFiles - относительные пути всех объектов в локальном хранилище.
func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	return files
}

func storedKey(t *testing.T, db *gorm.DB, userID uint) string {
	t.Helper()
	var img models.ProfileImage
	require.NoError(t, db.Where("user_id = ?", userID).First(&img).Error)
	return img.StorageKey
}

func TestProfileService_LocalStorageRoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(storage.Config{Type: "local", BasePath: dir})
	require.NoError(t, err)

	svc := services.NewProfileService(repositories.NewUserRepository(), repositories.NewProfileImageRepository(), store, testImages)
	mentee := helpers.CreateUser(t, db, "m@test.com", "pw", models.UserRoleMentee, "M")

	me, err := svc.UpdateProfile(db, mentee.ID, &dto.UpdateProfileRequest{
		Upload: &dto.ImageUpload{Data: pngData, Filename: "a.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, dto.MenteeProfile{Name: "M", ImageURL: "/api/images/mentee/" + itoa(mentee.ID)}, me.Profile)

	firstKey := storedKey(t, db, mentee.ID)
	assert.True(t, strings.HasPrefix(firstKey, "profile-images/"+itoa(mentee.ID)+"/"), firstKey)
	assert.Equal(t, []string{firstKey}, storedFiles(t, dir))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(firstKey)))
	require.NoError(t, err)
	assert.Equal(t, pngData, stored)

	img, err := svc.GetProfileImage(db, "mentee", itoa(mentee.ID))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, pngData, img.Data)
	assert.Empty(t, img.RedirectURL)

	// Новая загрузка заменяет объект, старый удаляется после коммита
	_, err = svc.UpdateProfile(db, mentee.ID, &dto.UpdateProfileRequest{
		Upload: &dto.ImageUpload{Data: jpegData, Filename: "b.jpg"},
	})
	require.NoError(t, err)
	secondKey := storedKey(t, db, mentee.ID)
	assert.NotEqual(t, firstKey, secondKey)
	assert.Equal(t, []string{secondKey}, storedFiles(t, dir))

	img, err = svc.GetProfileImage(db, "mentee", itoa(mentee.ID))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MimeType)
	assert.Equal(t, jpegData, img.Data)

	// Файл пропал из хранилища - отдаем заглушку
	require.NoError(t, store.Delete(db.Statement.Context, secondKey))
	img, err = svc.GetProfileImage(db, "mentee", itoa(mentee.ID))
	require.NoError(t, err)
	assert.Equal(t, testImages.MenteePlaceholder, img.RedirectURL)
}

// brokenUserRepo ломает запись профиля после того, как изображение уже сохранено.
type brokenUserRepo struct {
	repositories.UserRepository
}

func (brokenUserRepo) UpdateFields(*gorm.DB, uint, map[string]interface{}) error {
	return errors.New("write failed")
}

func TestProfileService_FailedUpdateKeepsStoredImage(t *testing.T) {
	db := helpers.NewTestDB(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(storage.Config{Type: "local", BasePath: dir})
	require.NoError(t, err)

	imageRepo := repositories.NewProfileImageRepository()
	mentee := helpers.CreateUser(t, db, "m@test.com", "pw", models.UserRoleMentee, "M")

	ok := services.NewProfileService(repositories.NewUserRepository(), imageRepo, store, testImages)
	_, err = ok.UpdateProfile(db, mentee.ID, &dto.UpdateProfileRequest{
		Upload: &dto.ImageUpload{Data: pngData, Filename: "a.png"},
	})
	require.NoError(t, err)
	key := storedKey(t, db, mentee.ID)

	broken := services.NewProfileService(brokenUserRepo{repositories.NewUserRepository()}, imageRepo, store, testImages)
	_, err = broken.UpdateProfile(db, mentee.ID, &dto.UpdateProfileRequest{
		Upload: &dto.ImageUpload{Data: jpegData, Filename: "b.jpg"},
	})
	require.Error(t, err)

	assert.Equal(t, key, storedKey(t, db, mentee.ID), "строка изображения откатилась")
	assert.Equal(t, []string{key}, storedFiles(t, dir), "новый объект удален, старый на месте")

	img, err := ok.GetProfileImage(db, "mentee", itoa(mentee.ID))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, pngData, img.Data)
}

func TestProfileService_UpdateRules(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := services.NewProfileService(repositories.NewUserRepository(), repositories.NewProfileImageRepository(), nil, testImages)
	mentor := helpers.CreateUser(t, db, "a@test.com", "pw", models.UserRoleMentor, "")

	_, err := svc.UpdateProfile(db, mentor.ID, &dto.UpdateProfileRequest{Skills: dto.SkillList{"Go"}})
	assert.Error(t, err, "имя обязательно, пока оно не задано")

	_, err = svc.UpdateProfile(db, mentor.ID, &dto.UpdateProfileRequest{Name: strPtr("A")})
	assert.Error(t, err, "ментору нужны навыки")

	_, err = svc.UpdateProfile(db, mentor.ID, &dto.UpdateProfileRequest{Role: strPtr("mentee"), Name: strPtr("A"), Skills: dto.SkillList{"Go"}})
	assert.ErrorIs(t, err, apperrors.ErrRoleImmutable)

	me, err := svc.UpdateProfile(db, mentor.ID, &dto.UpdateProfileRequest{Name: strPtr(" A "), Skills: dto.SkillList{" Go ", "SQL"}})
	require.NoError(t, err)
	assert.Equal(t, dto.MentorProfile{Name: "A", ImageURL: testImages.MentorPlaceholder, Skills: []string{"Go", "SQL"}}, me.Profile)

	_, err = svc.UpdateProfile(db, 9999, &dto.UpdateProfileRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = svc.GetProfileImage(db, "mentee", itoa(mentor.ID))
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	img, err := svc.GetProfileImage(db, "mentor", itoa(mentor.ID))
	require.NoError(t, err)
	assert.Equal(t, testImages.MentorPlaceholder, img.RedirectURL)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
