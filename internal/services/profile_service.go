package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"mentormatch_backend/internal/logger"
	"mentormatch_backend/internal/models"
	"mentormatch_backend/internal/repositories"
	"mentormatch_backend/internal/services/dto"
	"mentormatch_backend/internal/storage"
	"mentormatch_backend/pkg/apperrors"
)

const (
	maxBioLength = 1000
	imageKeyDir  = "profile-images"
)

// ImageSettings - ограничения на изображения профиля и адреса заглушек.
type ImageSettings struct {
	MaxSize           int64
	AllowedTypes      []string
	MentorPlaceholder string
	MenteePlaceholder string
	// URLPrefix - префикс публичного адреса, например "/api/images"
	URLPrefix string
}

func (s ImageSettings) placeholder(role models.UserRole) string {
	if role == models.UserRoleMentor {
		return s.MentorPlaceholder
	}
	return s.MenteePlaceholder
}

func (s ImageSettings) imageURL(role models.UserRole, id uint) string {
	return fmt.Sprintf("%s/%s/%d", strings.TrimRight(s.URLPrefix, "/"), role, id)
}

type ProfileService interface {
	GetOwnProfile(db *gorm.DB, userID uint) (*dto.MeResponse, error)
	UpdateProfile(db *gorm.DB, userID uint, req *dto.UpdateProfileRequest) (*dto.MeResponse, error)
	GetProfileImage(db *gorm.DB, role, rawID string) (*dto.ImageContent, error)
}

type ProfileServiceImpl struct {
	userRepo  repositories.UserRepository
	imageRepo repositories.ProfileImageRepository
	// storage == nil: изображения хранятся в таблице profile_images
	storage  storage.Storage
	settings ImageSettings
}

func NewProfileService(
	userRepo repositories.UserRepository,
	imageRepo repositories.ProfileImageRepository,
	store storage.Storage,
	settings ImageSettings,
) ProfileService {
	return &ProfileServiceImpl{
		userRepo:  userRepo,
		imageRepo: imageRepo,
		storage:   store,
		settings:  settings,
	}
}

func (s *ProfileServiceImpl) GetOwnProfile(db *gorm.DB, userID uint) (*dto.MeResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	return s.buildMeResponse(user), nil
}

// UpdateProfile - частичное обновление: меняются только переданные поля.
func (s *ProfileServiceImpl) UpdateProfile(db *gorm.DB, userID uint, req *dto.UpdateProfileRequest) (*dto.MeResponse, error) {
	ctx := db.Statement.Context

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	if req.Role != nil && *req.Role != string(user.Role) {
		return nil, apperrors.ErrRoleImmutable
	}

	fields := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Name cannot be empty")
		}
		fields["name"] = name
	} else if strings.TrimSpace(user.Name) == "" {
		return nil, apperrors.NewValidationError("Name is required")
	}

	if req.Bio != nil {
		if utf8.RuneCountInString(*req.Bio) > maxBioLength {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Bio must be at most %d characters long", maxBioLength))
		}
		if strings.ContainsRune(*req.Bio, 0) {
			return nil, apperrors.NewValidationError("Bio must not contain null bytes")
		}
		fields["bio"] = *req.Bio
	}

	if user.IsMentor() {
		if req.Skills != nil {
			skills, err := normalizeSkills(req.Skills)
			if err != nil {
				return nil, err
			}
			encoded := models.User{}
			if err := encoded.SetSkills(skills); err != nil {
				return nil, apperrors.InternalError(err)
			}
			fields["skills"] = encoded.Skills
		} else if !user.HasSkills() {
			return nil, apperrors.NewValidationError("Skills are required for mentors")
		}
	}

	upload, err := resolveUpload(req)
	if err != nil {
		return nil, err
	}
	var blobs storedBlobs
	committed := false
	defer func() {
		if !committed {
			s.deleteStored(ctx, blobs.newKey)
		}
	}()
	if upload != nil {
		blobs, err = s.storeImage(tx, user, upload)
		if err != nil {
			return nil, err
		}
		fields["profile_image"] = s.settings.imageURL(user.Role, user.ID)
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(tx, user.ID, fields); err != nil {
			return nil, handleUserError(err)
		}
	}

	updated, err := s.userRepo.FindByID(tx, user.ID)
	if err != nil {
		return nil, handleUserError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	committed = true
	if blobs.oldKey != blobs.newKey {
		s.deleteStored(ctx, blobs.oldKey)
	}

	logger.CtxInfo(ctx, "profile updated", "fields", len(fields), "image", upload != nil)
	return s.buildMeResponse(updated), nil
}

// GetProfileImage отдает изображение или адрес заглушки, если изображения нет.
func (s *ProfileServiceImpl) GetProfileImage(db *gorm.DB, role, rawID string) (*dto.ImageContent, error) {
	userRole := models.UserRole(role)
	if !userRole.IsValid() {
		return nil, apperrors.NewValidationError("Invalid role")
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return nil, apperrors.NewValidationError("Invalid id")
	}

	user, err := s.userRepo.FindByIDAndRole(db, uint(id), userRole)
	if err != nil {
		return nil, handleUserError(err)
	}

	placeholder := &dto.ImageContent{RedirectURL: s.settings.placeholder(user.Role)}

	img, err := s.imageRepo.FindByUserID(db, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileImageNotFound) {
			return placeholder, nil
		}
		return nil, apperrors.InternalError(err)
	}

	data := img.Data
	if img.StorageKey != "" && s.storage != nil {
		data, err = s.readStored(db, img.StorageKey)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				logger.CtxWarn(db.Statement.Context, "profile image missing in storage", "key", img.StorageKey)
				return placeholder, nil
			}
			return nil, apperrors.InternalError(err)
		}
	}
	if len(data) == 0 {
		return placeholder, nil
	}

	return &dto.ImageContent{
		Data:     data,
		MimeType: img.MimeType,
		Size:     int64(len(data)),
	}, nil
}

// storedBlobs - ключи в хранилище: новый объект и тот, который он заменил.
type storedBlobs struct {
	newKey string
	oldKey string
}

// storeImage пишет объект под новым ключом, старый остается на месте до
// коммита транзакции. Без хранилища данные лежат прямо в строке таблицы.
func (s *ProfileServiceImpl) storeImage(tx *gorm.DB, user *models.User, upload *dto.ImageUpload) (storedBlobs, error) {
	var blobs storedBlobs

	if int64(len(upload.Data)) > s.settings.MaxSize {
		return blobs, apperrors.ErrImageTooLarge.WithDetails(map[string]int64{"maxSize": s.settings.MaxSize})
	}
	if len(upload.Data) == 0 {
		return blobs, apperrors.NewValidationError("Image is empty")
	}

	mimeType, ok := s.detectAllowedType(upload.Data)
	if !ok {
		return blobs, apperrors.ErrInvalidImageType
	}

	img := &models.ProfileImage{
		UserID:   user.ID,
		MimeType: mimeType,
		Size:     int64(len(upload.Data)),
	}

	if s.storage == nil {
		img.Data = upload.Data
	} else {
		current, err := s.imageRepo.FindByUserID(tx, user.ID)
		switch {
		case err == nil:
			blobs.oldKey = current.StorageKey
		case !errors.Is(err, repositories.ErrProfileImageNotFound):
			return blobs, apperrors.InternalError(err)
		}

		key := fmt.Sprintf("%s/%d/%s", imageKeyDir, user.ID, uuid.NewString())
		if err := s.storage.Save(tx.Statement.Context, key, bytes.NewReader(upload.Data), mimeType); err != nil {
			return blobs, apperrors.InternalError(err)
		}
		blobs.newKey = key
		img.StorageKey = key
	}

	if err := s.imageRepo.Upsert(tx, img); err != nil {
		return blobs, apperrors.InternalError(err)
	}
	return blobs, nil
}

// deleteStored удаляет объект из хранилища; ошибка только логируется.
func (s *ProfileServiceImpl) deleteStored(ctx context.Context, key string) {
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.CtxWarn(ctx, "failed to delete stored profile image", "key", key, "error", err.Error())
	}
}

func (s *ProfileServiceImpl) detectAllowedType(data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	for _, allowed := range s.settings.AllowedTypes {
		if detected.Is(allowed) {
			return allowed, true
		}
	}
	return "", false
}

func (s *ProfileServiceImpl) readStored(db *gorm.DB, key string) ([]byte, error) {
	rc, err := s.storage.Get(db.Statement.Context, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, s.settings.MaxSize+1))
}

func (s *ProfileServiceImpl) buildMeResponse(user *models.User) *dto.MeResponse {
	imageURL := user.ProfileImage
	if imageURL == "" {
		imageURL = s.settings.placeholder(user.Role)
	}
	return &dto.MeResponse{
		ID:      user.ID,
		Email:   user.Email,
		Role:    user.Role,
		Profile: dto.NewProfile(user, imageURL),
	}
}

func normalizeSkills(in dto.SkillList) ([]string, error) {
	if len(in) == 0 {
		return nil, apperrors.NewValidationError("Skills must be a non-empty list")
	}
	out := make([]string, 0, len(in))
	for _, skill := range in {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return nil, apperrors.NewValidationError("Skills must be non-empty strings")
		}
		out = append(out, skill)
	}
	return out, nil
}

// resolveUpload возвращает файл из multipart или декодирует base64 из JSON.
func resolveUpload(req *dto.UpdateProfileRequest) (*dto.ImageUpload, error) {
	if req.Upload != nil {
		return req.Upload, nil
	}
	if req.Image == nil || strings.TrimSpace(*req.Image) == "" {
		return nil, nil
	}

	raw := strings.TrimSpace(*req.Image)
	if strings.HasPrefix(raw, "data:") {
		idx := strings.IndexByte(raw, ',')
		if idx < 0 {
			return nil, apperrors.NewValidationError("Image must be base64 encoded")
		}
		raw = raw[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("Image must be base64 encoded")
		}
	}
	return &dto.ImageUpload{Data: data}, nil
}
