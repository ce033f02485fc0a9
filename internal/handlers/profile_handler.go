package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"mentormatch_backend/internal/services"
	"mentormatch_backend/internal/services/dto"
	"mentormatch_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// multipartOverhead - запас на поля формы сверх размера изображения
const multipartOverhead = 64 << 10

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
	maxImageSize   int64
	cacheMaxAge    int
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService, maxImageSize int64, cacheMaxAge int) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
		maxImageSize:   maxImageSize,
		cacheMaxAge:    cacheMaxAge,
	}
}

// GetMe godoc
// @Summary Текущий пользователь
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.profileService.GetOwnProfile(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateProfile godoc
// @Summary Обновить профиль
// @Description Частичное обновление. JSON (image - base64) или multipart/form-data (image - файл).
// @Tags profile
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest false "Поля профиля"
// @Success 200 {object} dto.MeResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	// base64 раздувает изображение на треть
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageSize*2+multipartOverhead)

	var req dto.UpdateProfileRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := h.bindMultipart(c, &req); err != nil {
			h.HandleServiceError(c, err)
			return
		}
		if !h.Validate(c, &req) {
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.HandleServiceError(c, apperrors.ErrImageTooLarge)
				return
			}
			h.HandleServiceError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
			return
		}
		if !h.Validate(c, &req) {
			return
		}
	}

	resp, err := h.profileService.UpdateProfile(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) bindMultipart(c *gin.Context, req *dto.UpdateProfileRequest) error {
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.ErrImageTooLarge
		}
		return apperrors.NewBadRequestError("Invalid multipart form: " + err.Error())
	}

	optional := func(key string) *string {
		if values, ok := form.Value[key]; ok && len(values) > 0 {
			v := values[0]
			return &v
		}
		return nil
	}
	req.Role = optional("role")
	req.Name = optional("name")
	req.Bio = optional("bio")

	skillValues, ok := form.Value["skills"]
	if !ok {
		skillValues, ok = form.Value["skills[]"]
	}
	if ok {
		skills, err := dto.ParseSkillsForm(skillValues)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		req.Skills = skills
	}

	if files := form.File["image"]; len(files) > 0 {
		upload, err := h.readUpload(files[0])
		if err != nil {
			return err
		}
		req.Upload = upload
	}
	return nil
}

func (h *ProfileHandler) readUpload(fh *multipart.FileHeader) (*dto.ImageUpload, error) {
	if fh.Size > h.maxImageSize {
		return nil, apperrors.ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxImageSize+1))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if int64(len(data)) > h.maxImageSize {
		return nil, apperrors.ErrImageTooLarge
	}
	return &dto.ImageUpload{Data: data, Filename: fh.Filename}, nil
}

// GetImage godoc
// @Summary Изображение профиля
// @Description Отдает сохраненное изображение или перенаправляет на заглушку
// @Tags profile
// @Produce image/jpeg,image/png
// @Security BearerAuth
// @Param role path string true "mentor или mentee"
// @Param id path int true "ID пользователя"
// @Success 200 {file} binary
// @Success 302 "Заглушка"
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /images/{role}/{id} [get]
func (h *ProfileHandler) GetImage(c *gin.Context) {
	img, err := h.profileService.GetProfileImage(h.GetDB(c), c.Param("role"), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if img.RedirectURL != "" {
		c.Redirect(http.StatusFound, img.RedirectURL)
		return
	}

	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", h.cacheMaxAge))
	c.Header("Content-Length", strconv.FormatInt(img.Size, 10))
	c.Data(http.StatusOK, img.MimeType, img.Data)
}
