package integration_test

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"mentormatch_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0x01}, 64)...)
	jpegBytes = append([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), bytes.Repeat([]byte{0x02}, 64)...)
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
)

func TestUpdateProfile_MentorJSON(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token := ts.SignupAndLogin(t, "mentor@test.com", "Alice", "mentor")

	res, body := ts.SendRequest(t, http.MethodPut, "/api/profile", token, map[string]interface{}{
		"name":   "  Alice Smith ",
		"bio":    "Backend engineer",
		"skills": []string{"Go", "PostgreSQL"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var me meBody
	helpers.DecodeJSON(t, body, &me)
	assert.Equal(t, "Alice Smith", me.Profile.Name)
	assert.Equal(t, "Backend engineer", me.Profile.Bio)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, me.Profile.Skills)

	// Частичное обновление не трогает остальные поля
	res, body = ts.SendRequest(t, http.MethodPut, "/api/profile", token, map[string]interface{}{
		"bio": "Updated",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	helpers.DecodeJSON(t, body, &me)
	assert.Equal(t, "Alice Smith", me.Profile.Name)
	assert.Equal(t, "Updated", me.Profile.Bio)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, me.Profile.Skills)
}

func TestUpdateProfile_SingleSkillString(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token := ts.SignupAndLogin(t, "mentor@test.com", "Alice", "mentor")

	res, body := ts.SendRequest(t, http.MethodPut, "/api/profile", token, map[string]interface{}{
		"skills": "Go",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var me meBody
	helpers.DecodeJSON(t, body, &me)
	assert.Equal(t, []string{"Go"}, me.Profile.Skills)
}

func TestUpdateProfile_MenteeIgnoresSkills(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token := ts.SignupAndLogin(t, "mentee@test.com", "Bob", "mentee")

	res, body := ts.SendRequest(t, http.MethodPut, "/api/profile", token, map[string]interface{}{
		"name":   "Bobby",
		"skills": []string{"Go"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"name":"Bobby"`)
	assert.NotContains(t, body, `"skills"`)
}

func TestUpdateProfile_ValidationErrors(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	mentor := ts.SignupAndLogin(t, "mentor@test.com", "Alice", "mentor")

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"mentor without skills", map[string]interface{}{"name": "Alice"}},
		{"empty skills", map[string]interface{}{"skills": []string{}}},
		{"blank skill", map[string]interface{}{"skills": []string{"Go", "  "}}},
		{"blank name", map[string]interface{}{"name": "   ", "skills": []string{"Go"}}},
		{"bio too long", map[string]interface{}{"bio": strings.Repeat("a", 1001), "skills": []string{"Go"}}},
		{"bio with null byte", map[string]interface{}{"bio": "a\x00b", "skills": []string{"Go"}}},
		{"role change", map[string]interface{}{"role": "mentee", "skills": []string{"Go"}}},
		{"invalid base64 image", map[string]interface{}{"image": "%%%", "skills": []string{"Go"}}},
		{"gif image", map[string]interface{}{"image": base64.StdEncoding.EncodeToString(gifBytes), "skills": []string{"Go"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, body := ts.SendRequest(t, http.MethodPut, "/api/profile", mentor, tc.body)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
		})
	}

	// Ни одна из ошибок не изменила профиль
	res, body := ts.SendRequest(t, http.MethodGet, "/api/me", mentor, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var me meBody
	helpers.DecodeJSON(t, body, &me)
	assert.Equal(t, "Alice", me.Profile.Name)
	assert.Empty(t, me.Profile.Bio)
}

func TestUpdateProfile_SameRoleAccepted(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token := ts.SignupAndLogin(t, "mentee@test.com", "Bob", "mentee")

	res, body := ts.SendRequest(t, http.MethodPut, "/api/profile", token, map[string]interface{}{
		"role": "mentee",
		"bio":  "Learning Go",
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, body)
}

func TestUpdateProfile_ImageTooLarge(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token := ts.SignupAndLogin(t, "mentee@test.com", "Bob", "mentee")

	big := append(append([]byte{}, pngBytes...), make([]byte, ts.Config.Images.MaxSize)...)
	res, body := ts.SendRequest(t, http.MethodPut, "/api/profile", token, map[string]interface{}{
		"image": base64.StdEncoding.EncodeToString(big),
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
}

// TestProfileImage_Base64RoundTrip - загрузка base64 и чтение через /images
func TestProfileImage_Base64RoundTrip(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	mentee := signup(t, ts, "mentee@test.com", "Bob", "mentee")

	res, body := ts.SendRequest(t, http.MethodPut, "/api/profile", mentee.Token, map[string]interface{}{
		"image": "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var me meBody
	helpers.DecodeJSON(t, body, &me)
	imagePath := fmt.Sprintf("/api/images/mentee/%d", mentee.ID)
	assert.Equal(t, imagePath, me.Profile.ImageURL)

	res, body = ts.SendRequest(t, http.MethodGet, imagePath, mentee.Token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Equal(t, fmt.Sprint(len(pngBytes)), res.Header.Get("Content-Length"))
	assert.Equal(t, "public, max-age=3600", res.Header.Get("Cache-Control"))
	assert.Equal(t, string(pngBytes), body)
}

func TestProfileImage_MultipartUpload(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	mentor := signup(t, ts, "mentor@test.com", "Alice", "mentor")

	res, body := ts.SendMultipart(t, http.MethodPut, "/api/profile", mentor.Token,
		map[string][]string{
			"name":   {"Alice M."},
			"skills": {"Go", "Kubernetes"},
		},
		helpers.MultipartFile{Field: "image", Filename: "avatar.jpg", Data: jpegBytes},
	)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var me meBody
	helpers.DecodeJSON(t, body, &me)
	assert.Equal(t, "Alice M.", me.Profile.Name)
	assert.Equal(t, []string{"Go", "Kubernetes"}, me.Profile.Skills)
	assert.Equal(t, fmt.Sprintf("/api/images/mentor/%d", mentor.ID), me.Profile.ImageURL)

	// Повторная загрузка заменяет изображение целиком
	res, body = ts.SendMultipart(t, http.MethodPut, "/api/profile", mentor.Token, nil,
		helpers.MultipartFile{Field: "image", Filename: "avatar.png", Data: pngBytes},
	)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodGet, me.Profile.ImageURL, mentor.Token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Equal(t, string(pngBytes), body)
}

func TestProfileImage_MultipartSkillsAsJSONString(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token := ts.SignupAndLogin(t, "mentor@test.com", "Alice", "mentor")

	res, body := ts.SendMultipart(t, http.MethodPut, "/api/profile", token, map[string][]string{
		"skills": {`["Go","Rust"]`},
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var me meBody
	helpers.DecodeJSON(t, body, &me)
	assert.Equal(t, []string{"Go", "Rust"}, me.Profile.Skills)
}

func TestProfileImage_MultipartRejectsWrongType(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token := ts.SignupAndLogin(t, "mentee@test.com", "Bob", "mentee")

	res, body := ts.SendMultipart(t, http.MethodPut, "/api/profile", token, nil,
		helpers.MultipartFile{Field: "image", Filename: "avatar.png", Data: gifBytes},
	)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
}

func TestProfileImage_Placeholder(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	mentor := signup(t, ts, "mentor@test.com", "Alice", "mentor")

	res, _ := ts.SendRequest(t, http.MethodGet, fmt.Sprintf("/api/images/mentor/%d", mentor.ID), mentor.Token, nil)
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, ts.Config.Images.MentorPlaceholder, res.Header.Get("Location"))
}

func TestProfileImage_BadParams(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	mentor := signup(t, ts, "mentor@test.com", "Alice", "mentor")

	cases := []struct {
		path   string
		status int
	}{
		{"/api/images/admin/1", http.StatusBadRequest},
		{"/api/images/mentor/abc", http.StatusBadRequest},
		{"/api/images/mentor/0", http.StatusBadRequest},
		{"/api/images/mentor/9999", http.StatusNotFound},
		// роль в пути должна совпадать с ролью владельца
		{fmt.Sprintf("/api/images/mentee/%d", mentor.ID), http.StatusNotFound},
	}

	for _, tc := range cases {
		res, body := ts.SendRequest(t, http.MethodGet, tc.path, mentor.Token, nil)
		assert.Equal(t, tc.status, res.StatusCode, "%s: %s", tc.path, body)
	}
}
