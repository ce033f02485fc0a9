package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentormatch_backend/internal/app"
	"mentormatch_backend/internal/config"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const TestPassword = "password123"

type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	Config *config.Config
}

// TestConfig - конфигурация для тестов: SQLite, хранение изображений в БД, без лимитов.
func TestConfig() *config.Config {
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
		},
		JWT: config.JWTConfig{
			Secret:     "test_secret_key_for_integration_tests",
			TTLMinutes: 60,
		},
		Storage:   config.StorageConfig{Type: "database"},
		RateLimit: config.RateLimitConfig{Enabled: false, Window: time.Minute},
	}
	cfg.ApplyDefaults()
	return cfg
}

// NewTestServer поднимает httptest сервер поверх свежей БД.
// mutate позволяет поправить конфиг до сборки роутера.
func NewTestServer(t *testing.T, mutate ...func(*config.Config)) *TestServer {
	t.Helper()

	cfg := TestConfig()
	for _, m := range mutate {
		m(cfg)
	}

	db := NewTestDB(t)
	router, cleanup, err := app.SetupRouter(cfg, db)
	require.NoError(t, err, "Не удалось собрать роутер")
	t.Cleanup(cleanup)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{Server: server, DB: db, Config: cfg}
}

// Client не следует редиректам, чтобы тесты видели 302.
func (ts *TestServer) Client() *http.Client {
	client := *ts.Server.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &client
}

// SendRequest отправляет JSON запрос и возвращает ответ и тело строкой.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Ошибка кодирования JSON для запроса")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req, token)
}

// MultipartFile - файл для SendMultipart
type MultipartFile struct {
	Field    string
	Filename string
	Data     []byte
}

// SendMultipart отправляет multipart/form-data. Повторяющиеся поля передаются срезом.
func (ts *TestServer) SendMultipart(t *testing.T, method, path, token string, fields map[string][]string, files ...MultipartFile) (*http.Response, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(method, ts.Server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ts.do(t, req, token)
}

func (ts *TestServer) do(t *testing.T, req *http.Request, token string) (*http.Response, string) {
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err, "Ошибка отправки HTTP-запроса")
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err, "Ошибка чтения тела ответа")
	return res, string(resBody)
}

// SignupAndLogin регистрирует пользователя через API и возвращает токен.
func (ts *TestServer) SignupAndLogin(t *testing.T, email, name, role string) string {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/signup", "", map[string]interface{}{
		"email":    email,
		"password": TestPassword,
		"name":     name,
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, "Регистрация не прошла: %s", body)

	return ts.Login(t, email, TestPassword)
}

// Login возвращает JWT для существующего пользователя.
func (ts *TestServer) Login(t *testing.T, email, password string) string {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "Логин не прошел: %s", body)

	var loginResponse struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &loginResponse))
	require.NotEmpty(t, loginResponse.Token)
	return loginResponse.Token
}

// DecodeJSON разбирает тело ответа в v.
func DecodeJSON(t *testing.T, body string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), v), "Не удалось распарсить JSON: %s", body)
}
