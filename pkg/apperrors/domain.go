package apperrors

import (
	"net/http"
)

/*
Предопределенные ошибки домена: аккаунты, профили, заявки на менторство.
*/

// --- Auth ---

// ErrInvalidCredentials не различает неизвестный email и неверный пароль.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid credentials",
	http.StatusUnauthorized,
)

// ErrMissingToken - заголовок Authorization отсутствует или не Bearer.
var ErrMissingToken = New(
	CodeUnauthorized,
	"auth",
	"Access token required",
	http.StatusUnauthorized,
)

// ErrInvalidToken - токен поврежден, просрочен или подпись не сходится.
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid token",
	http.StatusUnauthorized,
)

// ErrEmailAlreadyExists - email уже используется (400 как нарушение правила).
var ErrEmailAlreadyExists = New(
	CodeConflict,
	"auth",
	"User already exists",
	http.StatusBadRequest,
)

// ErrInvalidUserRole - роль не из {mentor, mentee}.
var ErrInvalidUserRole = New(
	CodeValidationFailed,
	"auth",
	"Role must be either mentor or mentee",
	http.StatusBadRequest,
)

// --- Accounts & profiles ---

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

var ErrRoleImmutable = New(
	CodeValidationFailed,
	"profile",
	"Role cannot be changed",
	http.StatusBadRequest,
)

var ErrImageTooLarge = New(
	CodeValidationFailed,
	"profile",
	"Image exceeds the allowed size",
	http.StatusBadRequest,
)

var ErrInvalidImageType = New(
	CodeValidationFailed,
	"profile",
	"Only .jpg and .png files are allowed",
	http.StatusBadRequest,
)

// --- Match requests ---

// ErrMatchRequestNotFound - заявка отсутствует или принадлежит другому пользователю.
var ErrMatchRequestNotFound = New(
	CodeNotFound,
	"match_request",
	"Request not found",
	http.StatusNotFound,
)

var ErrMentorNotFound = New(
	CodeValidationFailed,
	"match_request",
	"Mentor not found",
	http.StatusBadRequest,
)

var ErrRequestAlreadyExists = New(
	CodeConflict,
	"match_request",
	"Request already exists",
	http.StatusBadRequest,
)

var ErrPendingWithOtherMentor = New(
	CodeConflict,
	"match_request",
	"You already have a pending request with another mentor",
	http.StatusBadRequest,
)

var ErrMentorAlreadyAccepted = New(
	CodeConflict,
	"match_request",
	"You already have an accepted request",
	http.StatusBadRequest,
)

// --- Transport ---

var ErrRateLimited = New(
	CodeRateLimited,
	"request",
	"Too many requests, please try again later",
	http.StatusTooManyRequests,
)
