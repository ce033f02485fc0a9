package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword создает bcrypt хеш пароля
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash проверяет пароль против хеша
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// dummyHash сравнивается, когда пользователь не найден, чтобы время ответа
// не выдавало существование email.
var dummyHash, _ = HashPassword("not-a-real-password")

// CheckPasswordHashOrDummy - CheckPasswordHash, который при пустом хеше
// всё равно выполняет bcrypt-сравнение и возвращает false.
func CheckPasswordHashOrDummy(password, hash string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return false
	}
	return CheckPasswordHash(password, hash)
}
