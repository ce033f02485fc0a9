package validator

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"mentormatch_backend/internal/models"
)

// registerCustomRules регистрирует кастомные функции валидации.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-user-role': mentor или mentee
	mustRegister("is-user-role", validateUserRole)

	// 'no-null-bytes': строка без \x00
	mustRegister("no-null-bytes", validateNoNullBytes)

	// 'not-blank': непустая строка после TrimSpace
	mustRegister("not-blank", validateNotBlank)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Не проверяем пустые значения, для этого есть 'required'
	}
	return models.UserRole(value).IsValid()
}

func validateNoNullBytes(fl validator.FieldLevel) bool {
	return !strings.ContainsRune(fl.Field().String(), 0)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
