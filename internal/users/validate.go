package users

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"foodgram/internal/apperr"
	"foodgram/models"
)

const (
	minPasswordLength = 8
	// bcrypt hashes at most 72 bytes and refuses longer input.
	maxPasswordBytes = 72
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return models.ValidUsername(fl.Field().String())
		})
	})
	return validate
}

// validateStruct runs the struct tags and reports the first failure as a
// ValidationError.
func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperr.Invalid(field, "%s is required", field)
	case "email":
		return apperr.Invalid(field, "enter a valid email address")
	case "max":
		return apperr.Invalid(field, "%s must be at most %s characters", field, fe.Param())
	case "username":
		return apperr.Invalid(field, "username may contain only letters, digits and @/./+/-/_ characters")
	default:
		return apperr.Invalid(field, "%s is invalid", field)
	}
}

// validatePassword applies the password strength rules.
func validatePassword(field, password, username, email string) error {
	if len([]rune(password)) < minPasswordLength {
		return apperr.Invalid(field, "password must contain at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return apperr.Invalid(field, "password must be at most %d bytes", maxPasswordBytes)
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		return apperr.Invalid(field, "password must not be entirely numeric")
	}
	lowered := strings.ToLower(password)
	if username != "" && lowered == strings.ToLower(username) {
		return apperr.Invalid(field, "password is too similar to the username")
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" && lowered == strings.ToLower(local) {
		return apperr.Invalid(field, "password is too similar to the email")
	}
	return nil
}
