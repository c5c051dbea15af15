package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{2,20}$`)

// New returns a validator with the custom `username` tag registered:
// 2-20 characters, letters, digits and underscore only.
func New() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})

	return validate
}
