package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var currencyCodeRx = regexp.MustCompile(`^[A-Z]{3}$`)

// registerCustomValidations installs the currencycode binding rule used by
// the DTO tags. Registering the same tag twice is a no-op, so repeated
// route registration (as in tests) is safe.
func registerCustomValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currencycode", func(fl validator.FieldLevel) bool {
			return currencyCodeRx.MatchString(fl.Field().String())
		})
	}
}
