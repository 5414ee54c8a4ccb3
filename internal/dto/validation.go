package dto

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/splitr-app/splitr_backend/internal/core/domain"
)

// notFutureDate accepts date-only strings up to and including today (UTC).
// Malformed values pass through; the datetime rule reports those.
var notFutureDate validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	date, err := time.ParseInLocation(domain.DateFormat, value, time.UTC)
	if err != nil {
		return true
	}
	return !date.After(time.Now().UTC())
}

// RegisterCustomValidations attaches domain rules to gin's binding engine so
// they can be used in struct binding tags. Call once at startup.
func RegisterCustomValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notfuture", notFutureDate)
	}
}
