package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/replydesk-backend/internal/app/model"
)

// RegisterValidators adds the enum tags used in request bindings:
// tone, review_source, review_status.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterEnumValidators(v)
}

// RegisterEnumValidators registers the enum tags on v.
func RegisterEnumValidators(v *validator.Validate) error {
	validators := map[string]validator.Func{
		"tone": func(fl validator.FieldLevel) bool {
			return model.ToneType(fl.Field().String()).Valid()
		},
		"review_source": func(fl validator.FieldLevel) bool {
			return model.ReviewSource(fl.Field().String()).Valid()
		},
		"review_status": func(fl validator.FieldLevel) bool {
			return model.ReviewStatus(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
