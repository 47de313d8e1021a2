package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/makerspace/membership-service/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator with the creator_type rule registered.
func NewValidator() *echoValidator {
	v := validator.New()
	_ = v.RegisterValidation("creator_type", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case domain.CreatorMaker, domain.CreatorHacker, domain.CreatorArtist:
			return true
		}
		return false
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "creator_type":
		return fmt.Sprintf("%s must be one of: %s, %s, %s", field, domain.CreatorMaker, domain.CreatorHacker, domain.CreatorArtist)
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
