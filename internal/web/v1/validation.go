package v1

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/duynhne/client-service/internal/core/domain"
)

var registerOnce sync.Once

// RegisterValidators adds the directory's custom binding tags to gin's
// validator engine: clientemail and phonenumber.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("clientemail", validateClientEmail)
		_ = v.RegisterValidation("phonenumber", validatePhoneNumber)
	})
}

func validateClientEmail(fl validator.FieldLevel) bool {
	return domain.ValidEmail(fl.Field().String())
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	_, err := domain.ParsePhoneNumber(fl.Field().String())
	return err == nil
}

// sanitizeValidationError returns a user-friendly message for validation/binding errors.
// Raw gin/validator errors expose struct internals and are never returned as is.
func sanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, msgForTag(fe))
		}
		return strings.Join(msgs, "; ")
	}

	msg := err.Error()
	if strings.Contains(msg, "cannot unmarshal") ||
		strings.Contains(msg, "bind") ||
		strings.Contains(msg, "Key:") {
		return "Invalid request"
	}
	if msg == "EOF" {
		return "Request body is required"
	}
	if len(msg) < 100 && !strings.Contains(msg, "Error:") {
		return msg
	}
	return "Invalid request"
}

func msgForTag(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "clientemail":
		return "invalid email address"
	case "phonenumber":
		return "phone number must be numeric"
	default:
		return field + " is invalid"
	}
}
