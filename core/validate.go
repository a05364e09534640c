package core

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("trimmed_min", trimmedMin)
	}
}

// trimmedMin enforces the minimum length on the whitespace-trimmed value, so
// padding cannot carry a too-short name past validation.
func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(fl.Field().String())) >= n
}

// signupRequest mirrors the signup payload contract: name 6-255 after
// trimming, valid email 5-255, password 8-128, role optional (defaults to
// "user").
type signupRequest struct {
	Name     string `json:"name" binding:"required,trimmed_min=6,max=255"`
	Email    string `json:"email" binding:"required,email,min=5,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// FieldError is one entry of the validation details returned with a 400.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// formatValidationError translates binding failures into per-field messages.
// Non-validator errors (malformed JSON) collapse into a single generic entry.
func formatValidationError(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: "invalid request body"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "invalid email address"
	case "min", "trimmed_min":
		return field + " must be at least " + fe.Param() + " characters long"
	case "max":
		return field + " is too long"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	default:
		return field + " is invalid"
	}
}
