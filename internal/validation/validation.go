// Package validation holds the rules every calculation and user payload must
// pass before it reaches storage.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"bread-calculator/internal/apperr"
	"bread-calculator/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Calculation is the single authoritative check for a calculation's fields.
// The divisor rule lives here and nowhere else.
func Calculation(a, b float64, calcType models.CalculationType) error {
	if !calcType.Valid() {
		return apperr.Validation("type: invalid calculation type %q, expected one of Add, Sub, Multiply, Divide", calcType)
	}
	if calcType == models.Divide && b == 0 {
		return apperr.Validation("b: division by zero is not allowed")
	}
	return nil
}

type newUser struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// NewUser checks a registration payload. Fields are checked in declaration
// order and only the first failure is reported.
func NewUser(username, email, password string) error {
	err := validate.Struct(newUser{Username: username, Email: email, Password: password})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation("invalid user payload")
	}
	return apperr.Validation("%s: %s", fieldErrs[0].Field(), describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		if fe.Field() == "username" {
			return "must be between 3 and 50 characters"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be between 3 and 50 characters"
	default:
		return "is invalid"
	}
}
