// Package validation holds the caller-side precondition checks for
// registration. The session store trusts its input; everything here
// runs before the store is invoked.
package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"rocketlearn/internal/models"
)

var validate = validator.New()

// ValidationError reports a single failed field check.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RegisterForm is a registration submission before it becomes a user.
type RegisterForm struct {
	Email           string `validate:"omitempty,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required"`
	Name            string `validate:"required,min=2,max=50"`
	Role            string `validate:"required,oneof=parent child"`
	ParentID        string
	Age             int
}

// ValidateRegistration checks a registration form. The first failed
// check wins; the store itself performs no validation.
func ValidateRegistration(form RegisterForm) error {
	if err := validate.Struct(form); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return describe(errs[0])
		}
		return err
	}

	if form.Password != form.ConfirmPassword {
		return ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}

	switch models.Role(form.Role) {
	case models.RoleParent:
		if form.Email == "" {
			return ValidationError{Field: "email", Message: "email is required for parent accounts"}
		}
	case models.RoleChild:
		if form.Age < 3 || form.Age > 12 {
			return ValidationError{Field: "age", Message: "age must be between 3 and 12"}
		}
	}

	return nil
}

// describe maps a validator failure to a user-facing message.
func describe(fe validator.FieldError) ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return ValidationError{Field: field, Message: field + " is required"}
	case "email":
		return ValidationError{Field: field, Message: "invalid email format"}
	case "min":
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at least %s characters", field, fe.Param())}
	case "max":
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %s characters", field, fe.Param())}
	case "oneof":
		return ValidationError{Field: field, Message: field + " must be one of: " + fe.Param()}
	default:
		return ValidationError{Field: field, Message: "invalid value"}
	}
}
