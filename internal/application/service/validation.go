package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/apperror"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct's validate tags and converts failures into
// a validation AppError with one entry per field
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   jsonName(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	return apperror.NewValidationError(fields)
}

func fieldMessage(fe validator.FieldError) string {
	name := jsonName(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "required_without":
		return "email or phone is required"
	case "email":
		return name + " must be a valid email address"
	case "max":
		return name + " must be at most " + fe.Param() + " characters"
	case "gte":
		return name + " must not be negative"
	case "oneof":
		return name + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return name + " is invalid"
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func mapVersionConflict(err error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return apperror.ErrStaleVersion
	}
	return err
}

func mapDuplicate(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return apperror.NewConflictError(message)
	}
	return err
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
