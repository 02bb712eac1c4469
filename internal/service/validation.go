package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrValidationFailed wraps every request validation error.
var ErrValidationFailed = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

// initValidator creates the validator, reporting fields by their JSON name
// and adding the "finite" rule for float fields.
func initValidator() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())

	vld.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	if err := vld.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Float64 && fl.Field().Kind() != reflect.Float32 {
			return false
		}
		v := fl.Field().Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}); err != nil {
		return nil, fmt.Errorf("failed to register 'finite': %w", err)
	}

	return vld, nil
}

// validateRequest checks msg against its validate tags and returns the first
// failure as a readable error wrapping ErrValidationFailed.
func validateRequest(msg any) error {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	if errValidate != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, errValidate)
	}

	if err := validate.Struct(msg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return formatValidationError(validationErrors[0])
		}
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return nil
}

func formatValidationError(fe validator.FieldError) error {
	// Namespace is "SetItemsRequest.items[0].name"; drop the type name.
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required", "required_with":
		return fmt.Errorf("%w: '%s' is required", ErrValidationFailed, field)
	case "gt":
		return fmt.Errorf("%w: '%s' must be greater than %s", ErrValidationFailed, field, fe.Param())
	case "gte":
		return fmt.Errorf("%w: '%s' must be at least %s", ErrValidationFailed, field, fe.Param())
	case "max":
		return fmt.Errorf("%w: '%s' must be at most %s characters", ErrValidationFailed, field, fe.Param())
	case "oneof":
		return fmt.Errorf("%w: '%s' must be one of [%s]", ErrValidationFailed, field, fe.Param())
	case "finite":
		return fmt.Errorf("%w: '%s' must be a finite number", ErrValidationFailed, field)
	default:
		return fmt.Errorf("%w: '%s' failed '%s'", ErrValidationFailed, field, fe.Tag())
	}
}
