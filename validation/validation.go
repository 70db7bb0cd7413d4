package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kapeta/sdk-go-redis/errors"
)

// FieldError describes a single failed field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report json (then mapstructure) names so messages match config keys.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "mapstructure"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return toSnakeCase(fld.Name)
		})
	})
	return validate
}

// Validate validates a struct using its `validate` tags.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msg := formatValidationError(e)
		fieldErrors = append(fieldErrors, FieldError{Field: e.Field(), Message: msg})
		messages = append(messages, e.Field()+": "+msg)
	}

	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", fieldErrors)
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + e.Param()
	case "max", "lte":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "hostname_rfc1123", "hostname", "ip":
		return "must be a valid host"
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
