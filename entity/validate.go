package entity

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbayram/clientkit/httpclient"
)

var (
	validate *validator.Validate
	once     sync.Once
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use json tag names for field names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})

		// decimalgt0 accepts decimal strings strictly greater than zero,
		// matching the server's amount fields.
		_ = validate.RegisterValidation("decimalgt0", func(fl validator.FieldLevel) bool {
			f, err := strconv.ParseFloat(fl.Field().String(), 64)
			return err == nil && f > 0
		})

		// dateformat accepts calendar dates in YYYY-MM-DD form.
		_ = validate.RegisterValidation("dateformat", func(fl validator.FieldLevel) bool {
			return dateRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

// validateInput validates a struct using its validate tags before it goes on
// the wire. Failures come back as the same typed validation error a server
// 400 produces, so form-error mapping works identically for both.
func validateInput(s any) error {
	v := getValidator()
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &httpclient.Error{
			Code:    httpclient.ErrCodeValidation,
			Message: "validation failed",
			Err:     err,
		}
	}

	fields := make(map[string][]string, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		name := e.Field()
		msg := formatValidationError(e)
		fields[name] = append(fields[name], msg)
		messages = append(messages, name+": "+msg)
	}

	return &httpclient.Error{
		Code:    httpclient.ErrCodeValidation,
		Message: strings.Join(messages, "; "),
		API:     &httpclient.APIMessage{FieldErrors: fields},
		Err:     err,
	}
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "oneof":
		return "must be one of: " + e.Param()
	case "decimalgt0":
		return "must be a decimal greater than zero"
	case "dateformat":
		return "must be a date in YYYY-MM-DD form"
	default:
		return "is invalid"
	}
}

// toSnakeCase converts a field name to snake_case.
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
