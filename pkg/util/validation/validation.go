// Package validation runs struct tag validation on request payloads.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// optional contact fields may be sent blank to leave them unset
	_ = v.RegisterValidation("blank_or_email", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		value := strings.TrimSpace(field.String())
		return value == "" || v.Var(value, "email") == nil
	})
	return v
}

// ValidateStruct returns a field -> message map, or nil when data is valid.
func ValidateStruct(data interface{}) map[string]any {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	errors := make(map[string]any)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range validationErrors {
			errors[fe.Field()] = message(fe)
		}
		return errors
	}
	errors["_"] = err.Error()
	return errors
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email", "blank_or_email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", err.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(err.Param(), " ", ", "))
	case "uuid":
		return "Must be a valid UUID"
	default:
		return fmt.Sprintf("Invalid %s field", err.Field())
	}
}
