package serverutils

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names in messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, len(fields))
	for i, field := range fields {
		messages[i] = e.Errors[field]
	}
	return strings.Join(messages, ", ")
}

func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &ValidationError{Errors: make(map[string]string, len(errs))}
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out.Errors[field] = fmt.Sprintf("%s is required", field)
		case "url":
			out.Errors[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "uuid", "uuid4":
			out.Errors[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "max":
			out.Errors[field] = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		case "min":
			out.Errors[field] = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		default:
			out.Errors[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return out
}
