package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match request bodies
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Error carries one readable message per failed field.
type Error struct {
	Fields []string
}

func (e *Error) Error() string { return strings.Join(e.Fields, "; ") }

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		return format(err, "")
	}
	return nil
}

// Var validates a single value against a tag expression, using name in messages.
func Var(name string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return format(err, name)
	}
	return nil
}

func format(err error, name string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make([]string, 0, len(verrs))}
	for _, fe := range verrs {
		field := name
		if field == "" {
			field = fe.Field()
		}
		out.Fields = append(out.Fields, fieldMessage(field, fe))
	}
	return out
}

func fieldMessage(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
