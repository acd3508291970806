package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names so paths match what clients sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// validateStruct returns field path -> messages, or nil when v is valid.
func validateStruct(v any) map[string][]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string][]string{"": {err.Error()}}
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe)
		out[path] = append(out[path], fieldMessage(fe))
	}
	return out
}

// fieldPath drops the root struct name: "contactDetailDTO.addresses[0].city" -> "addresses[0].city".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' must not be empty.", name)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The length of '%s' must be %s characters or fewer.", name, fe.Param())
		}
		return fmt.Sprintf("'%s' must be less than or equal to '%s'.", name, fe.Param())
	case "email":
		return fmt.Sprintf("'%s' is not a valid email address.", name)
	case "gte":
		return fmt.Sprintf("'%s' must be greater than or equal to '%s'.", name, fe.Param())
	case "lte":
		return fmt.Sprintf("'%s' must be less than or equal to '%s'.", name, fe.Param())
	default:
		return fmt.Sprintf("'%s' is invalid (%s).", name, fe.Tag())
	}
}
