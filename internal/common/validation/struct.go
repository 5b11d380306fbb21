// internal/common/validation/struct.go
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their json name so messages match job variables.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs the `validate` struct tags on v.
func ValidateStruct(v interface{}) *ValidationResult {
	err := validate.Struct(v)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_STRUCT"}},
		}
	}

	out := &ValidationResult{Valid: false}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:],
			Message: describeTag(fe),
			Code:    codeForTag(fe.Tag()),
		})
	}
	return out
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "dive":
		return "contains an invalid element"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func codeForTag(tag string) string {
	switch tag {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "max":
		return "MAX_LENGTH_VIOLATION"
	case "oneof":
		return "INVALID_ENUM_VALUE"
	default:
		return "CONSTRAINT_VIOLATION"
	}
}
