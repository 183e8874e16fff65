package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	flagKeyPattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json name so errors line up with request bodies.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("flagkey", func(fl validator.FieldLevel) bool {
		return flagKeyPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateInput runs the struct tags on in and converts failures into a
// ValidationError keyed by json field name.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describeRule(fe)
	}
	return &ValidationError{Fields: fields}
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "slug":
		return "must be lowercase letters, digits and single hyphens"
	case "flagkey":
		return "must be lowercase letters, digits, '_', '.' or '-'"
	case "url":
		return "must be a valid URL"
	}
	return "failed " + fe.Tag() + " validation"
}
