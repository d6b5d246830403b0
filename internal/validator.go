package internal

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// field names are trimmed and single-line
var fieldNamePattern = regexp.MustCompile(`^\S(?:[^\r\n]*\S)?$`)

func NewValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("field_name", func(fl validator.FieldLevel) bool {
		return fieldNamePattern.MatchString(fl.Field().String())
	})

	return v
}

func ValidateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err != nil {
		return err
	}
	return nil
}
