package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateDate checks a YYYY-MM-DD path or query parameter.
func ValidateDate(date string) error {
	return validate.Var(date, "required,datetime=2006-01-02")
}

// ValidateMonth checks a YYYY-MM query parameter.
func ValidateMonth(month string) error {
	return validate.Var(month, "required,datetime=2006-01")
}

// FieldErrors flattens a validator error into field -> constraint pairs for
// the response envelope. Non-validator errors yield nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return fields
}
