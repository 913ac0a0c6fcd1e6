package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
)

// Messages maps a JSON field name to the message shown when that field fails.
type Messages map[string]string

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Struct validates v and reports the first failing field as a *errs.ValidationError.
func Struct(v any, messages Messages) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errs.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &errs.ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := fe.Field()
	msg, ok := messages[field]
	if !ok {
		msg = field + " is invalid"
	}
	return &errs.ValidationError{Field: field, Message: msg}
}
