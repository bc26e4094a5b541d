// Package validation turns validator/v10 struct tags into the uniform
// field -> message map carried by domain.ErrValidationFields.
//
// A field may carry a `msg` tag; it replaces the translated message for every
// failing rule except "required".
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/baechuer/homi/internal/domain"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ = uni.GetTranslator("en")

	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	register("required", "{0} is required")
	register("email", "Please provide a valid email address")
	register("min", "{0} must be at least {1} characters")
	register("max", "{0} must be at most {1} characters")
}

func register(tag, text string) {
	_ = validate.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Field() + " is invalid"
			}
			return msg
		},
	)
}

// Struct validates s and returns nil or a *domain.Error with one message per failing field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrInternal(err)
	}

	st := reflect.Indirect(reflect.ValueOf(s)).Type()
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(st, fe)
	}
	return domain.ErrValidationFields(fields)
}

func message(st reflect.Type, fe validator.FieldError) string {
	if fe.Tag() != "required" {
		if sf, ok := st.FieldByName(fe.StructField()); ok {
			if custom := sf.Tag.Get("msg"); custom != "" {
				return custom
			}
		}
	}
	return fe.Translate(trans)
}
