// Package validation checks user-typed forms against tag-declared schemas
// and turns failures into field-level messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"prxwallet/internal/application/conversion"
	"prxwallet/internal/domain/model"
)

var (
	addressRe = regexp.MustCompile(`^[A-Za-z0-9_-]{26,128}$`)
	pinRe     = regexp.MustCompile(`^[0-9]{4,8}$`)
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "amount", func(fl validator.FieldLevel) bool {
		_, err := conversion.ParseAmount(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "currency", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseCurrency(fl.Field().String())
		return ok
	})
	mustRegister(v, "address", func(fl validator.FieldLevel) bool {
		return addressRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "pin", func(fl validator.FieldLevel) bool {
		return pinRe.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct validates any tagged form. Failures come back as a
// *model.ValidationError.
func (val *Validator) Struct(form any) error {
	err := val.v.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return &model.ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "amount":
		return f + " must be a positive number"
	case "currency":
		return f + " must be PRX or USDT"
	case "address":
		return f + " is not a valid wallet address"
	case "email":
		return f + " must be a valid email address"
	case "pin":
		return f + " must be 4 to 8 digits"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
	case "eqfield":
		return f + " does not match"
	case "nefield":
		return f + " must be different"
	default:
		return f + " is invalid"
	}
}
