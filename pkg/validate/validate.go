// Package validate runs go-playground/validator rules on request structs and
// flattens the result into a field → message map keyed by JSON name.
//
//	type CheckoutRequest struct {
//	    Name  string `json:"customer_name" validate:"required,notblank,max=120"`
//	    Email string `json:"email"         validate:"required,email"`
//	    Price string `json:"price"         validate:"required,decimal"`
//	}
//
// Besides the validator built-ins, two rules are registered:
//
//	notblank   string must contain a non-space character
//	decimal    string parses as a non-negative decimal number
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("notblank", notBlank)
		_ = v.RegisterValidation("decimal", isDecimal)
	})
	return v
}

// Struct validates s. The returned map is empty when s is valid; only the
// first failing rule per field is reported.
func Struct(s interface{}) map[string]string {
	errs := make(map[string]string)

	err := instance().Struct(s)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["_"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		name := fieldPath(fe)
		if _, seen := errs[name]; !seen {
			errs[name] = message(fe)
		}
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// Var validates a single value against tag, e.g. Var(q, "min=2").
func Var(value interface{}, tag string) error {
	return instance().Var(value, tag)
}

// jsonName names a field by its json tag, else its form tag, else the Go
// field name.
func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		tag = f.Tag.Get("form")
	}
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "url", "http_url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	case "decimal":
		return fmt.Sprintf("The %s must be a non-negative number.", field)
	case "numeric", "number":
		return fmt.Sprintf("The %s must be a number.", field)
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", field, strings.ReplaceAll(param, " ", ", "))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
		return fmt.Sprintf("The %s must be at least %s.", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, param)
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, param)
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, param)
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	case "lt":
		return fmt.Sprintf("The %s must be less than %s.", field, param)
	case "len":
		return fmt.Sprintf("The %s must be %s characters.", field, param)
	default:
		return fmt.Sprintf("The %s field is invalid (%s).", field, fe.Tag())
	}
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return !f.IsZero()
	}
	return strings.TrimSpace(f.String()) != ""
}

func isDecimal(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	s := strings.TrimSpace(f.String())
	if s == "" {
		return true
	}
	d, err := decimal.NewFromString(s)
	return err == nil && !d.IsNegative()
}
