package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindForm binds a posted form and, on failure, bounces the browser back to
// redirectPath with a single human-readable message. Returns false when the
// handler should stop.
func BindForm(ctx *gin.Context, out interface{}, redirectPath string) bool {
	err := ctx.ShouldBind(out)

	if err != nil {
		RedirectWithMessage(ctx, redirectPath, bindMessage(err, out))

		return false
	}

	return true
}

// bindMessage turns the first validator error into something a member can
// act on, e.g. "email must be a valid email address".
func bindMessage(err error, out interface{}) string {
	var validatorErrors validator.ValidationErrors

	if errors.As(err, &validatorErrors) && len(validatorErrors) > 0 {
		fieldError := validatorErrors[0]
		field := formNameFor(out, fieldError.StructField())

		return field + " " + validationMessage(fieldError.Tag(), fieldError.Param())
	}

	return "Invalid form submission."
}

// formNameFor maps a struct field back to its form tag so messages use the
// name the member saw on the page.
func formNameFor(out interface{}, structField string) string {
	t := reflect.TypeOf(out)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}

	sf, ok := t.FieldByName(structField)

	if !ok {
		return structField
	}

	tag := sf.Tag.Get("form")

	if tag == "" {
		return structField
	}

	name, _, _ := strings.Cut(tag, ",")

	if name == "" || name == "-" {
		return structField
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	default:
		if param != "" {
			return "failed " + rule + " validation (" + param + ")"
		}
		return "failed " + rule + " validation"
	}
}
