// Package validation checks request payloads against their `validate` tags
// and turns violations into client-facing codes and messages.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error codes, in the order the UI checks them.
const (
	CodeFieldRequired    = "FIELD_REQUIRED"
	CodeInvalidEmail     = "INVALID_EMAIL"
	CodePasswordTooShort = "PASSWORD_TOO_SHORT"
	CodePasswordTooLong  = "PASSWORD_TOO_LONG"
	CodePasswordMismatch = "PASSWORD_MISMATCH"
	CodeInvalidValue     = "INVALID_VALUE"
)

var messages = map[string]string{
	CodeFieldRequired:    "필수 항목을 입력해 주세요.",
	CodeInvalidEmail:     "올바른 이메일 주소를 입력해 주세요.",
	CodePasswordTooShort: "비밀번호는 8자 이상이어야 합니다.",
	CodePasswordTooLong:  "비밀번호가 너무 깁니다. (최대 72바이트)",
	CodePasswordMismatch: "비밀번호가 일치하지 않습니다.",
	CodeInvalidValue:     "입력값이 올바르지 않습니다.",
}

// Error describes the violations of one payload. Code and Message belong to
// the first violated field; Fields maps every violated field to its message.
type Error struct {
	Code    string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return "validation failed: " + e.Code
}

// Validator wraps a configured validator.Validate. Safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// bcrypt stops at 72 bytes; validator's max counts runes.
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return &Validator{v: v}
}

// maxBytes implements the "maxbytes=N" tag: the string is at most N bytes
// long in UTF-8.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Struct validates s. It returns nil or an *Error.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Code: CodeInvalidValue, Message: messages[CodeInvalidValue], Fields: map[string]string{}}
	}

	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out.Fields[field]; seen {
			continue
		}
		code := codeFor(fe)
		out.Fields[field] = messages[code]
		if out.Code == "" {
			out.Code = code
			out.Message = messages[code]
		}
	}
	return out
}

func codeFor(fe validator.FieldError) string {
	isPassword := strings.Contains(strings.ToLower(fe.StructField()), "password")
	switch fe.Tag() {
	case "required", "required_if":
		return CodeFieldRequired
	case "email":
		return CodeInvalidEmail
	case "eqfield":
		return CodePasswordMismatch
	case "min":
		if isPassword {
			return CodePasswordTooShort
		}
	case "max", "maxbytes":
		if isPassword {
			return CodePasswordTooLong
		}
	}
	return CodeInvalidValue
}

// TrimStrings trims surrounding whitespace from every exported string field
// of the struct pointed to by ptr, except fields whose name contains
// "Password". Nested structs and string slices are handled too.
func TrimStrings(ptr any) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	trimValue(rv.Elem())
}

func trimValue(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		sf := t.Field(i)
		if !sf.IsExported() || !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			if strings.Contains(sf.Name, "Password") {
				continue
			}
			f.SetString(strings.TrimSpace(f.String()))
		case reflect.Pointer:
			if f.IsNil() {
				continue
			}
			if f.Elem().Kind() == reflect.String {
				f.Elem().SetString(strings.TrimSpace(f.Elem().String()))
			} else {
				trimValue(f.Elem())
			}
		case reflect.Slice:
			if f.Type().Elem().Kind() != reflect.String {
				continue
			}
			for j := 0; j < f.Len(); j++ {
				f.Index(j).SetString(strings.TrimSpace(f.Index(j).String()))
			}
		case reflect.Struct:
			trimValue(f)
		}
	}
}
