package sdk

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	upperRegex   = regexp.MustCompile(`[A-Z]`)
	digitRegex   = regexp.MustCompile(`[0-9]`)
	specialRegex = regexp.MustCompile(`[\W_]`)
)

func init() {
	validate = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	var found bool
	if translator, found = uni.GetTranslator("en"); !found {
		panic("validation: english translator not registered")
	}
	must(en_translations.RegisterDefaultTranslations(validate, translator))

	// Report JSON field names rather than Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustom("portal_role", "{0} must be one of student, teacher, department, director", func(fl validator.FieldLevel) bool {
		return Role(fl.Field().String()).Valid()
	})
	registerCustom("password_len", "Password must be at least 8 characters", func(fl validator.FieldLevel) bool {
		return utf8.RuneCount(fieldBytes(fl)) >= 8
	})
	registerCustom("has_upper", "Password must contain at least one uppercase letter", matches(upperRegex))
	registerCustom("has_digit", "Password must contain at least one number", matches(digitRegex))
	registerCustom("has_special", "Password must contain at least one special character", matches(specialRegex))
	overrideTranslation("email", "It must be an email")
}

func must(err error) {
	if err != nil {
		panic("validation: " + err.Error())
	}
}

// fieldBytes returns the field as bytes, so secrets held in []byte are
// checked without converting them to strings.
func fieldBytes(fl validator.FieldLevel) []byte {
	field := fl.Field()
	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Uint8 {
		return field.Bytes()
	}
	return []byte(field.String())
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.Match(fieldBytes(fl))
	}
}

func registerCustom(tag, text string, fn validator.Func) {
	must(validate.RegisterValidation(tag, fn))
	overrideTranslation(tag, text)
}

func overrideTranslation(tag, text string) {
	must(validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	))
}

// validateStruct runs struct validation and converts failures into a ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		// Keep the first failing rule per field.
		if _, seen := verr.Fields[fe.Field()]; seen {
			continue
		}
		verr.Fields[fe.Field()] = fe.Translate(translator)
	}
	return verr
}
