package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/pkg/form"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var reSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// v and trans are package-level singletons initialised in init().
var (
	v     *validator.Validate
	trans ut.Translator
)

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLang := en.New()
	trans, _ = ut.New(enLang, enLang).GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic("validate: register translations: " + err.Error())
	}

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return reSlug.MatchString(fl.Field().String())
	})
	_ = v.RegisterTranslation("slug", trans,
		func(ut ut.Translator) error {
			return ut.Add("slug", "{0} may contain only lowercase letters, digits and single dashes", false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), fe.Field())
			return t
		},
	)

	_ = v.RegisterValidation("fieldtype", func(fl validator.FieldLevel) bool {
		return form.KnownType(domain.FieldType(fl.Field().String()))
	})
	_ = v.RegisterTranslation("fieldtype", trans,
		func(ut ut.Translator) error {
			return ut.Add("fieldtype", "{0} is not a supported field type", false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), fe.Field())
			return t
		},
	)
}

// Struct validates s using its validate tags. Failures are returned as a
// *domain.ValidationError keyed by the JSON path of each field.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe.Namespace())] = fe.Translate(trans)
	}
	return domain.NewValidationError(fields)
}

// fieldPath drops the top-level struct name from a validator namespace,
// e.g. "TemplateInput.fields[0].key" -> "fields[0].key".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
