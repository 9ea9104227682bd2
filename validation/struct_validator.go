package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/restkit/errors"
)

// FieldError names one failing field of a validated struct.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	engine     *validator.Validate
	engineOnce sync.Once

	rulesMu sync.RWMutex
	// messages maps a tag to its message; a trailing space means the
	// tag parameter is appended.
	messages = map[string]string{
		"required": "is required",
		"urlshape": "must be a valid URL",
		"min":      "must be at least ",
		"max":      "must be at most ",
		"oneof":    "must be one of: ",
	}
)

func instance() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(fieldName)
		_ = engine.RegisterValidation("urlshape", stringRule(IsURL))
	})
	return engine
}

// fieldName reports a field by its mapstructure key so messages match the
// configuration file the user wrote.
func fieldName(fld reflect.StructField) string {
	tag, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
	if tag != "" && tag != "-" {
		return tag
	}
	return snake(fld.Name)
}

// RegisterRule adds a string rule under tag. message, when non-empty, is
// used for failures of that tag.
func RegisterRule(tag string, fn func(string) bool, message ...string) error {
	if err := instance().RegisterValidation(tag, stringRule(fn)); err != nil {
		return err
	}
	if len(message) > 0 && message[0] != "" {
		rulesMu.Lock()
		messages[tag] = message[0]
		rulesMu.Unlock()
	}
	return nil
}

func stringRule(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		return fn(fl.Field().String())
	}
}

// Validate checks s against its validate tags. Failures come back as a
// single INVALID_INPUT error listing every field under the "fields" detail.
func Validate(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	failures, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	fields := make([]FieldError, len(failures))
	parts := make([]string, len(failures))
	for i, f := range failures {
		fields[i] = FieldError{Field: f.Field(), Message: describe(f)}
		parts[i] = fields[i].Field + ": " + fields[i].Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}

// Var checks a single value against a tag expression.
func Var(field string, value any, tag string) error {
	err := instance().Var(value, tag)
	if err == nil {
		return nil
	}
	return errors.Validation(field+" is invalid").WithDetail("field", field).WithCause(err)
}

func describe(f validator.FieldError) string {
	rulesMu.RLock()
	msg, ok := messages[f.Tag()]
	rulesMu.RUnlock()
	if !ok {
		return "is invalid"
	}
	if strings.HasSuffix(msg, " ") {
		return msg + f.Param()
	}
	return msg
}

// snake lowercases a Go identifier into snake_case, keeping acronym runs
// together: BaseURL becomes base_url, URLPath becomes url_path.
func snake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
