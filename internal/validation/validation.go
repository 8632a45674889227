package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violations maps a field name to a message code. Codes are translated for
// display by the i18n package; they are stable API surface.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Merge copies all violations from other into v.
func (v Violations) Merge(other Violations) {
	for field, code := range other {
		v[field] = code
	}
}

// Basic validators

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct runs validator/v10 struct-tag validation on s and converts any
// failures into Violations keyed by the field's json name.
func Struct(s any) Violations {
	v := make(Violations)
	err := validate.Struct(s)
	if err == nil {
		return v
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		v["_"] = "invalid_payload"
		return v
	}
	for _, fe := range errs {
		v[fieldName(fe)] = codeFor(fe.Tag())
	}
	return v
}

func fieldName(fe validator.FieldError) string {
	// validator reports Go field names; expose snake_case like the JSON API
	return toSnake(fe.Field())
}

func codeFor(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "email":
		return "invalid_email"
	case "gt":
		return "must_be_positive"
	case "gte":
		return "must_not_be_negative"
	case "min", "max", "lte":
		return "out_of_range"
	case "oneof":
		return "invalid_value"
	default:
		return "invalid_value"
	}
}

func toSnake(s string) string {
	var b strings.Builder
	prevUpper := true
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			if !prevUpper {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			prevUpper = true
			continue
		}
		b.WriteRune(r)
		prevUpper = false
	}
	return b.String()
}
