// Package inputval validates request payloads with waffle/pantry/validate
// and turns failures into Portuguese messages for the UI.
//
// Define an input struct with validate tags and an optional label:
//
//	type loginInput struct {
//	    Email    string `json:"email" validate:"required,email" label:"E-mail"`
//	    Password string `json:"password" validate:"required" label:"Senha"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    jsonutil.BadRequest(w, res.First())
//	    return
//	}
package inputval

import (
	"encoding/json"
	"net/mail"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/locale"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/normalize"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Result holds validation results.
type Result struct {
	Errors []FieldError
}

// FieldError is the failure of one field.
type FieldError struct {
	Field   string
	Label   string
	Rule    string
	Message string
}

// HasErrors reports whether any field failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

// Failed reports whether any error came from one of rules.
func (r *Result) Failed(rules ...string) bool {
	for _, e := range r.Errors {
		if slices.Contains(rules, e.Rule) {
			return true
		}
	}
	return false
}

// FailedField reports whether field failed any rule. field is matched
// against the Go or json name, ignoring case.
func (r *Result) FailedField(field string) bool {
	for _, e := range r.Errors {
		if strings.EqualFold(e.Field, field) {
			return true
		}
	}
	return false
}

// All returns every message joined with "; ".
func (r *Result) All() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

var (
	customValidator *validate.Validator
	validatorOnce   sync.Once
)

// getValidator collects every failure rather than stopping at the first,
// so handlers can rank missing fields above malformed ones.
//
// Numeric rules accept Go numbers and raw JSON (numbers or numeric
// strings, as forms send them). Rules other than present and nonempty
// pass an absent raw value; pair them with present when the field is
// mandatory.
func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		customValidator = validate.New()

		customValidator.RegisterRuleFunc("present", func(value any) bool {
			raw, ok := rawOf(value)
			return ok && normalize.Present(raw)
		}, "present")

		customValidator.RegisterRuleFunc("nonempty", func(value any) bool {
			v := reflect.ValueOf(value)
			switch v.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				return v.Len() > 0
			}
			return false
		}, "nonempty")

		// isodate: YYYY-MM-DD calendar date
		customValidator.RegisterRuleFunc("isodate", func(value any) bool {
			if raw, ok := rawOf(value); ok {
				if !normalize.Present(raw) {
					return true
				}
				var s string
				return json.Unmarshal(raw, &s) == nil && IsISODate(strings.TrimSpace(s))
			}
			s, ok := value.(string)
			return ok && IsISODate(strings.TrimSpace(s))
		}, "isodate")

		// monthkey: YYYY-MM
		customValidator.RegisterRuleFunc("monthkey", func(value any) bool {
			s, ok := value.(string)
			return ok && IsMonthKey(s)
		}, "monthkey")

		customValidator.RegisterRuleFunc("nonnegative", numberRule(func(f float64) bool { return f >= 0 }), "nonnegative")
		customValidator.RegisterRuleFunc("positive", numberRule(func(f float64) bool { return f > 0 }), "positive")

		// count: whole number >= 0
		customValidator.RegisterRuleFunc("count", wholeRule(func(n int) bool { return n >= 0 }), "count")
		// poscount: whole number > 0
		customValidator.RegisterRuleFunc("poscount", wholeRule(func(n int) bool { return n > 0 }), "poscount")
	})
	return customValidator
}

func rawOf(value any) (json.RawMessage, bool) {
	switch v := value.(type) {
	case json.RawMessage:
		return v, true
	case []byte:
		return v, true
	}
	return nil, false
}

func numberRule(ok func(float64) bool) func(any) bool {
	return func(value any) bool {
		if raw, isRaw := rawOf(value); isRaw {
			if !normalize.Present(raw) {
				return true
			}
			f, valid := normalize.Float(raw)
			return valid && ok(f)
		}
		switch n := value.(type) {
		case int:
			return ok(float64(n))
		case int64:
			return ok(float64(n))
		case float64:
			return ok(n)
		}
		return false
	}
}

func wholeRule(ok func(int) bool) func(any) bool {
	return func(value any) bool {
		if raw, isRaw := rawOf(value); isRaw {
			if !normalize.Present(raw) {
				return true
			}
			n, valid := normalize.Int(raw)
			return valid && ok(n)
		}
		switch n := value.(type) {
		case int:
			return ok(n)
		case int64:
			return ok(int(n))
		}
		return false
	}
}

// Validate validates a struct.
//
// Built-in rules: required, email, oneof, min, max.
// Custom rules: present, nonempty, isodate, monthkey, nonnegative,
// positive, count, poscount.
func Validate(s any) *Result {
	result := &Result{}

	err := getValidator().Struct(s)
	if err == nil {
		return result
	}

	labels := getFieldLabels(s)

	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			label := labels[e.Field]
			if label == "" {
				label = e.Field
			}
			result.Errors = append(result.Errors, FieldError{
				Field:   e.Field,
				Label:   label,
				Rule:    e.Rule,
				Message: formatMessage(label, e.Rule, e.Param),
			})
		}
	} else {
		result.Errors = append(result.Errors, FieldError{Message: "Dados inválidos."})
	}

	return result
}

// getFieldLabels maps json field names to their label tags.
func getFieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		fieldName := field.Name
		if jsonTag := field.Tag.Get("json"); jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" && parts[0] != "-" {
				fieldName = parts[0]
			}
		}

		if label := field.Tag.Get("label"); label != "" {
			labels[fieldName] = label
			labels[field.Name] = label
		}
	}

	return labels
}

func formatMessage(label, rule, param string) string {
	switch rule {
	case "required", "present":
		return label + " é obrigatório."
	case "nonempty":
		return label + " deve ter ao menos um item."
	case "email":
		return "Informe um e-mail válido."
	case "oneof", "enum":
		return label + " deve ser um de: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " deve ter pelo menos " + param + " caracteres."
	case "max":
		return label + " deve ter no máximo " + param + " caracteres."
	case "isodate":
		return label + " deve estar no formato AAAA-MM-DD."
	case "monthkey":
		return label + " deve estar no formato AAAA-MM."
	case "nonnegative":
		return label + " não pode ser negativo."
	case "positive":
		return label + " deve ser maior que zero."
	case "count":
		return label + " deve ser um número inteiro não negativo."
	case "poscount":
		return label + " deve ser um número inteiro maior que zero."
	default:
		return label + " é inválido."
	}
}

// IsValidEmail reports whether email is a bare RFC 5322 address.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// ParseAddress also accepts "Name <email>".
	return addr.Address == email
}

// IsISODate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsISODate(s string) bool {
	if len(s) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// IsMonthKey reports whether s is a YYYY-MM month key.
func IsMonthKey(s string) bool {
	_, err := locale.ParseKey(s)
	return err == nil
}
