// Package form validates submitted registration answers against the field
// definitions of a template.
//
// A template's fields are compiled once into a Schema: each field type maps to
// a fixed list of rule kinds, and only the rules whose bounds are configured
// are kept. Validate then walks the fields in declared order and reports at
// most one message per field (the first rule that fails).
package form

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/council-xenith/internal/domain"
	"github.com/samber/lo"
)

type ruleKind int

const (
	ruleLength ruleKind = iota
	ruleNumeric
	rulePattern
	ruleEmailDomain
)

var ruleTable = map[domain.FieldType][]ruleKind{
	domain.FieldText:        {ruleLength, rulePattern},
	domain.FieldTextarea:    {ruleLength, rulePattern},
	domain.FieldPhone:       {ruleLength, rulePattern},
	domain.FieldURL:         {ruleLength, rulePattern},
	domain.FieldDate:        {ruleLength, rulePattern},
	domain.FieldSelect:      {ruleLength, rulePattern},
	domain.FieldRadio:       {ruleLength, rulePattern},
	domain.FieldEmail:       {ruleLength, rulePattern, ruleEmailDomain},
	domain.FieldNumber:      {ruleNumeric, rulePattern},
	domain.FieldCheckbox:    {},
	domain.FieldMultiSelect: {},
	domain.FieldFile:        {},
}

// KnownType reports whether t is a supported field type.
func KnownType(t domain.FieldType) bool {
	_, ok := ruleTable[t]
	return ok
}

// Options configures schema compilation.
type Options struct {
	// AllowedDomain is the domain accepted by email fields restricted with
	// domain.EmailRestrictionDomain, e.g. "iitp.ac.in".
	AllowedDomain string
}

type rule func(label string, v any) (string, bool)

type field struct {
	key      string
	label    string
	typ      domain.FieldType
	required bool
	rules    []rule
}

// Schema is a compiled, immutable template. Safe for concurrent use.
type Schema struct {
	fields []field
}

// Compile resolves the rule list of every field. It rejects empty or
// duplicate keys, unknown types and patterns that do not compile.
func Compile(defs []domain.FieldDefinition, opts Options) (*Schema, error) {
	keys := lo.Map(defs, func(d domain.FieldDefinition, _ int) string { return d.Key })
	if dups := lo.FindDuplicates(keys); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate field key %q: %w", dups[0], domain.ErrBadRequest)
	}

	s := &Schema{fields: make([]field, 0, len(defs))}
	for _, d := range defs {
		if strings.TrimSpace(d.Key) == "" {
			return nil, fmt.Errorf("field key must not be empty: %w", domain.ErrBadRequest)
		}
		kinds, ok := ruleTable[d.Type]
		if !ok {
			return nil, fmt.Errorf("field %q has unknown type %q: %w", d.Key, d.Type, domain.ErrBadRequest)
		}
		f := field{key: d.Key, label: d.Label, typ: d.Type, required: d.Required}
		if f.label == "" {
			f.label = d.Key
		}
		for _, k := range kinds {
			r, err := buildRule(k, d, opts)
			if err != nil {
				return nil, err
			}
			if r != nil {
				f.rules = append(f.rules, r)
			}
		}
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// Validate returns fieldKey -> message for every field that fails. An empty
// map means the values are acceptable. Keys in values that the schema does
// not declare are ignored.
func (s *Schema) Validate(values map[string]any) map[string]string {
	errs := make(map[string]string)
	for _, f := range s.fields {
		v, present := values[f.key]
		if !present || isEmpty(v) {
			if f.required {
				errs[f.key] = f.label + " is required"
			}
			continue
		}
		for _, r := range f.rules {
			if msg, failed := r(f.label, v); failed {
				errs[f.key] = msg
				break
			}
		}
	}
	return errs
}

// Keys returns the declared field keys in order.
func (s *Schema) Keys() []string {
	return lo.Map(s.fields, func(f field, _ int) string { return f.key })
}

// EmailValue returns the lower-cased value of the first email-typed field,
// or "" when there is none.
func (s *Schema) EmailValue(values map[string]any) string {
	for _, f := range s.fields {
		if f.typ != domain.FieldEmail {
			continue
		}
		str, _ := values[f.key].(string)
		return strings.ToLower(strings.TrimSpace(str))
	}
	return ""
}

func buildRule(k ruleKind, d domain.FieldDefinition, opts Options) (rule, error) {
	val := d.Validation
	if val == nil {
		val = &domain.FieldValidation{}
	}
	switch k {
	case ruleLength:
		if val.MinLength == nil && val.MaxLength == nil {
			return nil, nil
		}
		return lengthRule(val.MinLength, val.MaxLength, val.CustomMessage), nil
	case ruleNumeric:
		return numericRule(val.Min, val.Max), nil
	case rulePattern:
		if val.Pattern == "" {
			return nil, nil
		}
		re, err := regexp.Compile(val.Pattern)
		if err != nil {
			return nil, fmt.Errorf("field %q has invalid pattern: %w", d.Key, domain.ErrBadRequest)
		}
		return patternRule(re, val.CustomMessage), nil
	case ruleEmailDomain:
		if d.EmailRestriction != domain.EmailRestrictionDomain {
			return nil, nil
		}
		if opts.AllowedDomain == "" {
			return nil, fmt.Errorf("field %q restricts email domain but none is configured", d.Key)
		}
		return emailDomainRule(strings.ToLower(opts.AllowedDomain)), nil
	}
	return nil, nil
}

func lengthRule(minLen, maxLen *int, custom string) rule {
	return func(label string, v any) (string, bool) {
		s, ok := v.(string)
		if !ok {
			return "", false
		}
		n := utf8.RuneCountInString(s)
		if minLen != nil && n < *minLen {
			return orDefault(custom, fmt.Sprintf("%s must be at least %d characters", label, *minLen)), true
		}
		if maxLen != nil && n > *maxLen {
			return orDefault(custom, fmt.Sprintf("%s must be at most %d characters", label, *maxLen)), true
		}
		return "", false
	}
}

// numericRule never uses the field's custom message.
func numericRule(minV, maxV *float64) rule {
	return func(label string, v any) (string, bool) {
		n, ok := toNumber(v)
		if !ok {
			return label + " must be a number", true
		}
		if minV != nil && n < *minV {
			return fmt.Sprintf("%s must be at least %s", label, formatNumber(*minV)), true
		}
		if maxV != nil && n > *maxV {
			return fmt.Sprintf("%s must be at most %s", label, formatNumber(*maxV)), true
		}
		return "", false
	}
}

func patternRule(re *regexp.Regexp, custom string) rule {
	return func(label string, v any) (string, bool) {
		s, ok := v.(string)
		if !ok || re.MatchString(s) {
			return "", false
		}
		return orDefault(custom, "Invalid "+label+" format"), true
	}
}

func emailDomainRule(allowed string) rule {
	suffix := "@" + allowed
	return func(_ string, v any) (string, bool) {
		s, ok := v.(string)
		if !ok {
			return "", false
		}
		if strings.HasSuffix(strings.ToLower(strings.TrimSpace(s)), suffix) {
			return "", false
		}
		return "Only " + suffix + " email addresses are allowed", true
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDefault(custom, fallback string) string {
	if custom != "" {
		return custom
	}
	return fallback
}
