// Package forms implements declarative form validation: each form is a
// schema mapping field names to rules, checked by a single generic
// routine. Only the first failing rule per field is reported.
package forms

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type Rule struct {
	Label    string
	Required bool
	MinLen   int
	MaxLen   int
	OneOf    []string
}

type Schema map[string]Rule

// Errors maps field name to the message for its first failing rule.
type Errors map[string]string

// Valid reports whether the checked values passed every rule.
func (e Errors) Valid() bool { return len(e) == 0 }

// Validate checks values against the schema. Values are trimmed before
// length checks so whitespace padding cannot satisfy a minimum, and
// lengths count characters, not bytes.
func (s Schema) Validate(values map[string]string) Errors {
	errs := Errors{}
	for field, rule := range s {
		value := strings.TrimSpace(values[field])

		if rule.Required && value == "" {
			errs[field] = fmt.Sprintf("%s is required", rule.Label)
			continue
		}
		if value == "" {
			continue
		}
		length := utf8.RuneCountInString(value)
		if rule.MinLen > 0 && length < rule.MinLen {
			errs[field] = fmt.Sprintf("%s must be at least %d characters", rule.Label, rule.MinLen)
			continue
		}
		if rule.MaxLen > 0 && length > rule.MaxLen {
			errs[field] = fmt.Sprintf("%s must be at most %d characters", rule.Label, rule.MaxLen)
			continue
		}
		if len(rule.OneOf) > 0 && !contains(rule.OneOf, value) {
			errs[field] = fmt.Sprintf("%s must be one of: %s", rule.Label, strings.Join(rule.OneOf, ", "))
		}
	}
	return errs
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ProjectSchema returns the rules for the create/edit project form.
// allowedTypes is the closed category set as raw strings.
func ProjectSchema(allowedTypes []string) Schema {
	return Schema{
		"title": {
			Label:    "Title",
			Required: true,
			MinLen:   5,
			MaxLen:   100,
		},
		"description": {
			Label:    "Description",
			Required: true,
			MinLen:   10,
		},
		"location": {
			Label:    "Location",
			Required: true,
			MinLen:   5,
		},
		"type": {
			Label:    "Project type",
			Required: true,
			OneOf:    allowedTypes,
		},
	}
}
