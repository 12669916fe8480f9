// Package validate checks loosely-typed JSON documents against declarative
// shapes: required keys, enum membership, numeric ranges and per-entry rules.
// Validation never computes derived fields from a document that failed.
package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Validation statuses.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
)

// Result is the outcome of validating one document.
type Result struct {
	Status string   `json:"status"`
	Errors []string `json:"errors"`
}

// Valid reports whether no errors were found.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

func newResult(errs []string) Result {
	if len(errs) == 0 {
		return Result{Status: StatusValid, Errors: []string{}}
	}
	return Result{Status: StatusInvalid, Errors: errs}
}

// Rule inspects a document and returns zero or more error messages.
type Rule func(doc map[string]any) []string

// Shape is a declarative document schema.
type Shape struct {
	Required []string
	Rules    []Rule
}

// Validate applies the shape to doc. Every rule runs; errors accumulate.
func (s Shape) Validate(doc map[string]any) Result {
	var errs []string
	for _, key := range s.Required {
		if _, ok := doc[key]; !ok {
			errs = append(errs, "Missing required field: "+key)
		}
	}
	for _, rule := range s.Rules {
		errs = append(errs, rule(doc)...)
	}
	return newResult(errs)
}

// OneOf requires doc[key] to be one of values. A missing key is reported as
// an invalid empty value.
func OneOf(key string, values ...string) Rule {
	allowed := sortedCopy(values)
	return func(doc map[string]any) []string {
		v, _ := doc[key].(string)
		for _, a := range values {
			if v == a {
				return nil
			}
		}
		return []string{fmt.Sprintf("Invalid %s '%s'. Must be one of: %s", key, display(doc[key]), strings.Join(allowed, ", "))}
	}
}

// Array requires doc[key], when present, to be an array of at least min entries.
func Array(key string, min int) Rule {
	return func(doc map[string]any) []string {
		raw, ok := doc[key]
		if !ok {
			raw = []any{}
		}
		arr, ok := raw.([]any)
		if !ok {
			return []string{key + " must be an array"}
		}
		if len(arr) < min {
			return []string{fmt.Sprintf("%s must contain at least %d %s", key, min, plural(min, "entry", "entries"))}
		}
		return nil
	}
}

// NonEmptyArray requires doc[key] to be an array with at least one entry.
func NonEmptyArray(key string) Rule {
	return func(doc map[string]any) []string {
		arr, ok := doc[key].([]any)
		if !ok || len(arr) == 0 {
			return []string{key + " must be a non-empty array"}
		}
		return nil
	}
}

// NumericRange requires doc[key] to be an object with numeric, non-negative
// min and max where min <= max. A string such as "5M-15M" is rejected.
func NumericRange(key string) Rule {
	return func(doc map[string]any) []string {
		raw, ok := doc[key]
		if !ok {
			raw = map[string]any{}
		}
		obj, ok := raw.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("%s must be an object (got %s)", key, typeName(raw))}
		}
		minRaw, hasMin := obj["min"]
		maxRaw, hasMax := obj["max"]
		if !hasMin || minRaw == nil || !hasMax || maxRaw == nil {
			var errs []string
			if !hasMin || minRaw == nil {
				errs = append(errs, key+" missing 'min' field")
			}
			if !hasMax || maxRaw == nil {
				errs = append(errs, key+" missing 'max' field")
			}
			return errs
		}
		lo, okLo := minRaw.(float64)
		hi, okHi := maxRaw.(float64)
		if !okLo || !okHi {
			return []string{key + ".min and max must be numbers"}
		}
		var errs []string
		if lo < 0 {
			errs = append(errs, fmt.Sprintf("%s.min must be non-negative, got %s", key, num(lo)))
		}
		if hi < 0 {
			errs = append(errs, fmt.Sprintf("%s.max must be non-negative, got %s", key, num(hi)))
		}
		if lo > hi {
			errs = append(errs, fmt.Sprintf("%s.min (%s) must be <= max (%s)", key, num(lo), num(hi)))
		}
		return errs
	}
}

// EntryCheck validates one array entry at index i.
type EntryCheck func(i int, entry map[string]any) []string

// Entries requires doc[key], when present, to be an array of objects and
// applies each check to every entry. label prefixes per-entry messages.
func Entries(key, label string, checks ...EntryCheck) Rule {
	return func(doc map[string]any) []string {
		raw, ok := doc[key]
		if !ok {
			return nil
		}
		arr, ok := raw.([]any)
		if !ok {
			return []string{key + " must be an array"}
		}
		var errs []string
		for i, e := range arr {
			entry, ok := e.(map[string]any)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s %d must be an object", label, i))
				continue
			}
			for _, check := range checks {
				errs = append(errs, check(i, entry)...)
			}
		}
		return errs
	}
}

// Count requires doc[key] to have exactly n entries. A missing key counts as
// empty; a non-array value is left to Entries.
func Count(key, noun string, n int) Rule {
	return func(doc map[string]any) []string {
		raw, present := doc[key]
		arr, ok := raw.([]any)
		if present && !ok {
			return nil
		}
		if len(arr) == n {
			return nil
		}
		return []string{fmt.Sprintf("Must have exactly %d %s, got %d", n, noun, len(arr))}
	}
}

// When applies rules only if cond holds for the document.
func When(cond func(doc map[string]any) bool, rules ...Rule) Rule {
	return func(doc map[string]any) []string {
		if !cond(doc) {
			return nil
		}
		var errs []string
		for _, r := range rules {
			errs = append(errs, r(doc)...)
		}
		return errs
	}
}

// FieldEquals is a When condition on a string field.
func FieldEquals(key, value string) func(map[string]any) bool {
	return func(doc map[string]any) bool {
		v, _ := doc[key].(string)
		return v == value
	}
}

// Truthy reports whether v is a present, non-zero JSON value: not null,
// false, 0, "" or an empty array or object.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return num(t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
