package collection

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// RuleKind names a schema rule.
type RuleKind string

const (
	RuleType     RuleKind = "type"
	RuleRequired RuleKind = "required"
	RuleDefault  RuleKind = "default"
	RuleTrim     RuleKind = "trim"
	RuleToLower  RuleKind = "toLower"
	RuleToUpper  RuleKind = "toUpper"
)

// Type names accepted by the "type" rule.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeDate    = "date"
)

// Rule is one entry of an attribute's ordered rule list.
type Rule struct {
	Kind  RuleKind
	Value any
}

// Type, Required, Default, Trim, ToLower and ToUpper build rules for schema literals.
func Type(name string) Rule { return Rule{Kind: RuleType, Value: name} }
func Required() Rule        { return Rule{Kind: RuleRequired, Value: true} }
func Default(v any) Rule    { return Rule{Kind: RuleDefault, Value: v} }
func Trim() Rule            { return Rule{Kind: RuleTrim, Value: true} }
func ToLower() Rule         { return Rule{Kind: RuleToLower, Value: true} }
func ToUpper() Rule         { return Rule{Kind: RuleToUpper, Value: true} }

// ValidationError reports the rule that rejected an attribute value.
type ValidationError struct {
	Attribute string
	Rule      RuleKind
	Value     any
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %v for %q: rule %s: %s", e.Value, e.Attribute, e.Rule, e.Reason)
}

// Apply resolves the final value of one attribute. An empty provided value is
// replaced by the declared default first, then every rule runs in declaration
// order. The first failing rule aborts with a *ValidationError.
func Apply(attribute string, provided any, rules []Rule) (any, error) {
	value := provided
	if isEmpty(value) {
		for _, r := range rules {
			if r.Kind == RuleDefault {
				value = cloneValue(r.Value)
				break
			}
		}
	}

	for _, r := range rules {
		next, reason := applyRule(r, value)
		if reason != "" {
			return nil, &ValidationError{Attribute: attribute, Rule: r.Kind, Value: provided, Reason: reason}
		}
		value = next
	}
	return value, nil
}

func applyRule(r Rule, value any) (any, string) {
	switch r.Kind {
	case RuleType:
		name, _ := r.Value.(string)
		if !matchesType(value, name) {
			return nil, "expected " + name
		}
		return value, ""
	case RuleRequired:
		if enabled(r) && isBlank(value) {
			return nil, "value is required"
		}
		return value, ""
	case RuleDefault:
		return value, ""
	case RuleTrim, RuleToLower, RuleToUpper:
		if !enabled(r) {
			return value, ""
		}
		s, ok := value.(string)
		if !ok {
			return nil, "string transform on non-string value"
		}
		switch r.Kind {
		case RuleTrim:
			return strings.TrimSpace(s), ""
		case RuleToLower:
			return strings.ToLower(s), ""
		default:
			return strings.ToUpper(s), ""
		}
	}
	return nil, "unknown rule"
}

func enabled(r Rule) bool {
	b, ok := r.Value.(bool)
	return ok && b
}

func matchesType(value any, name string) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	switch strings.ToLower(name) {
	case TypeString:
		return rv.Kind() == reflect.String
	case TypeNumber:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		return false
	case TypeBoolean:
		return rv.Kind() == reflect.Bool
	case TypeArray:
		return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
	case TypeObject:
		return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
	case TypeDate:
		return isDate(value)
	}
	return false
}

func isDate(value any) bool {
	switch v := value.(type) {
	case time.Time:
		return !v.IsZero()
	case *time.Time:
		return v != nil && !v.IsZero()
	case string:
		if _, err := time.Parse(time.RFC3339, v); err == nil {
			return true
		}
		_, err := time.Parse(time.DateOnly, v)
		return err == nil
	}
	return false
}

// isEmpty reports whether a provided value counts as absent for default substitution.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.Len() == 0
	case reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isBlank(value any) bool {
	if isEmpty(value) {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return strings.TrimSpace(rv.String()) == ""
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

// cloneValue deep-copies slices and maps (including ones nested inside them)
// so stored documents never share backing storage with schema defaults,
// caller input or returned copies. Other values are returned as is.
func cloneValue(v any) any {
	if v == nil {
		return nil
	}
	return deepCopy(reflect.ValueOf(v)).Interface()
}

func deepCopy(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(deepCopy(rv.Index(i)))
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Interface:
		if rv.IsNil() {
			return rv
		}
		return deepCopy(rv.Elem())
	}
	return rv
}
