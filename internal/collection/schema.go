package collection

import (
	"fmt"
	"strings"
)

// Attribute declares one document field and its ordered rule list.
type Attribute struct {
	Name  string
	Rules []Rule
}

// Schema is the ordered attribute list of a collection.
type Schema []Attribute

// Attributes is the raw attribute data passed to writes and stored on documents.
type Attributes map[string]any

var knownTypes = map[string]bool{
	TypeString:  true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeArray:   true,
	TypeObject:  true,
	TypeDate:    true,
}

// Validate rejects schemas with duplicate or empty attribute names, unknown
// rule kinds, unknown type names or non-boolean flag rules.
func (s Schema) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, a := range s {
		if a.Name == "" {
			return fmt.Errorf("schema: attribute name is empty")
		}
		if seen[a.Name] {
			return fmt.Errorf("schema: duplicate attribute %q", a.Name)
		}
		seen[a.Name] = true
		for _, r := range a.Rules {
			switch r.Kind {
			case RuleType:
				name, ok := r.Value.(string)
				if !ok || !knownTypes[strings.ToLower(name)] {
					return fmt.Errorf("schema: attribute %q: unknown type %v", a.Name, r.Value)
				}
			case RuleRequired, RuleTrim, RuleToLower, RuleToUpper:
				if _, ok := r.Value.(bool); !ok {
					return fmt.Errorf("schema: attribute %q: rule %s expects a bool", a.Name, r.Kind)
				}
			case RuleDefault:
			default:
				return fmt.Errorf("schema: attribute %q: unknown rule %q", a.Name, r.Kind)
			}
		}
	}
	return nil
}

// Names returns the attribute names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s))
	for _, a := range s {
		out = append(out, a.Name)
	}
	return out
}
