package warden

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry resolves the rule names used in rule files. A new registry
// is pre-seeded with the built-in rules "allow", "deny",
// "isAuthenticated" and "isAdmin"; callers add application rules
// (argument-aware IsMe variants, custom role checks) under their own
// names before loading.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry returns a registry seeded with the built-in rules.
func NewRegistry() *Registry {
	return &Registry{rules: map[string]Rule{
		"allow":           AlwaysAllowRule(),
		"deny":            AlwaysDenyRule(),
		"isAuthenticated": IsAuthenticated(),
		"isAdmin":         IsAdmin(),
	}}
}

// Add registers a named rule, overwriting any previous rule with the
// same name.
func (reg *Registry) Add(name string, rule Rule) *Registry {
	reg.rules[name] = rule
	return reg
}

// RuleExpr is a YAML value that is either a single rule name or a
// sequence of rule names. A sequence is resolved to Race over the
// named rules in order.
type RuleExpr []string

// UnmarshalYAML implements yaml.Unmarshaler for RuleExpr.
func (e *RuleExpr) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*e = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*e = list
		return nil
	default:
		return fmt.Errorf("expected rule name or list of rule names, got %v", node.Kind)
	}
}

// resolve binds the expression to registered rules. Unknown names are
// an error so a misspelled rule fails at initialization rather than
// silently denying (or worse, allowing) at request time.
func (e RuleExpr) resolve(reg *Registry, object, field string) (Rule, error) {
	if len(e) == 0 {
		return nil, fmt.Errorf("warden: empty rule for %s.%s", object, field)
	}
	rules := make([]Rule, 0, len(e))
	for _, name := range e {
		rule, ok := reg.rules[name]
		if !ok {
			return nil, fmt.Errorf("warden: unknown rule %q for %s.%s", name, object, field)
		}
		rules = append(rules, rule)
	}
	if len(rules) == 1 {
		return rules[0], nil
	}
	return Race(rules...), nil
}

// ParseRules builds a Ruleset from a YAML document mapping type names
// to field names to rule expressions:
//
//	User:
//	  "*": isAuthenticated
//	  email: [isAdmin, isMeByParent]
//	Mutation:
//	  createRoom: isAuthenticated
//
// A scalar value names a single rule; a sequence races the named rules
// in order. The field "*" sets the type-level fallback.
func ParseRules(data []byte, reg *Registry, opts ...Option) (*Ruleset, error) {
	var doc map[string]map[string]RuleExpr
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}
	s := NewRuleset(opts...)
	for object, fields := range doc {
		for field, expr := range fields {
			rule, err := expr.resolve(reg, object, field)
			if err != nil {
				return nil, err
			}
			s.Register(object, field, rule)
		}
	}
	return s, nil
}

// LoadRules reads and parses a YAML rule file. Unlike parsing, a
// missing file is an error: an absent rule table would deny every
// field, which is a deployment mistake worth failing on at startup.
func LoadRules(path string, reg *Registry, opts ...Option) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return ParseRules(data, reg, opts...)
}
