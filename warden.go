// Package warden provides declarative field-level authorization for
// GraphQL servers: a read-only rule table keyed by type and field,
// predicate rules over the requesting principal, and an evaluator that
// decides each field resolution fail-closed.
package warden

import (
	"context"
	"errors"
	"fmt"
)

// Decision sentinel errors.
//
// These errors are used as return values from rules to indicate how
// evaluation should proceed. Use errors.Is() to check for these values:
//
//	if errors.Is(err, warden.Allow) { ... }
//	if errors.Is(err, warden.Deny) { ... }
//	if errors.Is(err, warden.Skip) { ... }
var (
	// Allow may be returned by rules to indicate that the field
	// resolution is permitted. Evaluation stops on the first Allow.
	Allow = errors.New("warden: allow rule")

	// Deny may be returned by rules to indicate that the field
	// resolution is rejected.
	Deny = errors.New("warden: deny rule")

	// Skip may be returned by rules to abstain from a decision and
	// hand evaluation to the next rule. A rule returning nil is
	// equivalent to returning Skip.
	Skip = errors.New("warden: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
// The returned error wraps Allow and can be checked with errors.Is(err, Allow).
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
// The returned error wraps Deny and can be checked with errors.Is(err, Deny).
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
// The returned error wraps Skip and can be checked with errors.Is(err, Skip).
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Resolution describes a single field resolution: the object type and
// field being resolved, the parent value, the field arguments, and the
// principal making the request. It is created fresh per resolution,
// owned exclusively by the calling task, and never mutated by rules.
type Resolution struct {
	// Object is the GraphQL type name of the object owning the field
	// (e.g. "User", "Query", "Mutation").
	Object string

	// Field is the field name being resolved.
	Field string

	// Parent is the parent object being resolved, if any. Root fields
	// have a nil parent.
	Parent any

	// Args holds the field arguments.
	Args map[string]any

	// Principal is the identity associated with the request.
	Principal Principal
}

// Arg returns the named field argument.
func (r Resolution) Arg(name string) (any, bool) {
	v, ok := r.Args[name]
	return v, ok
}

// Rule decides whether one field resolution may proceed. Rules return
// Allow, Deny, Skip, or nil (equivalent to Skip). Rules must be pure:
// evaluation order and count are not guaranteed beyond short-circuit
// on the first Allow.
type Rule interface {
	EvalField(ctx context.Context, r Resolution) error
}

// RuleFunc type is an adapter which allows the use of ordinary
// functions as rules.
type RuleFunc func(context.Context, Resolution) error

// EvalField returns f(ctx, r).
func (f RuleFunc) EvalField(ctx context.Context, r Resolution) error {
	return f(ctx, r)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() Rule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() Rule {
	return fixedDecision{Deny}
}

// ContextRule creates a rule from a context evaluation function.
// The provided function receives the context and should return Allow,
// Deny, Skip, or nil. Returning nil is equivalent to returning Skip.
func ContextRule(eval func(context.Context) error) Rule {
	return contextDecision{eval}
}

// Race combines rules as a logical OR: rules are evaluated left to
// right and the first Allow wins. A Deny or Skip from a sub-rule means
// "not this one" and evaluation continues; if every rule falls
// through, Race denies. An unexpected error from a sub-rule stops
// evaluation and is propagated so the evaluator can fail closed.
func Race(rules ...Rule) Rule {
	return RuleFunc(func(ctx context.Context, r Resolution) error {
		for _, rule := range rules {
			switch decision := rule.EvalField(ctx, r); {
			case errors.Is(decision, Allow):
				return Allow
			case decision == nil, errors.Is(decision, Skip), errors.Is(decision, Deny):
			default:
				return decision
			}
		}
		return Deny
	})
}

// Chain combines rules as a policy chain: rules are evaluated left to
// right and the first non-Skip decision wins. If every rule abstains,
// Chain abstains too.
func Chain(rules ...Rule) Rule {
	return RuleFunc(func(ctx context.Context, r Resolution) error {
		for _, rule := range rules {
			switch decision := rule.EvalField(ctx, r); {
			case decision == nil, errors.Is(decision, Skip):
			default:
				return decision
			}
		}
		return Skip
	})
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalField(context.Context, Resolution) error {
	return f.decision
}

type contextDecision struct {
	eval func(context.Context) error
}

func (c contextDecision) EvalField(ctx context.Context, _ Resolution) error {
	return c.eval(ctx)
}
