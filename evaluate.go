package warden

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// EvalInfo carries the internal detail of one denial. It is handed to
// the evaluation hook only, never to the API consumer.
type EvalInfo struct {
	// Object and Field identify the resolution that was denied.
	Object string
	Field  string

	// Reference is the opaque ID attached to the redacted error
	// returned to the caller, so operators can correlate a response
	// error with this record.
	Reference string

	// Err is the underlying rule failure for denials caused by a rule
	// returning an unexpected error or panicking. Nil for plain
	// denials.
	Err error
}

// EvalHook receives the internal detail of every denial. Hooks must be
// safe for concurrent use.
type EvalHook func(context.Context, EvalInfo)

// Authorize decides the given field resolution. It returns nil when
// the applicable rule allows it, and a redacted *ForbiddenError
// otherwise. The evaluation is fail-closed: a missing rule, a false
// predicate, a rule returning an unexpected error, and a panicking
// rule all produce the same ForbiddenError. The distinction is
// reported to the evaluation hook only.
//
// Authorize performs no I/O, never blocks, and reads only immutable
// registered state; it is safe to call from any number of concurrent
// field resolutions.
func (s *Ruleset) Authorize(ctx context.Context, r Resolution) error {
	decision := s.eval(ctx, s.Lookup(r.Object, r.Field), r)
	switch {
	case errors.Is(decision, Allow):
		return nil
	case decision == nil, errors.Is(decision, Skip), errors.Is(decision, Deny):
		return s.deny(ctx, r, nil)
	default:
		return s.deny(ctx, r, decision)
	}
}

// Allowed reports whether Authorize permits the resolution.
func (s *Ruleset) Allowed(ctx context.Context, r Resolution) bool {
	return s.Authorize(ctx, r) == nil
}

// eval runs the rule, converting panics into plain errors so the
// caller treats them like any other rule failure.
func (s *Ruleset) eval(ctx context.Context, rule Rule, r Resolution) (decision error) {
	defer func() {
		if rec := recover(); rec != nil {
			decision = fmt.Errorf("warden: rule panic: %v", rec)
		}
	}()
	return rule.EvalField(ctx, r)
}

func (s *Ruleset) deny(ctx context.Context, r Resolution, cause error) error {
	ref := uuid.NewString()
	if s.hook != nil {
		info := EvalInfo{Object: r.Object, Field: r.Field, Reference: ref}
		if cause != nil {
			info.Err = &EvaluationError{Object: r.Object, Field: r.Field, Err: cause}
		}
		s.hook(ctx, info)
	}
	return &ForbiddenError{Object: r.Object, Field: r.Field, Reference: ref}
}
