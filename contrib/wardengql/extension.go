// Package wardengql integrates warden with gqlgen servers. The
// extension authorizes every field resolution against a warden
// ruleset; denied fields resolve to null with a redacted FORBIDDEN
// error attached to the response, and sibling resolutions continue.
package wardengql

import (
	"context"
	"errors"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/syssam/warden"
)

// ErrorCode is the extensions code attached to denied fields, per the
// GraphQL response envelope convention.
const ErrorCode = "FORBIDDEN"

// Extension enforces a warden ruleset on every field resolution.
//
// Usage:
//
//	srv := handler.New(NewExecutableSchema(cfg))
//	ex, err := wardengql.New(ruleset)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv.Use(ex)
//
// The request principal is read with warden.PrincipalFromContext; the
// authentication layer must attach it with warden.WithPrincipal before
// execution starts. Requests without a principal are evaluated as
// unauthenticated.
type Extension struct {
	ruleset *warden.Ruleset

	// checkIntrospection also authorizes __-prefixed fields. Off by
	// default: introspection fields are execution machinery, not data.
	checkIntrospection bool

	// message overrides the redacted error message.
	message string
}

// ExtensionOption is a function that configures the Extension.
type ExtensionOption func(*Extension) error

// New creates a new field authorization extension for the given
// ruleset.
func New(ruleset *warden.Ruleset, opts ...ExtensionOption) (*Extension, error) {
	if ruleset == nil {
		return nil, errors.New("wardengql: nil ruleset")
	}
	ex := &Extension{ruleset: ruleset, message: "forbidden"}
	for _, opt := range opts {
		if err := opt(ex); err != nil {
			return nil, err
		}
	}
	return ex, nil
}

// WithIntrospectionChecks makes the extension authorize introspection
// fields (__typename, __schema, __type) like any other field. By
// default they bypass the ruleset.
func WithIntrospectionChecks() ExtensionOption {
	return func(e *Extension) error {
		e.checkIntrospection = true
		return nil
	}
}

// WithMessage overrides the message of the redacted error attached to
// denied fields. The message is the same for every denial; it must not
// depend on why the field was denied.
func WithMessage(message string) ExtensionOption {
	return func(e *Extension) error {
		if message == "" {
			return errors.New("wardengql: empty message")
		}
		e.message = message
		return nil
	}
}

var _ interface {
	graphql.HandlerExtension
	graphql.FieldInterceptor
} = (*Extension)(nil)

// ExtensionName returns the extension name.
func (e *Extension) ExtensionName() string {
	return "FieldAuthorization"
}

// Validate implements graphql.HandlerExtension.
func (e *Extension) Validate(graphql.ExecutableSchema) error {
	return nil
}

// InterceptField authorizes the field resolution before running its
// resolver. On deny it returns a nil result and the redacted error;
// gqlgen substitutes null for the field value, records the error, and
// keeps resolving sibling fields.
func (e *Extension) InterceptField(ctx context.Context, next graphql.Resolver) (any, error) {
	fc := graphql.GetFieldContext(ctx)
	if fc == nil {
		return next(ctx)
	}
	field := fc.Field.Name
	if !e.checkIntrospection && strings.HasPrefix(field, "__") {
		return next(ctx)
	}
	r := warden.Resolution{
		Object: fc.Object,
		Field:  field,
		Args:   fc.Args,
	}
	if fc.Parent != nil {
		r.Parent = fc.Parent.Result
	}
	if p, ok := warden.PrincipalFromContext(ctx); ok {
		r.Principal = p
	}
	if err := e.ruleset.Authorize(ctx, r); err != nil {
		return nil, e.forbidden(ctx, err)
	}
	return next(ctx)
}

// forbidden builds the redacted response error. The reference ID lets
// operators correlate the response with hook-logged detail without
// telling the consumer why the field was denied.
func (e *Extension) forbidden(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := &gqlerror.Error{
		Message:    e.message,
		Path:       graphql.GetPath(ctx),
		Extensions: map[string]any{"code": ErrorCode},
	}
	var fe *warden.ForbiddenError
	if errors.As(err, &fe) && fe.Reference != "" {
		gqlErr.Extensions["reference"] = fe.Reference
	}
	return gqlErr
}
