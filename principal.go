package warden

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

// RoleAdmin is the role checked by IsAdmin.
const RoleAdmin = "admin"

// Principal is the identity associated with one request. It is
// constructed once per request by the authentication layer, passed
// down unchanged, and discarded at request end. The zero value is the
// unauthenticated principal.
type Principal struct {
	// ID is the principal's unique identifier. Empty for
	// unauthenticated requests.
	ID string

	// Roles holds the principal's role tags.
	Roles []string
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return p.ID != ""
}

// HasRole reports whether the principal carries the given role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// principalCtxKey is the context key for storing the principal.
type principalCtxKey struct{}

// WithPrincipal returns a new context with the principal attached.
// The authentication layer calls this once per request.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext retrieves the principal from the context.
// The second return value reports whether one was attached; when it is
// false the returned principal is the unauthenticated zero value.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok
}

// IsAuthenticated returns a rule that allows access if the principal
// carries an identity. Abstains otherwise, so an unauthenticated
// request falls through to the next rule or the default deny.
func IsAuthenticated() Rule {
	return RuleFunc(func(_ context.Context, r Resolution) error {
		if r.Principal.Authenticated() {
			return Allow
		}
		return Skip
	})
}

// HasRole returns a rule that allows access if the principal carries
// the given role. Abstains otherwise.
func HasRole(role string) Rule {
	return RuleFunc(func(_ context.Context, r Resolution) error {
		if r.Principal.HasRole(role) {
			return Allow
		}
		return Skip
	})
}

// HasAnyRole returns a rule that allows access if the principal
// carries any of the given roles. Abstains otherwise.
func HasAnyRole(roles ...string) Rule {
	return RuleFunc(func(_ context.Context, r Resolution) error {
		for _, role := range roles {
			if r.Principal.HasRole(role) {
				return Allow
			}
		}
		return Skip
	})
}

// IsAdmin returns a rule that allows access if the principal carries
// the admin role.
func IsAdmin() Rule {
	return HasRole(RoleAdmin)
}

// IDExtractor reads the identity an IsMe rule compares against from
// the resolution, typically a field argument or a parent field.
// It returns false when the resolution carries no such identity.
type IDExtractor func(Resolution) (string, bool)

// IsMe returns a rule that allows access if the principal's ID equals
// the ID produced by the extractor. Abstains for unauthenticated
// principals and when the extractor yields nothing.
//
// Example:
//
//	ruleset.Register("Query", "user", warden.IsMe(warden.ArgID("userId")))
//	ruleset.Register("User", "email", warden.IsMe(warden.ParentID("ID")))
func IsMe(extract IDExtractor) Rule {
	return RuleFunc(func(_ context.Context, r Resolution) error {
		if !r.Principal.Authenticated() {
			return Skip
		}
		id, ok := extract(r)
		if !ok || id == "" {
			return Skip
		}
		if id == r.Principal.ID {
			return Allow
		}
		return Skip
	})
}

// ArgID returns an extractor that reads an ID from the named field
// argument.
func ArgID(name string) IDExtractor {
	return func(r Resolution) (string, bool) {
		v, ok := r.Args[name]
		if !ok {
			return "", false
		}
		return stringID(v)
	}
}

// ParentID returns an extractor that reads an ID from the named field
// of the parent object. Map parents are indexed by key; struct parents
// (or pointers to them) are read by exported field name.
func ParentID(field string) IDExtractor {
	return func(r Resolution) (string, bool) {
		switch parent := r.Parent.(type) {
		case nil:
			return "", false
		case map[string]any:
			v, ok := parent[field]
			if !ok {
				return "", false
			}
			return stringID(v)
		}
		rv := reflect.Indirect(reflect.ValueOf(r.Parent))
		if rv.Kind() != reflect.Struct {
			return "", false
		}
		fv := rv.FieldByName(field)
		if !fv.IsValid() || !fv.CanInterface() {
			return "", false
		}
		return stringID(fv.Interface())
	}
}

// stringID normalizes the ID types commonly found in arguments and
// parent objects to their string form.
func stringID(v any) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case fmt.Stringer:
		return id.String(), true
	default:
		return fmt.Sprintf("%v", id), true
	}
}
