package warden_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/warden"
)

// TestRulesetLookup tests the rule resolution precedence.
func TestRulesetLookup(t *testing.T) {
	ctx := context.Background()
	eval := func(s *warden.Ruleset, object, field string) error {
		return s.Lookup(object, field).EvalField(ctx, warden.Resolution{Object: object, Field: field})
	}

	t.Run("empty_ruleset_denies", func(t *testing.T) {
		s := warden.NewRuleset()
		assert.True(t, errors.Is(eval(s, "User", "id"), warden.Deny))
	})

	t.Run("exact_match_wins", func(t *testing.T) {
		s := warden.NewRuleset()
		s.Register("User", "id", warden.AlwaysAllowRule())

		assert.True(t, errors.Is(eval(s, "User", "id"), warden.Allow))
	})

	t.Run("wildcard_covers_unlisted_fields", func(t *testing.T) {
		s := warden.NewRuleset()
		s.Register("User", warden.WildcardField, warden.AlwaysAllowRule())

		assert.True(t, errors.Is(eval(s, "User", "name"), warden.Allow))
		assert.True(t, errors.Is(eval(s, "User", "email"), warden.Allow))
	})

	t.Run("exact_takes_precedence_over_wildcard", func(t *testing.T) {
		s := warden.NewRuleset()
		s.Register("User", "id", warden.AlwaysDenyRule())
		s.Register("User", warden.WildcardField, warden.AlwaysAllowRule())

		assert.True(t, errors.Is(eval(s, "User", "id"), warden.Deny))
		assert.True(t, errors.Is(eval(s, "User", "name"), warden.Allow))
	})

	t.Run("wildcard_does_not_cross_types", func(t *testing.T) {
		s := warden.NewRuleset()
		s.Register("User", warden.WildcardField, warden.AlwaysAllowRule())

		assert.True(t, errors.Is(eval(s, "Room", "name"), warden.Deny))
	})

	t.Run("register_overwrites", func(t *testing.T) {
		s := warden.NewRuleset()
		s.Register("User", "id", warden.AlwaysDenyRule())
		s.Register("User", "id", warden.AlwaysAllowRule())

		assert.True(t, errors.Is(eval(s, "User", "id"), warden.Allow))
	})

	t.Run("register_type_sets_wildcard", func(t *testing.T) {
		s := warden.NewRuleset()
		s.RegisterType("User", warden.AlwaysAllowRule())

		assert.True(t, errors.Is(eval(s, "User", "anything"), warden.Allow))
	})

	t.Run("lookup_never_returns_nil", func(t *testing.T) {
		s := warden.NewRuleset()
		assert.NotNil(t, s.Lookup("Nope", "nope"))
	})
}
