package warden_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/warden"
)

// TestForbiddenError tests the redacted denial error.
func TestForbiddenError(t *testing.T) {
	err := &warden.ForbiddenError{Object: "User", Field: "email", Reference: "ref-1"}

	t.Run("message_is_redacted", func(t *testing.T) {
		// The message must not say why: same text for missing rules,
		// false predicates and internal failures.
		assert.Equal(t, "warden: forbidden", err.Error())
		assert.NotContains(t, err.Error(), "User")
		assert.NotContains(t, err.Error(), "email")
	})

	t.Run("matches_sentinel", func(t *testing.T) {
		assert.True(t, errors.Is(err, warden.ErrForbidden))
	})

	t.Run("matches_wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("resolving field: %w", err)
		assert.True(t, warden.IsForbidden(wrapped))

		var fe *warden.ForbiddenError
		require.True(t, errors.As(wrapped, &fe))
		assert.Equal(t, "ref-1", fe.Reference)
	})

	t.Run("is_forbidden_helper", func(t *testing.T) {
		assert.True(t, warden.IsForbidden(err))
		assert.True(t, warden.IsForbidden(warden.ErrForbidden))
		assert.False(t, warden.IsForbidden(nil))
		assert.False(t, warden.IsForbidden(errors.New("other")))
	})
}

// TestEvaluationError tests the internal rule failure wrapper.
func TestEvaluationError(t *testing.T) {
	cause := errors.New("store unavailable")
	err := &warden.EvaluationError{Object: "User", Field: "email", Err: cause}

	t.Run("message_carries_detail", func(t *testing.T) {
		assert.Contains(t, err.Error(), "User.email")
		assert.Contains(t, err.Error(), "store unavailable")
	})

	t.Run("unwraps_cause", func(t *testing.T) {
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("is_evaluation_error_helper", func(t *testing.T) {
		assert.True(t, warden.IsEvaluationError(err))
		assert.True(t, warden.IsEvaluationError(fmt.Errorf("wrap: %w", err)))
		assert.False(t, warden.IsEvaluationError(nil))
		assert.False(t, warden.IsEvaluationError(cause))
	})

	t.Run("not_forbidden", func(t *testing.T) {
		assert.False(t, warden.IsForbidden(err))
	})
}
