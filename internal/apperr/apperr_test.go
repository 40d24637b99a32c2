package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("trip not found"), http.StatusNotFound},
		{Forbidden("not yours"), http.StatusForbidden},
		{InvalidState("already cancelled"), http.StatusBadRequest},
		{InsufficientCapacity(3, 2), http.StatusBadRequest},
		{BadRequest("bad date"), http.StatusBadRequest},
		{Conflict("trip has active bookings"), http.StatusConflict},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), tc.err.Message)
	}
}

func TestInsufficientCapacityMessage(t *testing.T) {
	err := InsufficientCapacity(3, 2)
	assert.Equal(t, "insufficient seats: requested 3, available 2", err.Message)
}

func TestFrom(t *testing.T) {
	t.Run("passes typed errors through", func(t *testing.T) {
		orig := NotFound("gone")
		assert.Same(t, orig, From(orig))
	})

	t.Run("finds typed errors through wrapping", func(t *testing.T) {
		orig := Forbidden("no")
		wrapped := fmt.Errorf("handler: %w", orig)
		assert.Same(t, orig, From(wrapped))
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		cause := errors.New("pq: connection refused")
		got := From(cause)
		assert.Equal(t, KindInternal, got.Kind)
		assert.Equal(t, "internal server error", got.Message)
		assert.ErrorIs(t, got, cause)
	})
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", InvalidState("too late"))
	assert.True(t, IsKind(err, KindInvalidState))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindInvalidState))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestInternalKeepsCausePrivate(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := Internal(cause)
	// Error() includes the cause for logs; Message, which reaches clients,
	// does not.
	assert.Contains(t, err.Error(), "duplicate key")
	assert.NotContains(t, err.Message, "duplicate key")
}
