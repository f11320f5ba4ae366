package domain

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreError(t *testing.T) {
	t.Run("matches store unavailable and the cause", func(t *testing.T) {
		err := NewStoreError("list items", sql.ErrConnDone)

		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Equal(t, "list items: "+sql.ErrConnDone.Error(), err.Error())
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, NewStoreError("noop", nil))
	})

	t.Run("does not double wrap", func(t *testing.T) {
		inner := NewStoreError("inner", context.Canceled)
		outer := NewStoreError("outer", inner)

		var se *StoreError
		assert.True(t, errors.As(outer, &se))
		assert.Equal(t, "inner", se.Op)
	})

	t.Run("validation errors are not store errors", func(t *testing.T) {
		assert.False(t, errors.Is(ErrEmptyCart, ErrStoreUnavailable))
	})
}
