package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolderRoundTrip(t *testing.T) {
	h := NewHolder(nil)
	ctx := NewContext(context.Background(), h)

	got := FromContext(ctx)
	require.Same(t, h, got)
	assert.Nil(t, got.Get())

	got.Set(&Session{UserID: "u1", AccessToken: "tok"})
	s := h.Get()
	require.NotNil(t, s)
	assert.Equal(t, "u1", s.UserID)

	s.UserID = "mutated"
	assert.Equal(t, "u1", h.Get().UserID, "Get returns a copy")

	h.Clear()
	assert.Nil(t, h.Get())
}

func TestFromContextWithoutHolder(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}
