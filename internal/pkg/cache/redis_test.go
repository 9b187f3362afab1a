package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationListKey(t *testing.T) {
	assert.Equal(t, "conv:list:u-1", ConversationListKey("u-1"))
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", 1, ConversationListTTL))
	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
}
