package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestConversationLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "test chat", "llama3.2")
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "llama3.2", conv.Model)

	_, err = store.AppendMessage(ctx, conv.ID, "user", "hello")
	require.NoError(t, err)
	_, err = store.AppendMessage(ctx, conv.ID, "assistant", "hi there")
	require.NoError(t, err)

	msgs, err := store.Messages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)

	convs, err := store.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, conv.ID, convs[0].ID)
}

func TestMessagesEmptyConversation(t *testing.T) {
	store := newTestStore(t)
	msgs, err := store.Messages(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
