package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"revizly/internal/model"
)

// testDatabase 连接 MONGO_URI 指定的实例，未设置时跳过
func testDatabase(t *testing.T) *mongo.Database {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database("revizly_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestConversationRepo_Lifecycle(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewConversationRepo(db)

	conv := &model.Conversation{OwnerID: "u-1", Title: "Photosynthesis"}
	require.NoError(t, repo.Create(ctx, conv))
	require.False(t, conv.ID.IsZero())

	got, err := repo.FindByID(ctx, conv.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis", got.Title)

	updated, err := repo.UpdateTitle(ctx, conv.ID.Hex(), "Biology")
	require.NoError(t, err)
	assert.Equal(t, "Biology", updated.Title)

	list, err := repo.ListByOwner(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, conv.ID.Hex()))
	assert.ErrorIs(t, repo.Delete(ctx, conv.ID.Hex()), ErrNotFound)

	_, err = repo.FindByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMessageRepo_OrderAndCascade(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewMessageRepo(db)

	convID := primitive.NewObjectID()
	ts := time.Now().UTC().Truncate(time.Millisecond)

	first := &model.Message{ConversationID: convID, Sender: model.SenderUser, Text: "a", Timestamp: ts}
	second := &model.Message{ConversationID: convID, Sender: model.SenderBot, BotReply: &model.BotReply{Options: []string{}}, Timestamp: ts}
	earlier := &model.Message{ConversationID: convID, Sender: model.SenderUser, Text: "z", Timestamp: ts.Add(-time.Second)}
	for _, m := range []*model.Message{first, second, earlier} {
		require.NoError(t, repo.Create(ctx, m))
	}

	msgs, err := repo.ListByConversation(ctx, convID.Hex())
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, earlier.ID, msgs[0].ID)
	assert.Equal(t, first.ID, msgs[1].ID)
	assert.Equal(t, second.ID, msgs[2].ID)

	n, err := repo.DeleteByConversation(ctx, convID.Hex())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	msgs, err = repo.ListByConversation(ctx, convID.Hex())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
