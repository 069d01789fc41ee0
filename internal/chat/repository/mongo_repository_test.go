package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"gochat/internal/common"
	"gochat/internal/dbmongo"
)

func messagesNS(mt *mtest.T) string {
	return mt.DB.Name() + "." + dbmongo.MessagesCollection
}

func messageDoc(id primitive.ObjectID, chatID, sender, content string, at time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "chatId", Value: chatID},
		{Key: "sender", Value: sender},
		{Key: "content", Value: content},
		{Key: "read", Value: false},
		{Key: "createdAt", Value: at},
		{Key: "updatedAt", Value: at},
	}
}

func TestMongoChatRepository_Save(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id and timestamps", func(mt *mtest.T) {
		repo := NewMongoChatRepository(mt.DB).(*mongoChatRepo)
		fixed := time.Date(2024, 5, 1, 12, 0, 0, 999999999, time.UTC)
		repo.now = func() time.Time { return fixed }
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		msg := &common.Message{ChatID: "chat-1", SenderID: "user-1", Content: "hi"}
		require.NoError(mt, repo.Save(context.Background(), msg))

		_, err := primitive.ObjectIDFromHex(msg.ID)
		assert.NoError(mt, err)
		assert.Equal(mt, fixed.Truncate(time.Millisecond), msg.CreatedAt)
	})

	mt.Run("insert failure", func(mt *mtest.T) {
		repo := NewMongoChatRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11600, Message: "interrupted"}))

		err := repo.Save(context.Background(), &common.Message{ChatID: "chat-1", SenderID: "user-1", Content: "hi"})
		assert.ErrorContains(mt, err, "save message")
	})
}

func TestMongoChatRepository_FetchHistory(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("returns batch in order", func(mt *mtest.T) {
		repo := NewMongoChatRepository(mt.DB)
		first := mtest.CreateCursorResponse(1, messagesNS(mt), mtest.FirstBatch,
			messageDoc(primitive.NewObjectID(), "chat-1", "user-1", "first", base),
			messageDoc(primitive.NewObjectID(), "chat-1", "user-2", "second", base.Add(time.Second)),
		)
		end := mtest.CreateCursorResponse(0, messagesNS(mt), mtest.NextBatch)
		mt.AddMockResponses(first, end)

		messages, err := repo.FetchHistory(context.Background(), "chat-1")
		require.NoError(mt, err)
		require.Len(mt, messages, 2)
		assert.Equal(mt, "first", messages[0].Content)
		assert.Equal(mt, "user-2", messages[1].SenderID)
	})

	mt.Run("empty chat", func(mt *mtest.T) {
		repo := NewMongoChatRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, messagesNS(mt), mtest.FirstBatch))

		messages, err := repo.FetchHistory(context.Background(), "nothing-here")
		require.NoError(mt, err)
		assert.NotNil(mt, messages)
		assert.Empty(mt, messages)
	})
}

func TestMongoChatRepository_DeleteOwned(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("owner deletes", func(mt *mtest.T) {
		repo := NewMongoChatRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: messageDoc(id, "chat-1", "user-1", "bye", base)},
		))

		deleted, err := repo.DeleteOwned(context.Background(), id.Hex(), "user-1")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), deleted.ID)
	})

	mt.Run("no match", func(mt *mtest.T) {
		repo := NewMongoChatRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.DeleteOwned(context.Background(), primitive.NewObjectID().Hex(), "intruder")
		assert.ErrorIs(mt, err, common.ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewMongoChatRepository(mt.DB)

		_, err := repo.DeleteOwned(context.Background(), "123", "user-1")
		assert.ErrorIs(mt, err, common.ErrNotFound)
	})
}

func TestMongoChatRepository_ListChats(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("no chats", func(mt *mtest.T) {
		repo := NewMongoChatRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{}}))

		chats, err := repo.ListChats(context.Background(), "user-1")
		require.NoError(mt, err)
		assert.NotNil(mt, chats)
		assert.Empty(mt, chats)
	})

	mt.Run("aggregated summaries", func(mt *mtest.T) {
		repo := NewMongoChatRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{"chat-a", "chat-b"}}),
			mtest.CreateCursorResponse(0, messagesNS(mt), mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: "chat-a"},
					{Key: "participants", Value: bson.A{"user-2", "user-1"}},
					{Key: "lastMessage", Value: "latest"},
					{Key: "lastMessageAt", Value: base.Add(time.Minute)},
				},
				bson.D{
					{Key: "_id", Value: "chat-b"},
					{Key: "participants", Value: bson.A{"user-1"}},
					{Key: "lastMessage", Value: "older"},
					{Key: "lastMessageAt", Value: base},
				},
			),
		)

		chats, err := repo.ListChats(context.Background(), "user-1")
		require.NoError(mt, err)
		require.Len(mt, chats, 2)
		assert.Equal(mt, "chat-a", chats[0].ID)
		assert.Equal(mt, []string{"user-1", "user-2"}, chats[0].Participants)
		assert.Equal(mt, "latest", chats[0].LastMessage)
		assert.True(mt, base.Add(time.Minute).Equal(*chats[0].LastMessageAt))
		assert.Equal(mt, "chat-b", chats[1].ID)
	})
}
