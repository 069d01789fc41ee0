package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gochat/internal/chat/repository"
	"gochat/internal/common"
)

func TestChatService_SendMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockChatRepository(ctrl)
	service := NewChatService(mockRepo)

	tests := []struct {
		name        string
		chatID      string
		content     string
		mockSetup   func()
		expectError bool
		errorKind   common.ErrorKind
		errorMsg    string
	}{
		{
			name:    "successful message send",
			chatID:  "chat-123",
			content: "  Hello, world!  ",
			mockSetup: func() {
				mockRepo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, msg *common.Message) error {
						assert.Equal(t, "Hello, world!", msg.Content)
						assert.Equal(t, "user-456", msg.SenderID)
						assert.False(t, msg.Read)
						msg.ID = "m1"
						msg.CreatedAt = time.Now().UTC()
						return nil
					}).
					Times(1)
			},
		},
		{
			name:        "whitespace only content",
			chatID:      "chat-123",
			content:     " \t\n ",
			mockSetup:   func() {},
			expectError: true,
			errorKind:   common.KindValidation,
			errorMsg:    "message content cannot be empty",
		},
		{
			name:        "empty content",
			chatID:      "chat-123",
			content:     "",
			mockSetup:   func() {},
			expectError: true,
			errorKind:   common.KindValidation,
			errorMsg:    "message content cannot be empty",
		},
		{
			name:        "empty chat ID",
			chatID:      "",
			content:     "Hello",
			mockSetup:   func() {},
			expectError: true,
			errorKind:   common.KindValidation,
		},
		{
			name:    "repository error",
			chatID:  "chat-123",
			content: "Hello, world!",
			mockSetup: func() {
				mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			expectError: true,
			errorKind:   common.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			msg, err := service.SendMessage(context.Background(), tt.chatID, "user-456", tt.content)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, msg)
				assert.Equal(t, tt.errorKind, common.AsAppError(err).Kind)
				if tt.errorMsg != "" {
					assert.Equal(t, tt.errorMsg, common.AsAppError(err).Message)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "m1", msg.ID)
				assert.Equal(t, tt.chatID, msg.ChatID)
			}
		})
	}
}

func TestChatService_GetMessageHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockChatRepository(ctrl)
	service := NewChatService(mockRepo)

	t.Run("passes history through", func(t *testing.T) {
		expected := []*common.Message{{ID: "1", ChatID: "chat-1"}, {ID: "2", ChatID: "chat-1"}}
		mockRepo.EXPECT().FetchHistory(gomock.Any(), "chat-1").Return(expected, nil)

		messages, err := service.GetMessageHistory(context.Background(), "chat-1")
		require.NoError(t, err)
		assert.Equal(t, expected, messages)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo.EXPECT().FetchHistory(gomock.Any(), "chat-1").Return(nil, errors.New("boom"))

		_, err := service.GetMessageHistory(context.Background(), "chat-1")
		assert.Equal(t, common.KindInternal, common.AsAppError(err).Kind)
	})

	t.Run("chat ID required", func(t *testing.T) {
		_, err := service.GetMessageHistory(context.Background(), "")
		assert.Equal(t, common.KindValidation, common.AsAppError(err).Kind)
	})
}

func TestChatService_DeleteMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockChatRepository(ctrl)
	service := NewChatService(mockRepo)

	t.Run("owner", func(t *testing.T) {
		mockRepo.EXPECT().DeleteOwned(gomock.Any(), "m1", "alice").Return(&common.Message{ID: "m1"}, nil)

		assert.NoError(t, service.DeleteMessage(context.Background(), "m1", "alice"))
	})

	t.Run("not owner and missing look the same", func(t *testing.T) {
		mockRepo.EXPECT().DeleteOwned(gomock.Any(), "m1", "bob").Return(nil, common.ErrNotFound)
		mockRepo.EXPECT().DeleteOwned(gomock.Any(), "ghost", "alice").Return(nil, common.ErrNotFound)

		notOwner := service.DeleteMessage(context.Background(), "m1", "bob")
		missing := service.DeleteMessage(context.Background(), "ghost", "alice")

		require.Error(t, notOwner)
		assert.Equal(t, notOwner.Error(), missing.Error())
		assert.Equal(t, 404, common.AsAppError(notOwner).StatusCode())
		assert.Equal(t, "message not found or not permitted", common.AsAppError(missing).Message)
	})

	t.Run("store failure", func(t *testing.T) {
		mockRepo.EXPECT().DeleteOwned(gomock.Any(), "m1", "alice").Return(nil, errors.New("timeout"))

		err := service.DeleteMessage(context.Background(), "m1", "alice")
		assert.Equal(t, common.KindInternal, common.AsAppError(err).Kind)
	})
}

func TestChatService_ListChats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockChatRepository(ctrl)
	service := NewChatService(mockRepo)

	summaries := []*common.ChatSummary{{ID: "chat-1", Participants: []string{"alice"}}}
	mockRepo.EXPECT().ListChats(gomock.Any(), "alice").Return(summaries, nil)

	chats, err := service.ListChats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, summaries, chats)
}

func TestChatService_CreateChat(t *testing.T) {
	service := NewChatService(nil)
	ctx := context.Background()

	t.Run("deterministic id", func(t *testing.T) {
		fromAlice, err := service.CreateChat(ctx, "alice", "bob")
		require.NoError(t, err)
		fromBob, err := service.CreateChat(ctx, "bob", "alice")
		require.NoError(t, err)

		assert.Equal(t, "dm_alice_bob", fromAlice.ID)
		assert.Equal(t, fromAlice.ID, fromBob.ID)
		assert.Equal(t, []string{"alice", "bob"}, fromBob.Participants)
		assert.Nil(t, fromAlice.LastMessageAt)
	})

	t.Run("partner required", func(t *testing.T) {
		_, err := service.CreateChat(ctx, "alice", "  ")
		assert.Equal(t, common.KindValidation, common.AsAppError(err).Kind)
	})

	t.Run("not with yourself", func(t *testing.T) {
		_, err := service.CreateChat(ctx, "alice", "alice")
		assert.Equal(t, "cannot start a chat with yourself", common.AsAppError(err).Message)
	})
}
