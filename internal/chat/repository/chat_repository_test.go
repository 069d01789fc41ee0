package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gochat/internal/common"
	"gochat/internal/dbmysql"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cfg := dbmysql.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), cfg)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

var messageColumns = []string{"id", "chat_id", "sender_id", "content", "read", "created_at", "updated_at"}

func TestChatRepository_Save(t *testing.T) {
	tests := []struct {
		name        string
		mockSetup   func(sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "successful save",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `messages`")).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "database error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `messages`")).
					WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()

			tt.mockSetup(mock)

			repo := NewChatRepository(db)
			msg := &common.Message{ChatID: "chat-1", SenderID: "user-1", Content: "Hello, world!"}
			err := repo.Save(context.Background(), msg)

			if tt.expectError {
				assert.ErrorIs(t, err, assert.AnError)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, msg.ID)
				assert.False(t, msg.CreatedAt.IsZero())
				assert.Zero(t, msg.CreatedAt.Nanosecond()%int(time.Millisecond), "datetime(3) keeps milliseconds only")
				assert.Equal(t, msg.CreatedAt, msg.UpdatedAt)
				assert.False(t, msg.Read)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestChatRepository_SaveIDsFollowInsertOrder(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewChatRepository(db)
	var ids []string
	for i := 0; i < 50; i++ {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `messages`")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		msg := &common.Message{ChatID: "chat-1", SenderID: "user-1", Content: "burst"}
		require.NoError(t, repo.Save(context.Background(), msg))
		ids = append(ids, msg.ID)
	}

	// messages sent within the same millisecond still sort by id
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_FetchHistory(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("oldest first", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		rows := sqlmock.NewRows(messageColumns).
			AddRow("m1", "chat-1", "user-1", "first", false, base, base).
			AddRow("m2", "chat-1", "user-2", "second", false, base.Add(time.Second), base.Add(time.Second))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE chat_id = ? ORDER BY created_at ASC,id ASC")).
			WithArgs("chat-1").
			WillReturnRows(rows)

		messages, err := NewChatRepository(db).FetchHistory(context.Background(), "chat-1")
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "first", messages[0].Content)
		assert.Equal(t, "user-2", messages[1].SenderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("same timestamp keeps insert order", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		first := "018f3a2c-8a40-7000-8000-000000000001"
		second := "018f3a2c-8a40-7000-8000-000000000002"
		rows := sqlmock.NewRows(messageColumns).
			AddRow(first, "chat-1", "user-1", "ping", false, base, base).
			AddRow(second, "chat-1", "user-2", "pong", false, base, base)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE chat_id = ? ORDER BY created_at ASC,id ASC")).
			WithArgs("chat-1").
			WillReturnRows(rows)

		messages, err := NewChatRepository(db).FetchHistory(context.Background(), "chat-1")
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, first, messages[0].ID)
		assert.Equal(t, "pong", messages[1].Content)
		assert.True(t, messages[0].CreatedAt.Equal(messages[1].CreatedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown chat is empty not nil", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE chat_id = ?")).
			WillReturnRows(sqlmock.NewRows(messageColumns))

		messages, err := NewChatRepository(db).FetchHistory(context.Background(), "nope")
		require.NoError(t, err)
		assert.NotNil(t, messages)
		assert.Empty(t, messages)
	})
}

func TestChatRepository_DeleteOwned(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	selectOwned := "SELECT \\* FROM `messages` WHERE .*id = \\? AND sender_id = \\?.* FOR UPDATE"

	t.Run("owner deletes", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(selectOwned).
			WillReturnRows(sqlmock.NewRows(messageColumns).AddRow("m1", "chat-1", "user-1", "hi", false, base, base))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `messages` WHERE `messages`.`id` = ?")).
			WithArgs("m1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		deleted, err := NewChatRepository(db).DeleteOwned(context.Background(), "m1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, "m1", deleted.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("someone else's message survives", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(selectOwned).WillReturnRows(sqlmock.NewRows(messageColumns))
		mock.ExpectRollback()

		_, err := NewChatRepository(db).DeleteOwned(context.Background(), "m1", "intruder")
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChatRepository_ListChats(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no messages sent", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT `chat_id` FROM `messages` WHERE sender_id = ?")).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"chat_id"}))

		chats, err := NewChatRepository(db).ListChats(context.Background(), "user-1")
		require.NoError(t, err)
		assert.NotNil(t, chats)
		assert.Empty(t, chats)
	})

	t.Run("summaries newest first", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT `chat_id` FROM `messages` WHERE sender_id = ?")).
			WillReturnRows(sqlmock.NewRows([]string{"chat_id"}).AddRow("chat-a").AddRow("chat-b"))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE chat_id IN (?,?)")).
			WithArgs("chat-a", "chat-b").
			WillReturnRows(sqlmock.NewRows(messageColumns).
				AddRow("m1", "chat-a", "user-1", "a1", false, base, base).
				AddRow("m2", "chat-b", "user-1", "b1", false, base.Add(time.Minute), base.Add(time.Minute)).
				AddRow("m3", "chat-a", "user-2", "a2", false, base.Add(2*time.Minute), base.Add(2*time.Minute)))

		chats, err := NewChatRepository(db).ListChats(context.Background(), "user-1")
		require.NoError(t, err)
		require.Len(t, chats, 2)
		assert.Equal(t, "chat-a", chats[0].ID)
		assert.Equal(t, []string{"user-1", "user-2"}, chats[0].Participants)
		assert.Equal(t, "a2", chats[0].LastMessage)
		assert.Equal(t, "chat-b", chats[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSummarize(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	messages := []*common.Message{
		{ID: "1", ChatID: "x", SenderID: "zed", Content: "one", CreatedAt: base},
		{ID: "2", ChatID: "y", SenderID: "amy", Content: "two", CreatedAt: base.Add(time.Second)},
		{ID: "3", ChatID: "x", SenderID: "amy", Content: "three", CreatedAt: base.Add(time.Second)},
		{ID: "4", ChatID: "x", SenderID: "zed", Content: "four", CreatedAt: base.Add(time.Second)},
	}

	summaries := Summarize(messages)
	require.Len(t, summaries, 2)

	// equal timestamps fall back to chat ID
	assert.Equal(t, "x", summaries[0].ID)
	assert.Equal(t, []string{"amy", "zed"}, summaries[0].Participants)
	assert.Equal(t, "four", summaries[0].LastMessage)
	assert.Equal(t, "y", summaries[1].ID)
	assert.Equal(t, []string{"amy"}, summaries[1].Participants)

	assert.Empty(t, Summarize(nil))
}
