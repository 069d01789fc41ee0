package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gochat/internal/common"
	"gochat/internal/dbmysql"
)

//go:generate mockgen -source=chat_repository.go -destination=mock_chat_repository.go -package=repository

// ChatRepository stores chat messages. History is ordered oldest first with the
// message ID breaking timestamp ties.
type ChatRepository interface {
	// Save assigns ID and timestamps on the passed message.
	Save(ctx context.Context, msg *common.Message) error
	FetchHistory(ctx context.Context, chatID string) ([]*common.Message, error)
	// DeleteOwned removes the message only if senderID sent it and returns
	// common.ErrNotFound otherwise.
	DeleteOwned(ctx context.Context, messageID, senderID string) (*common.Message, error)
	// ListChats summarizes every chat the account has sent a message to, most
	// recently active first.
	ListChats(ctx context.Context, accountID string) ([]*common.ChatSummary, error)
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) Save(ctx context.Context, msg *common.Message) error {
	msg.ID = uuid.Must(uuid.NewV7()).String()
	row := dbmysql.MessageFromDomain(msg)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	msg.CreatedAt = row.CreatedAt
	msg.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *chatRepo) FetchHistory(ctx context.Context, chatID string) ([]*common.Message, error) {
	var rows []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	messages := make([]*common.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.ToDomain())
	}
	return messages, nil
}

func (r *chatRepo) DeleteOwned(ctx context.Context, messageID, senderID string) (*common.Message, error) {
	var row dbmysql.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND sender_id = ?", messageID, senderID).
			First(&row).Error
		if err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("delete message: %w", err)
	}
	return row.ToDomain(), nil
}

func (r *chatRepo) ListChats(ctx context.Context, accountID string) ([]*common.ChatSummary, error) {
	var chatIDs []string
	err := r.db.WithContext(ctx).Model(&dbmysql.Message{}).
		Where("sender_id = ?", accountID).
		Distinct().
		Pluck("chat_id", &chatIDs).Error
	if err != nil {
		return nil, fmt.Errorf("list chat ids: %w", err)
	}
	if len(chatIDs) == 0 {
		return []*common.ChatSummary{}, nil
	}

	var rows []*dbmysql.Message
	err = r.db.WithContext(ctx).
		Where("chat_id IN ?", chatIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	messages := make([]*common.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.ToDomain())
	}
	return Summarize(messages), nil
}

// Summarize folds messages, already in history order, into one summary per
// chat sorted by last activity, newest first.
func Summarize(messages []*common.Message) []*common.ChatSummary {
	byChat := make(map[string]*common.ChatSummary)
	senders := make(map[string]map[string]struct{})
	summaries := make([]*common.ChatSummary, 0)

	for _, msg := range messages {
		summary, ok := byChat[msg.ChatID]
		if !ok {
			summary = &common.ChatSummary{ID: msg.ChatID}
			byChat[msg.ChatID] = summary
			senders[msg.ChatID] = make(map[string]struct{})
			summaries = append(summaries, summary)
		}
		if _, seen := senders[msg.ChatID][msg.SenderID]; !seen {
			senders[msg.ChatID][msg.SenderID] = struct{}{}
			summary.Participants = append(summary.Participants, msg.SenderID)
		}
		at := msg.CreatedAt
		summary.LastMessage = msg.Content
		summary.LastMessageAt = &at
	}

	for _, summary := range summaries {
		sort.Strings(summary.Participants)
	}
	SortSummaries(summaries)
	return summaries
}

// SortSummaries orders by last activity, newest first, then by chat ID.
func SortSummaries(summaries []*common.ChatSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		switch {
		case a.LastMessageAt == nil || b.LastMessageAt == nil:
			return a.ID < b.ID
		case !a.LastMessageAt.Equal(*b.LastMessageAt):
			return a.LastMessageAt.After(*b.LastMessageAt)
		default:
			return a.ID < b.ID
		}
	})
}
