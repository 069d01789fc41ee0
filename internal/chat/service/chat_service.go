package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gochat/internal/chat/repository"
	"gochat/internal/common"
)

//go:generate mockgen -source=chat_service.go -destination=mock_chat_service.go -package=service

const (
	msgEmptyContent     = "message content cannot be empty"
	msgChatRequired     = "chat ID is required"
	msgMessageNotFound  = "message not found or not permitted"
	msgPartnerRequired  = "partnerId is required"
	msgChatWithYourself = "cannot start a chat with yourself"
)

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	SendMessage(ctx context.Context, chatID, senderID, content string) (*common.Message, error)
	GetMessageHistory(ctx context.Context, chatID string) ([]*common.Message, error)
	DeleteMessage(ctx context.Context, messageID, senderID string) error
	ListChats(ctx context.Context, accountID string) ([]*common.ChatSummary, error)
	CreateChat(ctx context.Context, accountID, partnerID string) (*common.ChatSummary, error)
}

type chatService struct {
	repo repository.ChatRepository
}

func NewChatService(r repository.ChatRepository) ChatService {
	return &chatService{repo: r}
}

// SendMessage stores trimmed content. The sender always comes from the
// authenticated identity, never from the request body.
func (s *chatService) SendMessage(ctx context.Context, chatID, senderID, content string) (*common.Message, error) {
	if chatID == "" {
		return nil, common.NewValidationError(msgChatRequired)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.NewValidationError(msgEmptyContent)
	}

	msg := &common.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.repo.Save(ctx, msg); err != nil {
		return nil, common.NewInternalError("server error", err)
	}
	return msg, nil
}

// GetMessageHistory returns every message of the chat, oldest first. Any
// authenticated account may read any chat.
func (s *chatService) GetMessageHistory(ctx context.Context, chatID string) ([]*common.Message, error) {
	if chatID == "" {
		return nil, common.NewValidationError(msgChatRequired)
	}

	messages, err := s.repo.FetchHistory(ctx, chatID)
	if err != nil {
		return nil, common.NewInternalError("server error", err)
	}
	return messages, nil
}

// DeleteMessage reports a missing message and someone else's message the same way.
func (s *chatService) DeleteMessage(ctx context.Context, messageID, senderID string) error {
	if _, err := s.repo.DeleteOwned(ctx, messageID, senderID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewNotFoundError(msgMessageNotFound)
		}
		return common.NewInternalError("server error", err)
	}
	return nil
}

func (s *chatService) ListChats(ctx context.Context, accountID string) ([]*common.ChatSummary, error) {
	chats, err := s.repo.ListChats(ctx, accountID)
	if err != nil {
		return nil, common.NewInternalError("server error", err)
	}
	return chats, nil
}

// CreateChat names the direct chat between two accounts. Nothing is stored
// until the first message is sent.
func (s *chatService) CreateChat(_ context.Context, accountID, partnerID string) (*common.ChatSummary, error) {
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" {
		return nil, common.NewValidationError(msgPartnerRequired)
	}
	if partnerID == accountID {
		return nil, common.NewValidationError(msgChatWithYourself)
	}

	participants := []string{accountID, partnerID}
	sort.Strings(participants)
	return &common.ChatSummary{
		ID:           DirectChatID(accountID, partnerID),
		Participants: participants,
	}, nil
}

// DirectChatID is order independent.
func DirectChatID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "dm_" + a + "_" + b
}
