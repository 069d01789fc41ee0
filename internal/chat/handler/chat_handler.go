// Package handler exposes chat messages over HTTP.
package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gochat/internal/chat/service"
	"gochat/internal/common"
)

const (
	msgSent    = "message sent"
	msgDeleted = "message deleted"
)

type ChatHandler struct {
	chatService service.ChatService
	log         *zap.Logger
}

func NewChatHandler(chatService service.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log,
	}
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type createChatRequest struct {
	PartnerID string `json:"partnerId"`
}

type SendMessageResponse struct {
	Msg     string          `json:"msg"`
	Message *common.Message `json:"message"`
}

type MessagesResponse struct {
	Messages []*common.Message `json:"messages"`
}

type ChatsResponse struct {
	Chats []*common.ChatSummary `json:"chats"`
}

type ChatResponse struct {
	Chat *common.ChatSummary `json:"chat"`
}

func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.identity(w, r)
	if !ok {
		return
	}

	chats, err := h.chatService.ListChats(r.Context(), accountID)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, ChatsResponse{Chats: chats})
}

func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createChatRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	chat, err := h.chatService.CreateChat(r.Context(), accountID, req.PartnerID)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, ChatResponse{Chat: chat})
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.identity(w, r); !ok {
		return
	}

	messages, err := h.chatService.GetMessageHistory(r.Context(), mux.Vars(r)["chatId"])
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, MessagesResponse{Messages: messages})
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), mux.Vars(r)["chatId"], accountID, req.Content)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	h.log.Debug("message stored",
		zap.String("chat_id", msg.ChatID),
		zap.String("message_id", msg.ID),
	)
	common.WriteJSON(w, http.StatusCreated, SendMessageResponse{Msg: msgSent, Message: msg})
}

// DeleteMessage ignores the chatId path segment; ownership alone decides.
func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.chatService.DeleteMessage(r.Context(), mux.Vars(r)["messageId"], accountID); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.MessageResponse{Msg: msgDeleted})
}

func (h *ChatHandler) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountID, ok := common.AccountIDFromContext(r.Context())
	if !ok {
		common.WriteJSON(w, http.StatusUnauthorized, common.MessageResponse{Msg: "user not authenticated"})
	}
	return accountID, ok
}
