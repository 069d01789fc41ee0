package user

import (
	"net/http"

	"go.uber.org/zap"

	"gochat/internal/common"
)

// Handler wires HTTP requests to the UserService.
type Handler struct {
	userService UserService
	log         *zap.Logger
}

func NewHandler(userService UserService, log *zap.Logger) *Handler {
	return &Handler{userService: userService, log: log}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	token, err := h.userService.RegisterUser(r.Context(), req.Email, req.Password)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, TokenResponse{Token: token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	token, err := h.userService.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := common.AccountIDFromContext(r.Context())
	if !ok {
		common.WriteJSON(w, http.StatusUnauthorized, common.MessageResponse{Msg: "user not authenticated"})
		return
	}

	account, err := h.userService.GetProfile(r.Context(), accountID)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, account)
}
