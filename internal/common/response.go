package common

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// MessageResponse is the {"msg": ...} body used for every error and for
// acknowledgements without a payload.
type MessageResponse struct {
	Msg string `json:"msg"`
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	// the status line is already out; all that is left is to note the client went away
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Debug("write response body", zap.Int("status", status), zap.Error(err))
	}
}

// WriteError maps err to a status code. Internal failures are logged with their
// cause and the client only sees the generic message.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	appErr := AsAppError(err)
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error(appErr.Message, zap.Error(appErr.Err))
	}
	WriteJSON(w, status, MessageResponse{Msg: appErr.Message})
}

// DecodeJSON reads a JSON request body into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return NewValidationError("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &AppError{Kind: KindValidation, Message: "invalid JSON body", Err: err}
	}
	return nil
}
