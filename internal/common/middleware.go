package common

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type contextKey string

const accountIDKey contextKey = "account_id"

// WithAccountID returns a copy of ctx carrying the verified account id.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}

// BearerToken pulls the token out of "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", ErrTokenMalformed
		}
		return parts[1], nil
	}
	return "", ErrTokenMissing
}

// AuthMiddleware rejects requests without a valid token and stores the verified
// account id in the request context for the handlers behind it.
func AuthMiddleware(tokens TokenVerifier, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := BearerToken(r)
			if err == nil {
				var accountID string
				accountID, err = tokens.Verify(tokenString)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
					return
				}
			}

			msg := "token is not valid"
			switch {
			case errors.Is(err, ErrTokenMissing):
				msg = "no token, authorization denied"
			case errors.Is(err, ErrTokenExpired):
				msg = "token has expired"
			case errors.Is(err, ErrSecretMissing):
				// misconfiguration, still an auth failure for the caller
				logger.Error("token verification unavailable", zap.Error(err))
			}
			logger.Debug("rejected request",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			WriteError(w, logger, NewAuthenticationError(msg, err))
		})
	}
}
