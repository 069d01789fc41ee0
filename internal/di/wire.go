//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"gochat/internal/chat/handler"
	"gochat/internal/chat/service"
	"gochat/internal/common"
	"gochat/internal/server"
	"gochat/internal/user"
)

var authSet = wire.NewSet(
	ProvideTokenManager,
	ProvidePasswordHasher,
	wire.Bind(new(user.TokenIssuer), new(*common.TokenManager)),
	wire.Bind(new(common.TokenVerifier), new(*common.TokenManager)),
	wire.Bind(new(user.Hasher), new(*common.PasswordHasher)),
)

var storeSet = wire.NewSet(
	ProvideStore,
	ProvideAccountRepository,
	ProvideChatRepository,
	ProvideHealthChecker,
)

// InitializeApplication is a declaration; wire generates the body in wire_gen.go.
func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		authSet,
		storeSet,
		user.NewUserService,
		user.NewHandler,
		service.NewChatService,
		handler.NewChatHandler,
		server.NewHTTPServer,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
