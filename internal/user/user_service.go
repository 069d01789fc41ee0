package user

import (
	"context"
	"errors"

	"gochat/internal/common"
)

//go:generate mockgen -source=user_service.go -destination=mock_user_service.go -package=user

const (
	msgAccountExists      = "user already exists"
	msgInvalidCredentials = "invalid credentials"
	msgAccountNotFound    = "user not found"
)

type UserService interface {
	RegisterUser(ctx context.Context, email, password string) (string, error)
	LoginUser(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, accountID string) (*common.Account, error)
}

// Hasher and TokenIssuer are the slices of common.PasswordHasher and
// common.TokenManager the service uses.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hashedPassword string) bool
}

type TokenIssuer interface {
	Issue(accountID string) (string, error)
}

type userService struct {
	accounts AccountRepository
	hasher   Hasher
	tokens   TokenIssuer
}

func NewUserService(accounts AccountRepository, hasher Hasher, tokens TokenIssuer) UserService {
	return &userService{accounts: accounts, hasher: hasher, tokens: tokens}
}

func (s *userService) RegisterUser(ctx context.Context, email, password string) (string, error) {
	if err := common.ValidateCredentials(email, password); err != nil {
		return "", err
	}
	email = common.NormalizeEmail(email)

	// advisory only, the unique index decides races
	exists, err := s.accounts.CheckEmailExists(ctx, email)
	if err != nil {
		return "", common.NewInternalError("server error", err)
	}
	if exists {
		return "", common.NewConflictError(msgAccountExists)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return "", common.NewInternalError("server error", err)
	}

	account := &common.Account{
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return "", common.NewConflictError(msgAccountExists)
		}
		return "", common.NewInternalError("server error", err)
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", common.NewInternalError("server error", err)
	}
	return token, nil
}

// LoginUser answers an unknown email and a wrong password identically.
func (s *userService) LoginUser(ctx context.Context, email, password string) (string, error) {
	if err := common.ValidateCredentials(email, password); err != nil {
		return "", err
	}

	account, err := s.accounts.GetAccountByEmail(ctx, common.NormalizeEmail(email), true)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.NewValidationError(msgInvalidCredentials)
		}
		return "", common.NewInternalError("server error", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return "", common.NewValidationError(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", common.NewInternalError("server error", err)
	}
	return token, nil
}

func (s *userService) GetProfile(ctx context.Context, accountID string) (*common.Account, error) {
	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError(msgAccountNotFound)
		}
		return nil, common.NewInternalError("server error", err)
	}
	account.PasswordHash = ""
	return account, nil
}
