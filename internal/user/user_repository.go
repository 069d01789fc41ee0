package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gochat/internal/common"
	"gochat/internal/dbmysql"
)

//go:generate mockgen -source=user_repository.go -destination=mock_user_repository.go -package=user

// AccountRepository is the credential store. Implementations return
// common.ErrNotFound for missing accounts and common.ErrDuplicateKey when the
// unique email index rejects an insert.
type AccountRepository interface {
	// CreateAccount assigns ID and timestamps on the passed account.
	CreateAccount(ctx context.Context, account *common.Account) error
	// GetAccountByID never loads the password hash.
	GetAccountByID(ctx context.Context, id string) (*common.Account, error)
	GetAccountByEmail(ctx context.Context, email string, withPassword bool) (*common.Account, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
}

type gormAccountRepository struct {
	db *gorm.DB
}

func NewGormAccountRepository(db *gorm.DB) AccountRepository {
	return &gormAccountRepository{db: db}
}

func (r *gormAccountRepository) CreateAccount(ctx context.Context, account *common.Account) error {
	row := &dbmysql.Account{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrDuplicateKey
		}
		return fmt.Errorf("create account: %w", err)
	}

	account.ID = row.ID
	account.CreatedAt = row.CreatedAt
	account.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *gormAccountRepository) GetAccountByID(ctx context.Context, id string) (*common.Account, error) {
	var row dbmysql.Account
	err := r.db.WithContext(ctx).Omit("password_hash").Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return row.ToDomain(false), nil
}

func (r *gormAccountRepository) GetAccountByEmail(ctx context.Context, email string, withPassword bool) (*common.Account, error) {
	var row dbmysql.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return row.ToDomain(withPassword), nil
}

func (r *gormAccountRepository) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Account{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	return fmt.Errorf("find account: %w", err)
}
