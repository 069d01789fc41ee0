package dbmysql

import (
	"time"

	"gochat/internal/common"
)

type Account struct {
	ID           string    `gorm:"primaryKey;column:id;size:36"`
	Email        string    `gorm:"column:email;uniqueIndex;size:255;not null"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}

// ToDomain drops the hash unless the caller asked for it.
func (a *Account) ToDomain(withPassword bool) *common.Account {
	account := &common.Account{
		ID:        a.ID,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if withPassword {
		account.PasswordHash = a.PasswordHash
	}
	return account
}
