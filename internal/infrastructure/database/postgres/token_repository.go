package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pos-account-service/internal/database"
	"pos-account-service/internal/domain/account"
	"pos-account-service/internal/infrastructure/database/postgres/models"
	appErrors "pos-account-service/pkg/errors"
)

// tokenBytes yields a 40-character hex token.
const tokenBytes = 20

type TokenRepository struct {
	db *database.Database
}

func NewTokenRepository(db *database.Database) *TokenRepository {
	return &TokenRepository{db: db}
}

// Issue replaces whatever tokens the account holds with a single fresh one.
// Delete and insert run in one transaction so a concurrent login cannot
// leave two live tokens behind.
func (r *TokenRepository) Issue(ctx context.Context, accountID uuid.UUID) (*account.AuthToken, error) {
	value, err := generateTokenValue()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	m := &models.AuthTokenModel{
		ID:        uuid.New(),
		AccountID: accountID,
		Token:     value,
		CreatedAt: time.Now(),
	}

	err = r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", accountID).
			Delete(&models.AuthTokenModel{}).Error; err != nil {
			return err
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return models.TokenToDomain(m), nil
}

func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*account.AuthToken, error) {
	var m models.AuthTokenModel
	err := r.db.DB.WithContext(ctx).
		Where("token = ?", token).
		First(&m).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return models.TokenToDomain(&m), nil
}

func (r *TokenRepository) Delete(ctx context.Context, token string) error {
	result := r.db.DB.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.AuthTokenModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrInvalidToken
	}
	return nil
}

func (r *TokenRepository) DeleteForAccount(ctx context.Context, accountID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&models.AuthTokenModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete account tokens: %w", result.Error)
	}
	return nil
}

func generateTokenValue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
