package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pos-account-service/internal/database"
	"pos-account-service/internal/domain/account"
	"pos-account-service/internal/infrastructure/database/postgres/models"
	appErrors "pos-account-service/pkg/errors"
)

type AccountRepository struct {
	db *database.Database
}

func NewAccountRepository(db *database.Database) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) CreateWithProfile(ctx context.Context, acc *account.Account, profile *account.Profile) error {
	acc.ID = uuid.New()
	acc.CreatedAt = time.Now()
	acc.UpdatedAt = time.Now()
	acc.IsActive = true

	profile.ID = uuid.New()
	profile.AccountID = acc.ID

	accModel := models.AccountFromDomain(acc)
	profileModel := models.ProfileFromDomain(profile)

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(accModel).Error; err != nil {
			return err
		}
		return tx.Create(profileModel).Error
	})
	if err != nil {
		errStr := strings.ToLower(err.Error())
		if strings.Contains(errStr, "duplicate key") && strings.Contains(errStr, "email") {
			return appErrors.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var m models.AccountModel
	err := r.db.DB.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		First(&m).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return models.AccountToDomain(&m), nil
}

func (r *AccountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	var m models.AccountModel
	err := r.db.DB.WithContext(ctx).First(&m, "id = ?", accountID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return models.AccountToDomain(&m), nil
}

func (r *AccountRepository) GetProfile(ctx context.Context, accountID uuid.UUID) (*account.Profile, error) {
	var m models.ProfileModel
	err := r.db.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&m).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return models.ProfileToDomain(&m), nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, profile *account.Profile) error {
	result := r.db.DB.WithContext(ctx).Model(&models.ProfileModel{}).
		Where("account_id = ?", profile.AccountID).
		Updates(map[string]interface{}{
			"first_name":   profile.FirstName,
			"last_name":    profile.LastName,
			"phone_number": profile.PhoneNumber,
			"address":      profile.Address,
			"gender":       profile.Gender,
			"birth_date":   profile.BirthDate,
			"image_url":    profile.ImageURL,
			"bio":          profile.Bio,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrProfileNotFound
	}
	return nil
}

func (r *AccountRepository) SetCode(ctx context.Context, accountID uuid.UUID, code *string) error {
	result := r.db.DB.WithContext(ctx).Model(&models.AccountModel{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"code":       code,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to set verification code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) MarkVerified(ctx context.Context, accountID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Model(&models.AccountModel{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"is_verified": true,
			"code":        nil,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark account verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) SetPassword(ctx context.Context, accountID uuid.UUID, passwordHash string) error {
	result := r.db.DB.WithContext(ctx).Model(&models.AccountModel{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrAccountNotFound
	}
	return nil
}
