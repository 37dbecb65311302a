package models

import (
	"time"

	"github.com/google/uuid"

	"pos-account-service/internal/domain/account"
)

// AccountModel is the database model for Account.
type AccountModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(10);not null;default:'cashier'"`
	IsStaff      bool      `gorm:"default:false;not null"`
	IsActive     bool      `gorm:"default:true;not null"`
	IsSuperuser  bool      `gorm:"default:false;not null"`
	IsVerified   bool      `gorm:"default:false;not null"`
	Code         *string   `gorm:"type:varchar(4)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`

	Profile ProfileModel `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

// ProfileModel is the database model for Profile.
type ProfileModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AccountID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	FirstName   string     `gorm:"type:varchar(100)"`
	LastName    string     `gorm:"type:varchar(100)"`
	PhoneNumber *string    `gorm:"type:varchar(100)"`
	Address     string     `gorm:"type:varchar(100)"`
	Gender      string     `gorm:"type:varchar(6);default:'male'"`
	BirthDate   *time.Time `gorm:"type:date"`
	ImageURL    string     `gorm:"type:text"`
	Bio         *string    `gorm:"type:text"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}

// AuthTokenModel is the database model for AuthToken.
type AuthTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

func (AuthTokenModel) TableName() string {
	return "auth_tokens"
}

func AccountToDomain(m *AccountModel) *account.Account {
	return &account.Account{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		IsStaff:      m.IsStaff,
		IsActive:     m.IsActive,
		IsSuperuser:  m.IsSuperuser,
		IsVerified:   m.IsVerified,
		Code:         m.Code,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func AccountFromDomain(a *account.Account) *AccountModel {
	return &AccountModel{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Role:         a.Role,
		IsStaff:      a.IsStaff,
		IsActive:     a.IsActive,
		IsSuperuser:  a.IsSuperuser,
		IsVerified:   a.IsVerified,
		Code:         a.Code,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func ProfileToDomain(m *ProfileModel) *account.Profile {
	return &account.Profile{
		ID:          m.ID,
		AccountID:   m.AccountID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		PhoneNumber: m.PhoneNumber,
		Address:     m.Address,
		Gender:      m.Gender,
		BirthDate:   m.BirthDate,
		ImageURL:    m.ImageURL,
		Bio:         m.Bio,
	}
}

func ProfileFromDomain(p *account.Profile) *ProfileModel {
	return &ProfileModel{
		ID:          p.ID,
		AccountID:   p.AccountID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PhoneNumber: p.PhoneNumber,
		Address:     p.Address,
		Gender:      p.Gender,
		BirthDate:   p.BirthDate,
		ImageURL:    p.ImageURL,
		Bio:         p.Bio,
	}
}

func TokenToDomain(m *AuthTokenModel) *account.AuthToken {
	return &account.AuthToken{
		ID:        m.ID,
		AccountID: m.AccountID,
		Token:     m.Token,
		CreatedAt: m.CreatedAt,
	}
}
