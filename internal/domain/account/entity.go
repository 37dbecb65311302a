package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleManager = "manager"
	RoleCashier = "cashier"

	GenderMale   = "male"
	GenderFemale = "female"
)

// Default avatars served when a profile has no uploaded image.
const (
	defaultFemaleAvatarURL = "https://res.cloudinary.com/daf9tr3lf/image/upload/v1725024479/undraw_profile_female_dtvvym.svg"
	defaultMaleAvatarURL   = "https://res.cloudinary.com/daf9tr3lf/image/upload/v1725024497/undraw_profile_male_oovdba.svg"
)

// Account is the authenticable identity record. Code holds the pending
// 4-digit verification code and is nil except between a registration or
// reset request and a successful verification.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	IsStaff      bool
	IsActive     bool
	IsSuperuser  bool
	IsVerified   bool
	Code         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Account) IsManager() bool {
	return a.Role == RoleManager
}

func (a *Account) IsCashier() bool {
	return a.Role == RoleCashier
}

// Profile is the one-to-one display record attached to an Account. It is
// created together with the account and cascade-deleted with it.
type Profile struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	FirstName   string
	LastName    string
	PhoneNumber *string
	Address     string
	Gender      string
	BirthDate   *time.Time
	ImageURL    string
	Bio         *string
}

func (p *Profile) FullName() string {
	return titleCase(p.FirstName) + " " + titleCase(p.LastName)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// ResolveImageURL returns the stored image URL, or a gender-specific
// default avatar when no image was ever uploaded.
func (p *Profile) ResolveImageURL() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if p.Gender == GenderFemale {
		return defaultFemaleAvatarURL
	}
	return defaultMaleAvatarURL
}

// AuthToken is the opaque bearer credential for one session. At most one
// row exists per account; issuing a new token removes the previous ones.
type AuthToken struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Token     string
	CreatedAt time.Time
}
