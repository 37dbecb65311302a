package account

import (
	"io"
	"time"

	"github.com/google/uuid"

	domain "pos-account-service/internal/domain/account"
)

type RegisterRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Password2   string  `json:"password2"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Gender      string  `json:"gender" validate:"omitempty,gender"`
	Address     string  `json:"address"`
	BirthDate   *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Bio         *string `json:"bio"`
	Role        string  `json:"role" validate:"omitempty,account_role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Code   string `json:"code" validate:"required"`
}

type ResendCodeRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

// UpdateProfileRequest carries partial profile updates. Nil fields keep
// their previous values.
type UpdateProfileRequest struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Address     *string
	Gender      *string `validate:"omitempty,gender"`
	BirthDate   *string `validate:"omitempty,datetime=2006-01-02"`
	Bio         *string
}

// ProfileImage is an uploaded image stream handed to the image store.
type ProfileImage struct {
	ContentType string
	Body        io.Reader
}

// Permissions mirrors the permission flags the API attaches to account
// payloads. IsVerified is omitted where the original payload omits it.
type Permissions struct {
	IsSuperuser bool  `json:"is_superuser"`
	IsManager   bool  `json:"is_manager"`
	IsCashier   bool  `json:"is_cashier"`
	IsVerified  *bool `json:"is_verified,omitempty"`
}

type RegisterResponse struct {
	Message     string      `json:"message"`
	UserID      uuid.UUID   `json:"user_id"`
	Email       string      `json:"email"`
	Permissions Permissions `json:"permissions"`
}

type LoginResponse struct {
	Token       string      `json:"token"`
	UserID      uuid.UUID   `json:"user_id"`
	Email       string      `json:"email"`
	Permissions Permissions `json:"permissions"`
}

type ProfileResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	BirthDate   *string     `json:"birth_date"`
	ImageURL    string      `json:"image_url"`
	Bio         *string     `json:"bio"`
	Role        string      `json:"role"`
	Permissions Permissions `json:"permissions"`
}

type ProfileDetailResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber *string   `json:"phone_number"`
	Address     string    `json:"address"`
	Gender      string    `json:"gender"`
	BirthDate   *string   `json:"birth_date"`
	ImageURL    string    `json:"image"`
	Bio         *string   `json:"bio"`
}

const birthDateLayout = "2006-01-02"

func permissionsOf(acc *domain.Account, includeVerified bool) Permissions {
	p := Permissions{
		IsSuperuser: acc.IsSuperuser,
		IsManager:   acc.IsManager(),
		IsCashier:   acc.IsCashier(),
	}
	if includeVerified {
		verified := acc.IsVerified
		p.IsVerified = &verified
	}
	return p
}

func formatBirthDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(birthDateLayout)
	return &s
}

func parseBirthDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(birthDateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

func toProfileResponse(acc *domain.Account, profile *domain.Profile) *ProfileResponse {
	return &ProfileResponse{
		ID:          acc.ID,
		Email:       acc.Email,
		FullName:    profile.FullName(),
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		BirthDate:   formatBirthDate(profile.BirthDate),
		ImageURL:    profile.ResolveImageURL(),
		Bio:         profile.Bio,
		Role:        acc.Role,
		Permissions: permissionsOf(acc, true),
	}
}

func toProfileDetailResponse(profile *domain.Profile) *ProfileDetailResponse {
	return &ProfileDetailResponse{
		ID:          profile.ID,
		UserID:      profile.AccountID,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		PhoneNumber: profile.PhoneNumber,
		Address:     profile.Address,
		Gender:      profile.Gender,
		BirthDate:   formatBirthDate(profile.BirthDate),
		ImageURL:    profile.ImageURL,
		Bio:         profile.Bio,
	}
}
