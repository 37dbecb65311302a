package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pos-account-service/internal/config"
	domain "pos-account-service/internal/domain/account"
	"pos-account-service/internal/logger"
	"pos-account-service/internal/mail"
	"pos-account-service/internal/storage"
	appErrors "pos-account-service/pkg/errors"
	"pos-account-service/pkg/utils"
)

// Service orchestrates the account lifecycle: registration, verification,
// login, profile updates, password changes and logout.
type Service struct {
	accounts   domain.Repository
	tokens     domain.TokenRepository
	dispatcher mail.Dispatcher
	images     storage.ImageStore
	config     *config.Config
}

func NewService(
	accounts domain.Repository,
	tokens domain.TokenRepository,
	dispatcher mail.Dispatcher,
	images storage.ImageStore,
	cfg *config.Config,
) *Service {
	return &Service{
		accounts:   accounts,
		tokens:     tokens,
		dispatcher: dispatcher,
		images:     images,
		config:     cfg,
	}
}

// Register creates an account in the pending-verification state together
// with its profile, then dispatches the verification code by mail. The
// response never contains the code or a token. A mail failure does not
// roll the account back; the resend endpoint covers that case.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if req.Email == "" {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Email is a required field", nil)
	}
	if req.Password == "" {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Password is required", nil)
	}
	if req.Password2 == "" {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Confirm Password is required", nil)
	}
	if req.Password != req.Password2 {
		return nil, appErrors.ErrPasswordMismatch
	}
	if req.Gender != domain.GenderMale && req.Gender != domain.GenderFemale {
		return nil, appErrors.NewAppError("VALIDATION_ERROR",
			"Gender is required and must be either a male or female", nil)
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, appErrors.NewAppError("VALIDATION_ERROR",
			"First Name and Last Name are all required.", nil)
	}
	if err := ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	if result := CheckEmail(req.Email); !result.OK {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", result.Detail(), nil)
	}
	attrs := accountAttributes(req.Email, req.FirstName, req.LastName)
	if result := CheckPassword(req.Password, attrs...); !result.OK {
		return nil, appErrors.NewAppError("WEAK_PASSWORD", result.Detail(), nil)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleCashier
	}

	code := mail.GenerateCode()
	acc := &domain.Account{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		Code:         &code,
	}
	profile := &domain.Profile{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Gender:      req.Gender,
		BirthDate:   parseBirthDate(req.BirthDate),
		Bio:         req.Bio,
	}

	if err := s.accounts.CreateWithProfile(ctx, acc, profile); err != nil {
		if errors.Is(err, appErrors.ErrAccountExists) {
			logger.Warn("Registration attempt with existing email",
				zap.String("email", req.Email),
			)
		}
		return nil, err
	}

	if status := s.dispatcher.Send(ctx, code, acc.Email); status != http.StatusOK {
		logger.Warn("Verification code dispatch failed after registration",
			zap.String("account_id", acc.ID.String()),
			zap.Int("status", status),
		)
	}

	return &RegisterResponse{
		Message:     fmt.Sprintf("A verification code was sent to %s", acc.Email),
		UserID:      acc.ID,
		Email:       acc.Email,
		Permissions: permissionsOf(acc, false),
	}, nil
}

// Verify transitions the account to verified when the supplied code
// matches the stored one, clearing the code so a second attempt with the
// same value fails. No attempt limiting is applied.
func (s *Service) Verify(ctx context.Context, accountID uuid.UUID, code string) error {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if acc.Code == nil || !mail.CodesMatch(*acc.Code, code) {
		return appErrors.ErrCodeMismatch
	}

	if err := s.accounts.MarkVerified(ctx, acc.ID); err != nil {
		return err
	}

	logger.Info("Account verified",
		zap.String("account_id", acc.ID.String()),
	)
	return nil
}

// ResendCode regenerates the verification code and dispatches it again,
// regardless of the account's current state. Returns the dispatch status.
func (s *Service) ResendCode(ctx context.Context, accountID uuid.UUID) (int, error) {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}

	code := mail.GenerateCode()
	if err := s.accounts.SetCode(ctx, acc.ID, &code); err != nil {
		return 0, err
	}

	return s.dispatcher.Send(ctx, code, acc.Email), nil
}

// ForgotPassword attaches a fresh code to the account and mails it,
// irrespective of verification state. Returns the account ID and the
// dispatch status.
func (s *Service) ForgotPassword(ctx context.Context, email string) (uuid.UUID, int, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, appErrors.ErrAccountNotFound) {
			return uuid.Nil, 0, appErrors.ErrEmailNotRegistered
		}
		return uuid.Nil, 0, err
	}

	code := mail.GenerateCode()
	if err := s.accounts.SetCode(ctx, acc.ID, &code); err != nil {
		return uuid.Nil, 0, err
	}

	return acc.ID, s.dispatcher.Send(ctx, code, acc.Email), nil
}

// Login checks credentials and issues a fresh token, revoking any prior
// ones. Pending verification does not block login; the is_verified flag
// in the permissions payload gates capabilities downstream.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, appErrors.NewAppError("VALIDATION_ERROR",
			"User email and password are required.", nil)
	}
	if result := CheckEmail(req.Email); !result.OK {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", result.Detail(), nil)
	}
	if result := CheckPassword(req.Password); !result.OK {
		return nil, appErrors.NewAppError("WEAK_PASSWORD", result.Detail(), nil)
	}

	acc, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, appErrors.ErrAccountNotFound) {
			return nil, appErrors.ErrEmailNotRegistered
		}
		return nil, err
	}

	if !utils.CheckPassword(acc.PasswordHash, req.Password) {
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:       token.Token,
		UserID:      acc.ID,
		Email:       acc.Email,
		Permissions: permissionsOf(acc, true),
	}, nil
}

// Logout deletes the presented token and immediately issues a
// replacement for the same account, matching the historical contract of
// this API.
func (s *Service) Logout(ctx context.Context, accountID uuid.UUID, token string) error {
	if err := s.tokens.Delete(ctx, token); err != nil {
		return err
	}

	if _, err := s.tokens.Issue(ctx, accountID); err != nil {
		return err
	}
	return nil
}

// ChangePassword rotates the credential for an authenticated account.
// The existing token stays valid.
func (s *Service) ChangePassword(ctx context.Context, accountID uuid.UUID, req *ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmNewPassword == "" {
		return appErrors.NewAppError("VALIDATION_ERROR",
			"old_password, new_password and confirm_new_password fields are required.", nil)
	}
	if req.NewPassword != req.ConfirmNewPassword {
		return appErrors.NewAppError("VALIDATION_ERROR", "Passwords do not match.", nil)
	}

	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if req.OldPassword == req.NewPassword {
		return appErrors.ErrSamePassword
	}
	if !utils.CheckPassword(acc.PasswordHash, req.OldPassword) {
		return appErrors.ErrWrongOldPassword
	}

	attrs := []string{}
	if profile, err := s.accounts.GetProfile(ctx, acc.ID); err == nil {
		attrs = accountAttributes(acc.Email, profile.FirstName, profile.LastName)
	} else {
		attrs = accountAttributes(acc.Email, "", "")
	}
	if result := CheckPassword(req.NewPassword, attrs...); !result.OK {
		return appErrors.NewAppError("WEAK_PASSWORD", result.Detail(), nil)
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.accounts.SetPassword(ctx, acc.ID, passwordHash)
}

func (s *Service) GetProfile(ctx context.Context, accountID uuid.UUID) (*ProfileResponse, error) {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	profile, err := s.accounts.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(acc, profile), nil
}

// UpdateProfile applies a partial update; absent fields keep their
// previous values. An optional image is written to the image store first
// and the profile keeps the resulting URL.
func (s *Service) UpdateProfile(ctx context.Context, accountID uuid.UUID, req *UpdateProfileRequest, image *ProfileImage) (*ProfileDetailResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	profile, err := s.accounts.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if image != nil {
		url, err := s.images.Upload(ctx, storage.ImageKey(), image.ContentType, image.Body)
		if err != nil {
			logger.Error("Profile image upload failed",
				zap.String("account_id", accountID.String()),
				zap.Error(err),
			)
			return nil, appErrors.NewUpstreamError("image", http.StatusInternalServerError)
		}
		profile.ImageURL = url
	}

	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		profile.Address = *req.Address
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.BirthDate != nil {
		profile.BirthDate = parseBirthDate(req.BirthDate)
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}

	if err := s.accounts.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	return toProfileDetailResponse(profile), nil
}
