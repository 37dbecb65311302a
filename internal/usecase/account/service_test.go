package account

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-account-service/internal/config"
	domain "pos-account-service/internal/domain/account"
	"pos-account-service/internal/logger"
	appErrors "pos-account-service/pkg/errors"
	"pos-account-service/pkg/utils"
)

func init() {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
}

// --- fakes ---

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*domain.Account
	profiles map[uuid.UUID]*domain.Profile
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: make(map[uuid.UUID]*domain.Account),
		profiles: make(map[uuid.UUID]*domain.Profile),
	}
}

func (f *fakeAccountRepo) CreateWithProfile(ctx context.Context, acc *domain.Account, profile *domain.Profile) error {
	for _, existing := range f.accounts {
		if strings.EqualFold(existing.Email, acc.Email) {
			return appErrors.ErrAccountExists
		}
	}
	acc.ID = uuid.New()
	acc.IsActive = true
	profile.ID = uuid.New()
	profile.AccountID = acc.ID

	accCopy := *acc
	profileCopy := *profile
	f.accounts[acc.ID] = &accCopy
	f.profiles[acc.ID] = &profileCopy
	return nil
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, acc := range f.accounts {
		if strings.EqualFold(acc.Email, email) {
			accCopy := *acc
			return &accCopy, nil
		}
	}
	return nil, appErrors.ErrAccountNotFound
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	acc, ok := f.accounts[accountID]
	if !ok {
		return nil, appErrors.ErrAccountNotFound
	}
	accCopy := *acc
	return &accCopy, nil
}

func (f *fakeAccountRepo) GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error) {
	profile, ok := f.profiles[accountID]
	if !ok {
		return nil, appErrors.ErrProfileNotFound
	}
	profileCopy := *profile
	return &profileCopy, nil
}

func (f *fakeAccountRepo) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	if _, ok := f.profiles[profile.AccountID]; !ok {
		return appErrors.ErrProfileNotFound
	}
	profileCopy := *profile
	f.profiles[profile.AccountID] = &profileCopy
	return nil
}

func (f *fakeAccountRepo) SetCode(ctx context.Context, accountID uuid.UUID, code *string) error {
	acc, ok := f.accounts[accountID]
	if !ok {
		return appErrors.ErrAccountNotFound
	}
	acc.Code = code
	return nil
}

func (f *fakeAccountRepo) MarkVerified(ctx context.Context, accountID uuid.UUID) error {
	acc, ok := f.accounts[accountID]
	if !ok {
		return appErrors.ErrAccountNotFound
	}
	acc.IsVerified = true
	acc.Code = nil
	return nil
}

func (f *fakeAccountRepo) SetPassword(ctx context.Context, accountID uuid.UUID, passwordHash string) error {
	acc, ok := f.accounts[accountID]
	if !ok {
		return appErrors.ErrAccountNotFound
	}
	acc.PasswordHash = passwordHash
	return nil
}

type fakeTokenRepo struct {
	byValue map[string]*domain.AuthToken
	issued  int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{byValue: make(map[string]*domain.AuthToken)}
}

func (f *fakeTokenRepo) Issue(ctx context.Context, accountID uuid.UUID) (*domain.AuthToken, error) {
	for value, token := range f.byValue {
		if token.AccountID == accountID {
			delete(f.byValue, value)
		}
	}
	f.issued++
	token := &domain.AuthToken{
		ID:        uuid.New(),
		AccountID: accountID,
		Token:     fmt.Sprintf("token-%d", f.issued),
	}
	f.byValue[token.Token] = token
	return token, nil
}

func (f *fakeTokenRepo) GetByToken(ctx context.Context, value string) (*domain.AuthToken, error) {
	token, ok := f.byValue[value]
	if !ok {
		return nil, appErrors.ErrInvalidToken
	}
	return token, nil
}

func (f *fakeTokenRepo) Delete(ctx context.Context, value string) error {
	if _, ok := f.byValue[value]; !ok {
		return appErrors.ErrInvalidToken
	}
	delete(f.byValue, value)
	return nil
}

func (f *fakeTokenRepo) DeleteForAccount(ctx context.Context, accountID uuid.UUID) error {
	for value, token := range f.byValue {
		if token.AccountID == accountID {
			delete(f.byValue, value)
		}
	}
	return nil
}

type fakeDispatcher struct {
	status int
	calls  []string
}

func (f *fakeDispatcher) Send(ctx context.Context, code, email string) int {
	f.calls = append(f.calls, code)
	if f.status == 0 {
		return http.StatusOK
	}
	return f.status
}

type fakeImageStore struct {
	url    string
	failed bool
	calls  int
}

func (f *fakeImageStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	f.calls++
	if f.failed {
		return "", fmt.Errorf("bucket unavailable")
	}
	if f.url != "" {
		return f.url, nil
	}
	return "https://img.example.com/" + key, nil
}

// --- helpers ---

type testEnv struct {
	service    *Service
	accounts   *fakeAccountRepo
	tokens     *fakeTokenRepo
	dispatcher *fakeDispatcher
	images     *fakeImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	accounts := newFakeAccountRepo()
	tokens := newFakeTokenRepo()
	dispatcher := &fakeDispatcher{}
	images := &fakeImageStore{}
	return &testEnv{
		service:    NewService(accounts, tokens, dispatcher, images, &config.Config{}),
		accounts:   accounts,
		tokens:     tokens,
		dispatcher: dispatcher,
		images:     images,
	}
}

func validRegisterRequest() *RegisterRequest {
	return &RegisterRequest{
		Email:     "a@x.com",
		Password:  "Str0ng!pw",
		Password2: "Str0ng!pw",
		FirstName: "Ann",
		LastName:  "Lee",
		Gender:    "female",
	}
}

func registerAccount(t *testing.T, env *testEnv) *RegisterResponse {
	t.Helper()
	resp, err := env.service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)
	return resp
}

// --- registration ---

func TestRegisterCreatesPendingAccountWithProfile(t *testing.T) {
	env := newTestEnv(t)

	resp := registerAccount(t, env)

	assert.Equal(t, "A verification code was sent to a@x.com", resp.Message)
	assert.Equal(t, "a@x.com", resp.Email)
	assert.False(t, resp.Permissions.IsSuperuser)
	assert.False(t, resp.Permissions.IsManager)
	assert.True(t, resp.Permissions.IsCashier)
	assert.Nil(t, resp.Permissions.IsVerified)

	require.Len(t, env.accounts.accounts, 1)
	require.Len(t, env.accounts.profiles, 1)

	acc := env.accounts.accounts[resp.UserID]
	require.NotNil(t, acc)
	assert.False(t, acc.IsVerified)
	require.NotNil(t, acc.Code)
	assert.Len(t, *acc.Code, 4)

	// the hash is stored, never the plain password
	assert.NotEqual(t, "Str0ng!pw", acc.PasswordHash)
	assert.True(t, utils.CheckPassword(acc.PasswordHash, "Str0ng!pw"))

	require.Len(t, env.dispatcher.calls, 1)
	assert.Equal(t, *acc.Code, env.dispatcher.calls[0])

	profile := env.accounts.profiles[resp.UserID]
	assert.Equal(t, "Ann", profile.FirstName)
	assert.Equal(t, "Lee", profile.LastName)
	assert.Equal(t, "female", profile.Gender)
}

func TestRegisterRejectsDuplicateEmailCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	registerAccount(t, env)

	req := validRegisterRequest()
	req.Email = "A@X.COM"
	_, err := env.service.Register(context.Background(), req)

	assert.ErrorIs(t, err, appErrors.ErrAccountExists)
	assert.Len(t, env.accounts.accounts, 1)
}

func TestRegisterFieldValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
		detail string
	}{
		{"missing email", func(r *RegisterRequest) { r.Email = "" }, "Email is a required field"},
		{"missing password", func(r *RegisterRequest) { r.Password = "" }, "Password is required"},
		{"missing confirm", func(r *RegisterRequest) { r.Password2 = "" }, "Confirm Password is required"},
		{"password mismatch", func(r *RegisterRequest) { r.Password2 = "other" }, "Passwords must match"},
		{"bad gender", func(r *RegisterRequest) { r.Gender = "robot" }, "Gender is required and must be either a male or female"},
		{"missing names", func(r *RegisterRequest) { r.FirstName = "" }, "First Name and Last Name are all required."},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, "Enter a valid email address."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := validRegisterRequest()
			tt.mutate(req)

			_, err := env.service.Register(context.Background(), req)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.detail)
			assert.Empty(t, env.accounts.accounts)
			assert.Empty(t, env.dispatcher.calls)
		})
	}
}

func TestRegisterRejectsWeakPasswords(t *testing.T) {
	tests := []struct {
		name     string
		password string
		detail   string
	}{
		{"too short", "Ab1!", "This password is too short. It must contain at least 8 characters."},
		{"numeric only", "84930283", "This password is entirely numeric."},
		{"common", "password123", "This password is too common."},
		{"similar to name", "annishere", "too similar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := validRegisterRequest()
			req.Password = tt.password
			req.Password2 = tt.password

			_, err := env.service.Register(context.Background(), req)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestRegisterSucceedsEvenWhenMailDispatchFails(t *testing.T) {
	env := newTestEnv(t)
	env.dispatcher.status = http.StatusBadGateway

	resp, err := env.service.Register(context.Background(), validRegisterRequest())

	require.NoError(t, err)
	assert.NotNil(t, env.accounts.accounts[resp.UserID])
}

// --- verification ---

func TestVerifyTransitionsExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)
	code := *env.accounts.accounts[resp.UserID].Code

	require.NoError(t, env.service.Verify(context.Background(), resp.UserID, code))

	acc := env.accounts.accounts[resp.UserID]
	assert.True(t, acc.IsVerified)
	assert.Nil(t, acc.Code)

	// the code was cleared; replaying it must fail
	err := env.service.Verify(context.Background(), resp.UserID, code)
	assert.ErrorIs(t, err, appErrors.ErrCodeMismatch)
}

func TestVerifyWrongCodeKeepsAccountPending(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)
	code := *env.accounts.accounts[resp.UserID].Code

	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	err := env.service.Verify(context.Background(), resp.UserID, wrong)
	assert.ErrorIs(t, err, appErrors.ErrCodeMismatch)

	acc := env.accounts.accounts[resp.UserID]
	assert.False(t, acc.IsVerified)
	assert.NotNil(t, acc.Code)
}

func TestVerifyUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	err := env.service.Verify(context.Background(), uuid.New(), "1234")
	assert.ErrorIs(t, err, appErrors.ErrAccountNotFound)
}

func TestResendCodeRegeneratesAndDispatches(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)
	first := *env.accounts.accounts[resp.UserID].Code

	status, err := env.service.ResendCode(context.Background(), resp.UserID)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, env.dispatcher.calls, 2)

	current := env.accounts.accounts[resp.UserID].Code
	require.NotNil(t, current)
	assert.Len(t, *current, 4)
	assert.Equal(t, *current, env.dispatcher.calls[1])
	_ = first // a regenerated code may rarely collide with the first
}

func TestResendCodeWorksOnVerifiedAccounts(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)
	require.NoError(t, env.service.Verify(context.Background(), resp.UserID, *env.accounts.accounts[resp.UserID].Code))

	status, err := env.service.ResendCode(context.Background(), resp.UserID)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	// resend attaches a code but does not flip verification state
	acc := env.accounts.accounts[resp.UserID]
	assert.True(t, acc.IsVerified)
	assert.NotNil(t, acc.Code)
}

func TestForgotPasswordSetsCodeAndReportsDispatchStatus(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)
	env.dispatcher.status = http.StatusRequestTimeout

	accountID, status, err := env.service.ForgotPassword(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, resp.UserID, accountID)
	assert.Equal(t, http.StatusRequestTimeout, status)
	assert.NotNil(t, env.accounts.accounts[resp.UserID].Code)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.service.ForgotPassword(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, appErrors.ErrEmailNotRegistered)
}

// --- login / logout ---

func TestLoginIssuesTokenAndRevokesPrior(t *testing.T) {
	env := newTestEnv(t)
	registerAccount(t, env)

	first, err := env.service.Login(context.Background(), &LoginRequest{Email: "a@x.com", Password: "Str0ng!pw"})
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)

	second, err := env.service.Login(context.Background(), &LoginRequest{Email: "a@x.com", Password: "Str0ng!pw"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = env.tokens.GetByToken(context.Background(), first.Token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = env.tokens.GetByToken(context.Background(), second.Token)
	assert.NoError(t, err)
}

func TestLoginSucceedsWhilePendingVerification(t *testing.T) {
	env := newTestEnv(t)
	registerAccount(t, env)

	resp, err := env.service.Login(context.Background(), &LoginRequest{Email: "a@x.com", Password: "Str0ng!pw"})

	require.NoError(t, err)
	require.NotNil(t, resp.Permissions.IsVerified)
	assert.False(t, *resp.Permissions.IsVerified)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	registerAccount(t, env)

	_, err := env.service.Login(context.Background(), &LoginRequest{Email: "a@x.com", Password: "Wr0ng!pass"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.service.Login(context.Background(), &LoginRequest{Email: "nobody@x.com", Password: "Str0ng!pw"})
	assert.ErrorIs(t, err, appErrors.ErrEmailNotRegistered)
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.service.Login(context.Background(), &LoginRequest{Email: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User email and password are required.")
}

func TestLogoutDeletesThenReissues(t *testing.T) {
	env := newTestEnv(t)
	registerAccount(t, env)
	login, err := env.service.Login(context.Background(), &LoginRequest{Email: "a@x.com", Password: "Str0ng!pw"})
	require.NoError(t, err)

	require.NoError(t, env.service.Logout(context.Background(), login.UserID, login.Token))

	// the presented token is gone ...
	_, err = env.tokens.GetByToken(context.Background(), login.Token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	// ... but a replacement token exists for the same account
	var live int
	for _, token := range env.tokens.byValue {
		if token.AccountID == login.UserID {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestLogoutUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)
	err := env.service.Logout(context.Background(), resp.UserID, "no-such-token")
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

// --- change password ---

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)
	ctx := context.Background()

	tests := []struct {
		name string
		req  ChangePasswordRequest
		want error
	}{
		{
			"wrong old password",
			ChangePasswordRequest{OldPassword: "Wr0ng!old", NewPassword: "N3w!secret", ConfirmNewPassword: "N3w!secret"},
			appErrors.ErrWrongOldPassword,
		},
		{
			"new equals old",
			ChangePasswordRequest{OldPassword: "Str0ng!pw", NewPassword: "Str0ng!pw", ConfirmNewPassword: "Str0ng!pw"},
			appErrors.ErrSamePassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.service.ChangePassword(ctx, resp.UserID, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("confirm mismatch", func(t *testing.T) {
		err := env.service.ChangePassword(ctx, resp.UserID, &ChangePasswordRequest{
			OldPassword: "Str0ng!pw", NewPassword: "N3w!secret", ConfirmNewPassword: "N3w!different",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Passwords do not match.")
	})

	t.Run("missing fields", func(t *testing.T) {
		err := env.service.ChangePassword(ctx, resp.UserID, &ChangePasswordRequest{OldPassword: "Str0ng!pw"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fields are required.")
	})

	t.Run("success rehashes", func(t *testing.T) {
		before := env.accounts.accounts[resp.UserID].PasswordHash

		err := env.service.ChangePassword(ctx, resp.UserID, &ChangePasswordRequest{
			OldPassword: "Str0ng!pw", NewPassword: "N3w!secret", ConfirmNewPassword: "N3w!secret",
		})
		require.NoError(t, err)

		after := env.accounts.accounts[resp.UserID].PasswordHash
		assert.NotEqual(t, before, after)
		assert.True(t, utils.CheckPassword(after, "N3w!secret"))
	})
}

// --- profile ---

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)

	profile, err := env.service.GetProfile(context.Background(), resp.UserID)

	require.NoError(t, err)
	assert.Equal(t, resp.UserID, profile.ID)
	assert.Equal(t, "a@x.com", profile.Email)
	assert.Equal(t, "Ann Lee", profile.FullName)
	assert.Equal(t, "Ann", profile.FirstName)
	// no image uploaded yet, the gendered default applies
	assert.Contains(t, profile.ImageURL, "undraw_profile_female")
	require.NotNil(t, profile.Permissions.IsVerified)
	assert.False(t, *profile.Permissions.IsVerified)
}

func TestUpdateProfilePartial(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)

	phone := "+1 555 0101"
	updated, err := env.service.UpdateProfile(context.Background(), resp.UserID, &UpdateProfileRequest{
		PhoneNumber: &phone,
	}, nil)

	require.NoError(t, err)
	require.NotNil(t, updated.PhoneNumber)
	assert.Equal(t, phone, *updated.PhoneNumber)
	// untouched fields keep their values
	assert.Equal(t, "Ann", updated.FirstName)
	assert.Equal(t, "Lee", updated.LastName)
	assert.Zero(t, env.images.calls)
}

func TestUpdateProfileWithImage(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)
	env.images.url = "https://img.example.com/profiles/p.png"

	updated, err := env.service.UpdateProfile(context.Background(), resp.UserID, &UpdateProfileRequest{}, &ProfileImage{
		ContentType: "image/png",
		Body:        strings.NewReader("fake-png-bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, env.images.calls)
	assert.Equal(t, "https://img.example.com/profiles/p.png", updated.ImageURL)
	assert.Equal(t, "https://img.example.com/profiles/p.png", env.accounts.profiles[resp.UserID].ImageURL)
}

func TestUpdateProfileImageUploadFailure(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAccount(t, env)
	env.images.failed = true

	_, err := env.service.UpdateProfile(context.Background(), resp.UserID, &UpdateProfileRequest{}, &ProfileImage{
		ContentType: "image/png",
		Body:        strings.NewReader("fake-png-bytes"),
	})

	require.Error(t, err)
	var upstreamErr *appErrors.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "image", upstreamErr.Service)
	// a failed upload leaves the stored profile untouched
	assert.Empty(t, env.accounts.profiles[resp.UserID].ImageURL)
}
