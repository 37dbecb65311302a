package account

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	domain "pos-account-service/internal/domain/account"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("gender", validateGender); err != nil {
		return
	}
	if err := validate.RegisterValidation("account_role", validateAccountRole); err != nil {
		return
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateGender(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case domain.GenderMale, domain.GenderFemale:
		return true
	}
	return false
}

func validateAccountRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case domain.RoleManager, domain.RoleCashier:
		return true
	}
	return false
}

// ValidationResult reports the outcome of a credential check together
// with every violated rule.
type ValidationResult struct {
	OK     bool
	Errors []string
}

func (r ValidationResult) Detail() string {
	return strings.Join(r.Errors, " ")
}

// CheckEmail verifies that the value is syntactically a valid email.
func CheckEmail(email string) ValidationResult {
	if err := validate.Var(email, "required,email"); err != nil {
		return ValidationResult{Errors: []string{"Enter a valid email address."}}
	}
	return ValidationResult{OK: true}
}

const passwordMinLength = 8

// A short list of passwords rejected outright. Checked case-insensitively.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"letmein123":  {},
	"iloveyou1":   {},
	"admin123":    {},
	"welcome1":    {},
	"sunshine1":   {},
	"football1":   {},
	"changeme1":   {},
	"abc12345":    {},
	"passw0rd":    {},
	"11111111":    {},
	"00000000":    {},
}

// CheckPassword applies the password policy and returns every violated
// rule. The optional attributes (email local part, profile names) feed
// the similarity check.
func CheckPassword(password string, attributes ...string) ValidationResult {
	if password == "" {
		return ValidationResult{Errors: []string{"Password cannot be None"}}
	}

	var violations []string

	if len(password) < passwordMinLength {
		violations = append(violations,
			"This password is too short. It must contain at least 8 characters.")
	}

	if isEntirelyNumeric(password) {
		violations = append(violations, "This password is entirely numeric.")
	}

	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		violations = append(violations, "This password is too common.")
	}

	if similarToAttributes(password, attributes) {
		violations = append(violations,
			"The password is too similar to your account details.")
	}

	if len(violations) > 0 {
		return ValidationResult{Errors: violations}
	}
	return ValidationResult{OK: true}
}

func isEntirelyNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similarToAttributes rejects passwords that contain, or are contained
// in, an account attribute of at least three characters.
func similarToAttributes(password string, attributes []string) bool {
	lower := strings.ToLower(password)
	for _, attr := range attributes {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if len(attr) < 3 {
			continue
		}
		if strings.Contains(lower, attr) || strings.Contains(attr, lower) {
			return true
		}
	}
	return false
}

// accountAttributes collects the fields the similarity check compares
// against: the email local part and the profile names.
func accountAttributes(email, firstName, lastName string) []string {
	attrs := []string{firstName, lastName}
	if at := strings.IndexByte(email, '@'); at > 0 {
		attrs = append(attrs, email[:at])
	}
	return attrs
}
