// Package validation holds the rule set a candidate user record must pass before it is stored.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"usermgmt/internal/models"

	"github.com/go-playground/validator/v10"
)

// AllowedEmailDomains are the only domains accepted for new registrations.
var AllowedEmailDomains = []string{"gmail.com", "hotmail.com"}

// PasswordSpecialChars is the set a password must draw at least one character from.
const PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`

var (
	reFullName = regexp.MustCompile(`^[A-Za-z\s]+$`)
	rePhone    = regexp.MustCompile(`^\+?\d{10,15}$`)
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// policyRules are the tags whose failure means "well formed but not allowed".
var policyRules = map[string]bool{
	"email_domain": true,
	"password":     true,
}

// Validator checks create requests. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the custom user rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]validator.Func{
		"fullname":     isFullName,
		"email_domain": hasAllowedDomain,
		"phone":        isPhone,
		"username":     isUsername,
		"password":     isStrongPassword,
	}
	for tag, fn := range rules {
		// Only fails on a bad tag name, which would be a programming error.
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	return &Validator{validate: v}
}

// ValidateCreate returns nil or a *models.ValidationError listing every failed field.
func (v *Validator) ValidateCreate(req models.CreateUserRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate user: %w", err)
	}

	out := &models.ValidationError{}
	for _, fe := range fieldErrs {
		out.Violations = append(out.Violations, models.FieldViolation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Kind:    kindOf(fe),
			Message: messageFor(fe),
		})
	}
	return out
}

func kindOf(fe validator.FieldError) models.ViolationKind {
	if policyRules[fe.Tag()] {
		return models.PolicyViolation
	}
	// Password length is part of the password policy.
	if fe.Field() == "password" && (fe.Tag() == "min" || fe.Tag() == "max") {
		return models.PolicyViolation
	}
	return models.InvalidFormat
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "fullname":
		return "must contain only letters and spaces"
	case "email":
		return "is not a valid email address"
	case "email_domain":
		return fmt.Sprintf("must be from %s", strings.Join(AllowedEmailDomains, " or "))
	case "phone":
		return "must be an optional '+' followed by 10 to 15 digits"
	case "username":
		return "must contain only letters, digits and underscores"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "password":
		s, _ := fe.Value().(string)
		return passwordProblem(s)
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}

func isFullName(fl validator.FieldLevel) bool {
	return reFullName.MatchString(fl.Field().String())
}

func hasAllowedDomain(fl validator.FieldLevel) bool {
	email := fl.Field().String()
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	for _, d := range AllowedEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

func isPhone(fl validator.FieldLevel) bool {
	return rePhone.MatchString(fl.Field().String())
}

func isUsername(fl validator.FieldLevel) bool {
	return reUsername.MatchString(fl.Field().String())
}

func isStrongPassword(fl validator.FieldLevel) bool {
	return passwordProblem(fl.Field().String()) == ""
}

// passwordProblem names the first missing character class, or "" when none is missing.
func passwordProblem(s string) string {
	var upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			special = true
		}
	}
	switch {
	case !upper:
		return "must contain at least one uppercase letter"
	case !digit:
		return "must contain at least one digit"
	case !special:
		return "must contain at least one special character"
	}
	return ""
}
