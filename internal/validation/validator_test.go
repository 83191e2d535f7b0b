package validation_test

import (
	"errors"
	"strings"
	"testing"

	"usermgmt/internal/models"
	"usermgmt/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validRequest() models.CreateUserRequest {
	return models.CreateUserRequest{
		FullName: "Jane Doe",
		Email:    "jane@gmail.com",
		Password: "Secret1!",
	}
}

// violations runs the validator and returns the reported violations keyed by field.
func violations(t *testing.T, req models.CreateUserRequest) map[string]models.FieldViolation {
	t.Helper()
	err := validation.New().ValidateCreate(req)
	if err == nil {
		return nil
	}
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr), "expected *models.ValidationError, got %T", err)
	out := make(map[string]models.FieldViolation, len(verr.Violations))
	for _, v := range verr.Violations {
		out[v.Field] = v
	}
	return out
}

func TestValidateCreate_ValidRequest(t *testing.T) {
	req := validRequest()
	req.PhoneNumber = strPtr("+14155552671")
	req.Username = strPtr("jane_doe42")
	req.DateOfBirth = strPtr("1990-05-17")
	req.Gender = strPtr("female")
	req.Country = strPtr("Portugal")
	req.City = strPtr("Porto")

	assert.Nil(t, violations(t, req))
}

func TestValidateCreate_FullNameBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"exactly 3", "Ann", true},
		{"exactly 100", strings.Repeat("a", 50) + " " + strings.Repeat("b", 49), true},
		{"2 chars", "Al", false},
		{"101 chars", strings.Repeat("c", 101), false},
		{"digits", "Jane Doe 2", false},
		{"punctuation", "Jane-Doe", false},
		{"accented letters", "José Müller", false},
		{"non-latin letters", "Иван Петров", false},
		{"tab separated", "Jane\tDoe", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.FullName = tt.value
			got := violations(t, req)
			if tt.ok {
				assert.NotContains(t, got, "full_name")
				return
			}
			require.Contains(t, got, "full_name")
			assert.Equal(t, models.InvalidFormat, got["full_name"].Kind)
		})
	}
}

func TestValidateCreate_Email(t *testing.T) {
	req := validRequest()
	req.Email = "jane@yahoo.com"
	got := violations(t, req)
	require.Contains(t, got, "email")
	assert.Equal(t, models.PolicyViolation, got["email"].Kind)
	assert.Equal(t, "email_domain", got["email"].Rule)

	req.Email = "not-an-email"
	got = violations(t, req)
	require.Contains(t, got, "email")
	assert.Equal(t, models.InvalidFormat, got["email"].Kind)

	req.Email = "jane@hotmail.com"
	assert.Nil(t, violations(t, req))

	req.Email = "jane@GMAIL.com"
	assert.Nil(t, violations(t, req))
}

func TestValidateCreate_OptionalFields(t *testing.T) {
	tests := []struct {
		name  string
		field string
		apply func(*models.CreateUserRequest)
	}{
		{"phone too short", "phone_number", func(r *models.CreateUserRequest) { r.PhoneNumber = strPtr("+12345") }},
		{"phone too long", "phone_number", func(r *models.CreateUserRequest) { r.PhoneNumber = strPtr("1234567890123456") }},
		{"phone letters", "phone_number", func(r *models.CreateUserRequest) { r.PhoneNumber = strPtr("12345abcde") }},
		{"username short", "username", func(r *models.CreateUserRequest) { r.Username = strPtr("ab") }},
		{"username symbols", "username", func(r *models.CreateUserRequest) { r.Username = strPtr("jane.doe") }},
		{"gender unknown", "gender", func(r *models.CreateUserRequest) { r.Gender = strPtr("unknown") }},
		{"country short", "country", func(r *models.CreateUserRequest) { r.Country = strPtr("P") }},
		{"city long", "city", func(r *models.CreateUserRequest) { r.City = strPtr(strings.Repeat("x", 101)) }},
		{"date malformed", "date_of_birth", func(r *models.CreateUserRequest) { r.DateOfBirth = strPtr("17/05/1990") }},
		{"date impossible", "date_of_birth", func(r *models.CreateUserRequest) { r.DateOfBirth = strPtr("1990-02-30") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.apply(&req)
			got := violations(t, req)
			require.Contains(t, got, tt.field)
			assert.Equal(t, models.InvalidFormat, got[tt.field].Kind)
		})
	}
}

func TestValidateCreate_PhoneAccepted(t *testing.T) {
	for _, phone := range []string{"0123456789", "+123456789012345", "441234567890"} {
		req := validRequest()
		req.PhoneNumber = strPtr(phone)
		assert.Nil(t, violations(t, req), phone)
	}
}

func TestValidateCreate_PasswordPolicy(t *testing.T) {
	tests := []struct {
		password string
		message  string
	}{
		{"Sh0rt!", "at least 8"},
		{"secret1!", "uppercase"},
		{"Secret!!", "digit"},
		{"Secret12", "special"},
		{"A1!" + strings.Repeat("a", 126), "at most 128"},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			req := validRequest()
			req.Password = tt.password
			got := violations(t, req)
			require.Contains(t, got, "password")
			assert.Equal(t, models.PolicyViolation, got["password"].Kind)
			assert.Contains(t, got["password"].Message, tt.message)
		})
	}
}

func TestValidateCreate_CollectsEveryViolation(t *testing.T) {
	req := models.CreateUserRequest{FullName: "J", Email: "jane@yahoo.com"}
	got := violations(t, req)
	assert.Len(t, got, 3)
	assert.Equal(t, "required", got["password"].Rule)

	err := validation.New().ValidateCreate(req)
	assert.Contains(t, err.Error(), "full_name")
}
