package models

import "time"

// DateLayout is the wire and storage format of date_of_birth.
const DateLayout = "2006-01-02"

// User is a stored user profile. It never carries the password.
type User struct {
	ID                    string  `json:"user_id"`
	FullName              string  `json:"full_name"`
	Email                 string  `json:"email"`
	PhoneNumber           *string `json:"phone_number"`
	Username              *string `json:"username"`
	DateOfBirth           *string `json:"date_of_birth"`
	Gender                *string `json:"gender"`
	Country               *string `json:"country"`
	City                  *string `json:"city"`
	AcceptMarketingEmails bool    `json:"accept_marketing_emails"`
}

// CreateUserRequest is the body of a create call. Password is validated and then dropped.
type CreateUserRequest struct {
	FullName              string  `json:"full_name" validate:"required,min=3,max=100,fullname"`
	Email                 string  `json:"email" validate:"required,email,email_domain"`
	PhoneNumber           *string `json:"phone_number" validate:"omitnil,phone"`
	Username              *string `json:"username" validate:"omitnil,min=3,max=30,username"`
	DateOfBirth           *string `json:"date_of_birth" validate:"omitnil,datetime=2006-01-02"`
	Gender                *string `json:"gender" validate:"omitnil,oneof=male female other"`
	Country               *string `json:"country" validate:"omitnil,min=2,max=100"`
	City                  *string `json:"city" validate:"omitnil,min=2,max=100"`
	AcceptMarketingEmails bool    `json:"accept_marketing_emails"`
	Password              string  `json:"password" validate:"required,min=8,max=128,password"`
}

// UserResponse is what the API returns: the stored user plus the age derived at read time.
type UserResponse struct {
	User
	Age *int `json:"age"`
}

// UserFilter narrows a list call. Nil fields do not filter.
type UserFilter struct {
	Country *string
	MinAge  *int
	MaxAge  *int
}

// HasAgeBound reports whether either age bound is set.
func (f UserFilter) HasAgeBound() bool {
	return f.MinAge != nil || f.MaxAge != nil
}

// NewUser builds the stored record for a validated request.
func NewUser(id string, req CreateUserRequest) User {
	return User{
		ID:                    id,
		FullName:              req.FullName,
		Email:                 req.Email,
		PhoneNumber:           req.PhoneNumber,
		Username:              req.Username,
		DateOfBirth:           req.DateOfBirth,
		Gender:                req.Gender,
		Country:               req.Country,
		City:                  req.City,
		AcceptMarketingEmails: req.AcceptMarketingEmails,
	}
}

// Response renders u with its age as of today.
func (u User) Response(today time.Time) UserResponse {
	return UserResponse{User: u, Age: AgeOn(u.DateOfBirth, today)}
}

// AgeOn returns the age in whole years on the given day, or nil when dob is unset or unparsable.
func AgeOn(dob *string, today time.Time) *int {
	if dob == nil {
		return nil
	}
	born, err := time.Parse(DateLayout, *dob)
	if err != nil {
		return nil
	}
	years := today.Year() - born.Year()
	if today.Month() < born.Month() || (today.Month() == born.Month() && today.Day() < born.Day()) {
		years--
	}
	return &years
}
