package models

import (
	"errors"
	"fmt"
)

const MaxUsernameLength = 32

var ErrUsernameEmpty = errors.New("username must not be empty")
var ErrUsernameTooLong = fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
var ErrUsernameInvalidChars = errors.New("username must contain only alphanumeric characters, underscores, or hyphens")
var ErrPasswordEmpty = errors.New("password must not be empty")

// Account is a registered user. Accounts are never deleted; a ban is a
// flag, not a removal.
type Account struct {
	Username     string
	PasswordHash string
	Avatar       string
	Color        string
	Language     string
	Theme        string
	Role         Role
	Banned       bool
}

// Profile is the public view of an account, safe to send to clients.
type Profile struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Color    string `json:"color"`
	Language string `json:"language"`
	Theme    string `json:"theme"`
	Role     Role   `json:"role"`
}

// Profile returns the account's public fields. The password hash never
// leaves the credential store.
func (a *Account) Profile() Profile {
	return Profile{
		Username: a.Username,
		Avatar:   a.Avatar,
		Color:    a.Color,
		Language: a.Language,
		Theme:    a.Theme,
		Role:     a.Role,
	}
}

// ValidateUsername checks that a username is 1-32 ASCII alphanumeric,
// underscore, or hyphen characters.
func ValidateUsername(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' && r != '-' {
			return ErrUsernameInvalidChars
		}
	}
	return nil
}
