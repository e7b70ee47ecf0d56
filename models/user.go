// Package models holds the domain types shared by every layer: database rows,
// API payloads and their validation rules.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// UserStatus is the presence state shown next to a member.
type UserStatus string

const (
	UserStatusOnline  UserStatus = "online"
	UserStatusOffline UserStatus = "offline"
)

// User is a forum member. Counters are denormalized so the top-10 lists
// do not have to aggregate the message table on every request.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	DisplayName  *string    `json:"display_name"`
	AvatarURL    *string    `json:"avatar_url"`
	PasswordHash string     `json:"-"` // never leaves the server
	Status       UserStatus `json:"status"`
	IsModerator  bool       `json:"is_moderator"`
	Language     string     `json:"language"`
	PostCount    int        `json:"post_count"`
	LoginCount   int        `json:"login_count"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UserStat is one row of a top-10 ranking.
type UserStat struct {
	UserID      int64   `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	Score       int     `json:"score"`
}

// CreateUserRequest is the registration payload. Registration is gated by
// a captcha problem issued earlier by GET /api/captcha.
type CreateUserRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	DisplayName   string `json:"display_name"`
	CaptchaID     string `json:"captcha_id"`
	CaptchaAnswer string `json:"captcha_answer"`
}

// Validate checks the registration payload:
//   - Username: 3-32 characters, letters, digits and underscore
//   - Password: at least 8 characters
//   - DisplayName: optional, at most 32 characters
//   - Captcha: id and answer are both required
func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	usernameLen := utf8.RuneCountInString(r.Username)
	if usernameLen < 3 || usernameLen > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}

	for _, ch := range r.Username {
		if !isValidUsernameChar(ch) {
			return fmt.Errorf("username can only contain letters, numbers, and underscores")
		}
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if utf8.RuneCountInString(r.DisplayName) > 32 {
		return fmt.Errorf("display name must be at most 32 characters")
	}

	r.CaptchaID = strings.TrimSpace(r.CaptchaID)
	r.CaptchaAnswer = strings.TrimSpace(r.CaptchaAnswer)
	if r.CaptchaID == "" || r.CaptchaAnswer == "" {
		return fmt.Errorf("captcha answer is required")
	}

	return nil
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
