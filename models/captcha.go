package models

import "time"

// CaptchaChallenge is a problem handed to an anonymous client. The answer
// stays on the server, keyed by ID.
type CaptchaChallenge struct {
	ID        string    `json:"captcha_id"`
	Question  string    `json:"question"`
	ExpiresAt time.Time `json:"expires_at"`
}
