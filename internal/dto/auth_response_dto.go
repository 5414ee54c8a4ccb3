package dto

import "time"

// LoginResponse is returned after a successful login or token refresh.
// The refresh token itself travels in an HTTP-only cookie.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}
