package auth

import "time"

// Device is a registered mobile client allowed to drive the recorder.
type Device struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SecretHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type LoginRequest struct {
	DeviceID string `json:"device_id"`
	Secret   string `json:"secret"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
