package model

import "time"

// Token is a verified id token or session cookie
type Token struct {
	UID       string                 `json:"uid"`
	Email     string                 `json:"email,omitempty"`
	Issuer    string                 `json:"iss"`
	IssuedAt  time.Time              `json:"iat"`
	ExpiresAt time.Time              `json:"exp"`
	Claims    map[string]interface{} `json:"claims,omitempty"`
}

// SignInResult is returned by password sign-in on the self-hosted backend
type SignInResult struct {
	User      *User     `json:"user"`
	IDToken   string    `json:"idToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}
