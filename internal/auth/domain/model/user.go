package model

import (
	"time"
)

// User is an account known to the auth service
type User struct {
	UID           string                 `json:"uid" bson:"_id"`
	Email         string                 `json:"email,omitempty" bson:"email,omitempty"`
	EmailVerified bool                   `json:"emailVerified" bson:"email_verified"`
	DisplayName   string                 `json:"displayName,omitempty" bson:"display_name,omitempty"`
	PhoneNumber   string                 `json:"phoneNumber,omitempty" bson:"phone_number,omitempty"`
	PhotoURL      string                 `json:"photoURL,omitempty" bson:"photo_url,omitempty"`
	Disabled      bool                   `json:"disabled" bson:"disabled"`
	CustomClaims  map[string]interface{} `json:"customClaims,omitempty" bson:"custom_claims,omitempty"`
	PasswordHash  string                 `json:"-" bson:"password_hash,omitempty"`
	CreatedAt     time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time              `json:"updatedAt,omitempty" bson:"updated_at"`
	LastSignInAt  time.Time              `json:"lastSignInAt,omitempty" bson:"last_sign_in_at,omitempty"`

	// UsedActionCodes maps the id of each redeemed action code to its expiry.
	UsedActionCodes map[string]time.Time `json:"-" bson:"used_action_codes,omitempty"`
}

// UserToCreate carries the attributes of a new account. An empty UID asks the
// service to generate one.
type UserToCreate struct {
	UID           string `json:"uid,omitempty"`
	Email         string `json:"email,omitempty"`
	Password      string `json:"password,omitempty"`
	EmailVerified bool   `json:"emailVerified,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	PhotoURL      string `json:"photoURL,omitempty"`
	Disabled      bool   `json:"disabled,omitempty"`
}

// UserToUpdate lists the attributes to change; nil fields are left alone.
type UserToUpdate struct {
	Email         *string                `json:"email,omitempty"`
	Password      *string                `json:"password,omitempty"`
	EmailVerified *bool                  `json:"emailVerified,omitempty"`
	DisplayName   *string                `json:"displayName,omitempty"`
	PhoneNumber   *string                `json:"phoneNumber,omitempty"`
	PhotoURL      *string                `json:"photoURL,omitempty"`
	Disabled      *bool                  `json:"disabled,omitempty"`
	CustomClaims  map[string]interface{} `json:"customClaims,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u *UserToUpdate) IsEmpty() bool {
	return u == nil || (u.Email == nil && u.Password == nil && u.EmailVerified == nil &&
		u.DisplayName == nil && u.PhoneNumber == nil && u.PhotoURL == nil &&
		u.Disabled == nil && u.CustomClaims == nil)
}

// UserPage is one page of ListUsers. An empty NextPageToken ends the listing.
type UserPage struct {
	Users         []*User `json:"users"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}
