package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// Password holds a bcrypt hash; RefreshToken holds the single active refresh
// token for the account, empty when no session is active.
type User struct {
	ID            string
	Username      string // stored lowercased
	Email         string
	Fullname      string
	Password      string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser is the caller-facing projection of a User. It never carries the
// password hash or the refresh token.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Fullname      string    `json:"fullname"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Public returns the sanitized view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Fullname:      u.Fullname,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// ChannelProfile is the aggregated channel view returned by GET /c/:username.
type ChannelProfile struct {
	Fullname        string    `json:"fullname"`
	Username        string    `json:"username"`
	SubscriberCount int64     `json:"subscriberCount"`
	SubscribedCount int64     `json:"subscriptionCount"`
	IsSubscribed    bool      `json:"isSubscribed"`
	AvatarURL       string    `json:"avatar"`
	CreatedAt       time.Time `json:"createdAt"`
}
