package model

import "time"

// Link describes a short link issued by the reference service and stored in Postgres.
type Link struct {
	Code             string           `db:"code" gorm:"primaryKey;size:64"`
	URL              string           `db:"url" gorm:"type:text;not null"`
	ExpirationOption ExpirationOption `db:"expiration_option" gorm:"size:16;not null;default:never"`
	ExpiresAt        *time.Time       `db:"expires_at" gorm:"index"`
	CreatedAt        time.Time        `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `db:"updated_at" gorm:"autoUpdateTime"`
}

// Expired reports whether the link stopped being valid at now.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// LinkRequest is the normalized body of POST /api/shorten.
type LinkRequest struct {
	URL              string           `json:"url"`
	CustomAlias      string           `json:"customAlias"`
	ExpirationOption ExpirationOption `json:"expirationOption"`
	// ExpirationDate is a YYYY-MM-DD calendar date, present only for the custom option.
	ExpirationDate *string `json:"expirationDate"`
}

// LinkResult is what the workflow hands to the distribution channels.
type LinkResult struct {
	ShortURL              string
	ExpirationDescription string
}

// ShortenResponse is the success body of POST /api/shorten.
type ShortenResponse struct {
	ShortURL  string     `json:"shortUrl"`
	Code      string     `json:"code,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// ErrorResponse is the failure body shared by every endpoint.
type ErrorResponse struct {
	Error string `json:"error,omitempty"`
}
