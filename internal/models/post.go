package models

import (
	"time"

	"github.com/lib/pq"
)

// Post types.
const (
	PostTypeNeed = "need"
	PostTypeSell = "sell"
)

// MaxPostImages caps how many images a single listing may carry.
const MaxPostImages = 3

// Post is a need-or-sell marketplace listing.
type Post struct {
	ID          int            `db:"id" json:"id"`
	OwnerID     int            `db:"owner_id" json:"owner_id"`
	OwnerEmail  string         `db:"owner_email" json:"owner_email"`
	Type        string         `db:"type" json:"type"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Price       *float64       `db:"price" json:"price,omitempty"`
	ImageURLs   pq.StringArray `db:"image_urls" json:"image_urls"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	ExpiresAt   *time.Time     `db:"expires_at" json:"expires_at,omitempty"`
}

// Expired reports whether the listing's expiry has passed. Posts with no
// expiry never expire.
func (p Post) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

// PostEvent is broadcast over the marketplace feed websocket.
type PostEvent struct {
	Type   string `json:"type"`
	Post   *Post  `json:"post,omitempty"`
	PostID int    `json:"post_id,omitempty"`
}
