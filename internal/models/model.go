package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing field limits
const (
	MaxTitleLength       = 32
	MaxDescriptionLength = 200
	PricePlaces          = 2
)

// MaxPrice is the largest representable price: twelve digits, two of them fractional.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// Listing represents an item up for auction
type Listing struct {
	ListingID     string          `json:"listing_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url,omitempty"`
	Category      Category        `json:"category,omitempty"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	OwnerID       string          `json:"owner_id"`
	IsClosed      bool            `json:"is_closed"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewListing holds the caller-supplied fields of a listing before it is stored
type NewListing struct {
	Title         string
	Description   string
	StartingPrice decimal.Decimal
	ImageURL      string
	Category      string
	OwnerID       string
}

// Bid represents a user's bid on a listing. Bids are never mutated.
type Bid struct {
	BidID     string          `json:"bid_id"`
	ListingID string          `json:"listing_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// WatchlistEntry marks a listing as watched by a user
type WatchlistEntry struct {
	ListingID string    `json:"listing_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a message left by a user on a listing
type Comment struct {
	CommentID string    `json:"comment_id"`
	ListingID string    `json:"listing_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
