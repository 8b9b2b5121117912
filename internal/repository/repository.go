package repository

//go:generate mockgen -destination=mock_repository.go -package=repository auction-house/internal/repository AuctionDB,ListingTx

import (
	"context"

	"auction-house/internal/models"

	"github.com/shopspring/decimal"
)

// ListingStore holds listing records. Listings are returned as value snapshots.
type ListingStore interface {
	CreateListing(ctx context.Context, listing models.Listing) error
	GetListing(ctx context.Context, listingID string) (models.Listing, error)
	ListOpen(ctx context.Context) ([]models.Listing, error)
	ListClosed(ctx context.Context) ([]models.Listing, error)
	ListOpenByCategory(ctx context.Context, category models.Category) ([]models.Listing, error)
}

// BidLedger is the append-only record of bids per listing. Appends only happen
// inside a ListingTx.
type BidLedger interface {
	GetHighestBid(ctx context.Context, listingID string) (models.Bid, error)
	CountBids(ctx context.Context, listingID string) (int, error)
	GetBidsByListing(ctx context.Context, listingID string) ([]models.Bid, error)
	GetListingsByBidder(ctx context.Context, userID string) ([]models.Listing, error)
}

// ListingTx gives exclusive access to one listing's mutable state. Writes are
// staged and only become visible when the surrounding transaction commits.
type ListingTx interface {
	Listing() (models.Listing, error)
	HighestBid() (models.Bid, error)
	BidCount() (int, error)
	AppendBid(bid models.Bid) error
	UpdatePrice(price decimal.Decimal) error
	Close() error
}

// Transactor serializes work per listing id. fn's writes are committed when it
// returns nil and discarded otherwise.
type Transactor interface {
	WithListingTx(ctx context.Context, listingID string, fn func(tx ListingTx) error) error
}

// AuctionDB defines the storage the auction core needs
type AuctionDB interface {
	ListingStore
	BidLedger
	Transactor
}

// CommunityDB stores watchlist entries and comments
type CommunityDB interface {
	AddWatchlistEntry(ctx context.Context, entry models.WatchlistEntry) error
	RemoveWatchlistEntry(ctx context.Context, listingID, userID string) error
	IsWatching(ctx context.Context, listingID, userID string) (bool, error)
	GetWatchlist(ctx context.Context, userID string) ([]models.Listing, error)
	AddComment(ctx context.Context, comment models.Comment) error
	GetComments(ctx context.Context, listingID string) ([]models.Comment, error)
}

// Store is implemented by every backend
type Store interface {
	AuctionDB
	CommunityDB
	Close() error
}
