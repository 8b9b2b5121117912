package biddingerrors

import "errors"

// Repository-level errors
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNoBids          = errors.New("no bids found for listing")
	ErrUserNoBids      = errors.New("user has not placed any bids")
)

// ErrInvariantViolation means a caller tried to lower a listing's price.
// It never happens when every price update goes through the bid validator.
var ErrInvariantViolation = errors.New("invariant violation")

// input errors
var (
	ErrValidation      = errors.New("validation error")
	ErrInvalidCategory = errors.New("invalid category")
	ErrUnauthenticated = errors.New("user identity required")
)

// bid admission rejections
var (
	ErrAuctionClosed    = errors.New("auction is closed")
	ErrInvalidAmount    = errors.New("invalid bid amount")
	ErrSelfBidForbidden = errors.New("owner cannot bid on own listing")
	ErrBidTooLow        = errors.New("bid amount too low")
)

// auction lifecycle errors
var (
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyClosed = errors.New("listing already closed")
	ErrAuctionOpen   = errors.New("auction is still open")
)

// watchlist errors
var (
	ErrAlreadyWatching = errors.New("listing already on watchlist")
	ErrNotWatching     = errors.New("listing not on watchlist")
)
