package models

import "github.com/shopspring/decimal"

// BidStatus is the verdict of a bid admission
type BidStatus string

const (
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

// BidResult is the outcome of placing a bid. Bid is set when accepted,
// Reason when rejected.
type BidResult struct {
	Status BidStatus
	Bid    Bid
	Reason error
}

// Accepted reports whether the bid was admitted
func (r BidResult) Accepted() bool {
	return r.Status == BidAccepted
}

// Accept builds an accepted result
func Accept(bid Bid) BidResult {
	return BidResult{Status: BidAccepted, Bid: bid}
}

// Reject builds a rejected result
func Reject(reason error) BidResult {
	return BidResult{Status: BidRejected, Reason: reason}
}

// Resolution is the derived outcome of a closed auction
type Resolution struct {
	Sold     bool            `json:"sold"`
	WinnerID string          `json:"winner_id,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	BidID    string          `json:"bid_id,omitempty"`
}

// ListingView is what a given viewer is allowed to see of a listing
type ListingView struct {
	Listing    Listing     `json:"listing"`
	TotalBids  int         `json:"total_bids"`
	HighestBid *Bid        `json:"highest_bid,omitempty"`
	Resolution *Resolution `json:"resolution,omitempty"`

	ViewerIsSeller        bool `json:"viewer_is_seller"`
	ViewerIsBuyer         bool `json:"viewer_is_buyer"`
	ViewerIsHighestBidder bool `json:"viewer_is_highest_bidder"`
	NoBid                 bool `json:"no_bid"`

	OnWatchlist bool      `json:"on_watchlist"`
	Comments    []Comment `json:"comments,omitempty"`
}
