package helpers

import (
	"time"

	"auction-house/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type CreateListingRequest struct {
	Title         string          `json:"title" binding:"required,max=32"`
	Description   string          `json:"description" binding:"required,max=200"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	ImageURL      string          `json:"image_url" binding:"omitempty,url"`
	Category      string          `json:"category"`
}

type CommentRequest struct {
	Message string `json:"message" binding:"required"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	ListingID string `json:"listing_id"`
	BidderID  string `json:"bidder_id"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type ListingResponse struct {
	ListingID     string `json:"listing_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url,omitempty"`
	Category      string `json:"category,omitempty"`
	CategoryLabel string `json:"category_label,omitempty"`
	StartingPrice string `json:"starting_price"`
	CurrentPrice  string `json:"current_price"`
	OwnerID       string `json:"owner_id"`
	IsClosed      bool   `json:"is_closed"`
	CreatedAt     string `json:"created_at"`
}

type ResolutionResponse struct {
	Sold     bool   `json:"sold"`
	WinnerID string `json:"winner_id,omitempty"`
	Amount   string `json:"amount,omitempty"`
	BidID    string `json:"bid_id,omitempty"`
}

type ListingViewResponse struct {
	Listing               ListingResponse     `json:"listing"`
	TotalBids             int                 `json:"total_bids"`
	HighestBid            *BidResponse        `json:"highest_bid,omitempty"`
	Resolution            *ResolutionResponse `json:"resolution,omitempty"`
	ViewerIsSeller        bool                `json:"viewer_is_seller"`
	ViewerIsBuyer         bool                `json:"viewer_is_buyer"`
	ViewerIsHighestBidder bool                `json:"viewer_is_highest_bidder"`
	NoBid                 bool                `json:"no_bid"`
	OnWatchlist           bool                `json:"on_watchlist"`
	Comments              []models.Comment    `json:"comments"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(models.PricePlaces)
}

// ToBidResponse converts a bid for the wire
func ToBidResponse(b models.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		ListingID: b.ListingID,
		BidderID:  b.BidderID,
		Amount:    formatPrice(b.Amount),
		CreatedAt: formatTime(b.CreatedAt),
	}
}

// ToBidResponses converts a bid slice, never returning nil
func ToBidResponses(bids []models.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

// ToListingResponse converts a listing for the wire
func ToListingResponse(l models.Listing) ListingResponse {
	return ListingResponse{
		ListingID:     l.ListingID,
		Title:         l.Title,
		Description:   l.Description,
		ImageURL:      l.ImageURL,
		Category:      string(l.Category),
		CategoryLabel: l.Category.Label(),
		StartingPrice: formatPrice(l.StartingPrice),
		CurrentPrice:  formatPrice(l.CurrentPrice),
		OwnerID:       l.OwnerID,
		IsClosed:      l.IsClosed,
		CreatedAt:     formatTime(l.CreatedAt),
	}
}

// ToListingResponses converts a listing slice, never returning nil
func ToListingResponses(listings []models.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, ToListingResponse(l))
	}
	return out
}

// ToResolutionResponse converts an auction outcome for the wire
func ToResolutionResponse(r models.Resolution) ResolutionResponse {
	if !r.Sold {
		return ResolutionResponse{Sold: false}
	}
	return ResolutionResponse{
		Sold:     true,
		WinnerID: r.WinnerID,
		Amount:   formatPrice(r.Amount),
		BidID:    r.BidID,
	}
}

// ToListingViewResponse converts a listing view for the wire
func ToListingViewResponse(v models.ListingView) ListingViewResponse {
	resp := ListingViewResponse{
		Listing:               ToListingResponse(v.Listing),
		TotalBids:             v.TotalBids,
		ViewerIsSeller:        v.ViewerIsSeller,
		ViewerIsBuyer:         v.ViewerIsBuyer,
		ViewerIsHighestBidder: v.ViewerIsHighestBidder,
		NoBid:                 v.NoBid,
		OnWatchlist:           v.OnWatchlist,
		Comments:              v.Comments,
	}
	if v.HighestBid != nil {
		b := ToBidResponse(*v.HighestBid)
		resp.HighestBid = &b
	}
	if v.Resolution != nil {
		r := ToResolutionResponse(*v.Resolution)
		resp.Resolution = &r
	}
	if resp.Comments == nil {
		resp.Comments = []models.Comment{}
	}
	return resp
}
