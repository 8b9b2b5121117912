package auction

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/models"
	"fmt"
)

// Resolve derives the outcome of an auction from its highest bid. It is not
// stored; callers recompute it whenever they need it.
func Resolve(highest *models.Bid) models.Resolution {
	if highest == nil {
		return models.Resolution{Sold: false}
	}
	return models.Resolution{
		Sold:     true,
		WinnerID: highest.BidderID,
		Amount:   highest.Amount,
		BidID:    highest.BidID,
	}
}

// ClassifyViewer tells whether viewerID sold or bought a listing.
// An anonymous viewer (empty ID) is neither.
func ClassifyViewer(listing models.Listing, res models.Resolution, viewerID string) (isSeller, isBuyer bool) {
	if viewerID == "" {
		return false, false
	}
	isSeller = viewerID == listing.OwnerID
	isBuyer = res.Sold && viewerID == res.WinnerID
	return isSeller, isBuyer
}

// AuthorizeClosedView applies the visibility rule for closed listings: a sold
// listing is visible to its seller and buyer only, an unsold one to its seller only.
func AuthorizeClosedView(listing models.Listing, res models.Resolution, viewerID string) error {
	isSeller, isBuyer := ClassifyViewer(listing, res, viewerID)
	if isSeller || isBuyer {
		return nil
	}
	return fmt.Errorf("view closed listing %s: %w", listing.ListingID, biddingerrors.ErrForbidden)
}

// authorizeClose guards the Open -> Closed transition
func authorizeClose(listing models.Listing, requesterID string) error {
	if requesterID == "" || requesterID != listing.OwnerID {
		return fmt.Errorf("close listing %s: %w - requester is not the owner", listing.ListingID, biddingerrors.ErrForbidden)
	}
	if listing.IsClosed {
		return fmt.Errorf("close listing %s: %w", listing.ListingID, biddingerrors.ErrAlreadyClosed)
	}
	return nil
}
