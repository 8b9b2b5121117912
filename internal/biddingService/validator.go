package bidding

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/models"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidateBid decides whether a bid may be admitted against the given state.
// Rules are checked in order and the first failing rule wins. highest is nil
// when the listing has no bids yet. A nil return means the bid is admissible.
func ValidateBid(listing *models.Listing, bidderID string, amount decimal.Decimal, highest *models.Bid) error {
	if listing == nil || listing.IsClosed {
		return biddingerrors.ErrAuctionClosed
	}

	if err := validateAmount(amount); err != nil {
		return err
	}

	if bidderID == listing.OwnerID {
		return biddingerrors.ErrSelfBidForbidden
	}

	if highest != nil {
		if !amount.GreaterThan(highest.Amount) {
			return fmt.Errorf("%w - current highest bid is %s", biddingerrors.ErrBidTooLow, highest.Amount.StringFixed(2))
		}
		return nil
	}

	// the current price is the floor even before the first bid
	if !amount.GreaterThan(listing.CurrentPrice) {
		return fmt.Errorf("%w - current price is %s", biddingerrors.ErrBidTooLow, listing.CurrentPrice.StringFixed(2))
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w - non-positive bid amount", biddingerrors.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(models.PricePlaces)) {
		return fmt.Errorf("%w - more than %d decimal places", biddingerrors.ErrInvalidAmount, models.PricePlaces)
	}
	if amount.GreaterThan(models.MaxPrice) {
		return fmt.Errorf("%w - exceeds %s", biddingerrors.ErrInvalidAmount, models.MaxPrice.StringFixed(2))
	}
	return nil
}
