package bidding

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BiddingService admits bids and answers bid ledger queries
type BiddingService struct {
	repo repository.AuctionDB
	now  func() time.Time
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB) *BiddingService {
	return &BiddingService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// PlaceBid validates a bid against the listing's committed state and, when
// admissible, appends it and raises the listing price in one transaction.
// Admission rejections come back as a rejected BidResult with a nil error;
// the error is reserved for bad input, missing listings and storage failures.
// A bid on an unknown listing therefore fails with ErrListingNotFound rather
// than being rejected as AUCTION_CLOSED.
func (s *BiddingService) PlaceBid(ctx context.Context, listingID, userID string, amount decimal.Decimal) (models.BidResult, error) {
	if listingID == "" || userID == "" {
		return models.BidResult{}, fmt.Errorf("service: %w - missing listingID or userID", biddingerrors.ErrValidation)
	}

	var result models.BidResult
	err := s.repo.WithListingTx(ctx, listingID, func(tx repository.ListingTx) error {
		listing, err := tx.Listing()
		if err != nil {
			return err
		}

		var highest *models.Bid
		hb, err := tx.HighestBid()
		switch {
		case err == nil:
			highest = &hb
		case !errors.Is(err, biddingerrors.ErrNoBids):
			return fmt.Errorf("failed to check highest bid: %w", err)
		}

		if reason := ValidateBid(&listing, userID, amount, highest); reason != nil {
			result = models.Reject(reason)
			return nil
		}

		bid := models.Bid{
			BidID:     utils.GenerateID(),
			ListingID: listingID,
			BidderID:  userID,
			Amount:    amount,
			CreatedAt: s.bidTime(highest),
		}
		if err := tx.AppendBid(bid); err != nil {
			return err
		}
		if err := tx.UpdatePrice(amount); err != nil {
			return err
		}
		result = models.Accept(bid)
		return nil
	})
	if err != nil {
		if errors.Is(err, biddingerrors.ErrInvariantViolation) {
			utils.Error("PlaceBid: listing price would decrease", map[string]any{
				"listing_id": listingID,
				"user_id":    userID,
				"amount":     amount.StringFixed(2),
				"error":      err.Error(),
			})
		}
		return models.BidResult{}, fmt.Errorf("service: failed to place bid on listing %s by user %s: %w", listingID, userID, err)
	}

	return result, nil
}

// bidTime keeps bids on a listing strictly ordered by timestamp. Every admitted
// bid beats the previous highest, so the highest bid is also the latest one.
func (s *BiddingService) bidTime(highest *models.Bid) time.Time {
	now := s.now()
	if highest != nil && !now.After(highest.CreatedAt) {
		return highest.CreatedAt.Add(time.Nanosecond)
	}
	return now
}

// GetBidsForListing returns all bids for a listing, newest first
func (s *BiddingService) GetBidsForListing(ctx context.Context, listingID string) ([]models.Bid, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrValidation)
	}

	bids, err := s.repo.GetBidsByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}

	return bids, nil
}

// GetHighestBid returns the current highest bid for a listing
func (s *BiddingService) GetHighestBid(ctx context.Context, listingID string) (models.Bid, error) {
	if listingID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrValidation)
	}

	bid, err := s.repo.GetHighestBid(ctx, listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get highest bid for listing %s: %w", listingID, err)
	}

	return bid, nil
}

// GetListingsByBidder returns all listings a user has placed bids on
func (s *BiddingService) GetListingsByBidder(ctx context.Context, userID string) ([]models.Listing, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrValidation)
	}

	listings, err := s.repo.GetListingsByBidder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get listings for user %s: %w", userID, err)
	}

	return listings, nil
}
