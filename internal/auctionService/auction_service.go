package auction

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// AuctionService manages listings and their Open -> Closed lifecycle
type AuctionService struct {
	repo      repository.AuctionDB
	community repository.CommunityDB
	now       func() time.Time
}

// NewAuctionService creates a new AuctionService. community may be nil, in
// which case listing views carry no watchlist or comment data.
func NewAuctionService(repo repository.AuctionDB, community repository.CommunityDB) *AuctionService {
	return &AuctionService{
		repo:      repo,
		community: community,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateListing validates and stores a new open listing
func (s *AuctionService) CreateListing(ctx context.Context, in models.NewListing) (models.Listing, error) {
	listing, err := s.buildListing(in)
	if err != nil {
		return models.Listing{}, err
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to create listing: %w", err)
	}
	return listing, nil
}

func (s *AuctionService) buildListing(in models.NewListing) (models.Listing, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	image := strings.TrimSpace(in.ImageURL)

	switch {
	case in.OwnerID == "":
		return models.Listing{}, fmt.Errorf("service: %w - missing owner", biddingerrors.ErrValidation)
	case title == "":
		return models.Listing{}, fmt.Errorf("service: %w - empty title", biddingerrors.ErrValidation)
	case utf8.RuneCountInString(title) > models.MaxTitleLength:
		return models.Listing{}, fmt.Errorf("service: %w - title longer than %d characters", biddingerrors.ErrValidation, models.MaxTitleLength)
	case description == "":
		return models.Listing{}, fmt.Errorf("service: %w - empty description", biddingerrors.ErrValidation)
	case utf8.RuneCountInString(description) > models.MaxDescriptionLength:
		return models.Listing{}, fmt.Errorf("service: %w - description longer than %d characters", biddingerrors.ErrValidation, models.MaxDescriptionLength)
	case in.StartingPrice.IsNegative():
		return models.Listing{}, fmt.Errorf("service: %w - negative starting price", biddingerrors.ErrValidation)
	case !in.StartingPrice.Equal(in.StartingPrice.Round(models.PricePlaces)):
		return models.Listing{}, fmt.Errorf("service: %w - starting price has more than %d decimal places", biddingerrors.ErrValidation, models.PricePlaces)
	case in.StartingPrice.GreaterThan(models.MaxPrice):
		return models.Listing{}, fmt.Errorf("service: %w - starting price exceeds %s", biddingerrors.ErrValidation, models.MaxPrice.StringFixed(2))
	}

	if image != "" && !isHTTPURL(image) {
		return models.Listing{}, fmt.Errorf("service: %w - image must be an http(s) URL", biddingerrors.ErrValidation)
	}

	var category models.Category
	if in.Category != "" {
		c, err := models.ParseCategory(in.Category)
		if err != nil {
			return models.Listing{}, fmt.Errorf("service: %w: %w", biddingerrors.ErrValidation, err)
		}
		category = c
	}

	return models.Listing{
		ListingID:     utils.GenerateID(),
		Title:         title,
		Description:   description,
		ImageURL:      image,
		Category:      category,
		StartingPrice: in.StartingPrice,
		CurrentPrice:  in.StartingPrice,
		OwnerID:       in.OwnerID,
		IsClosed:      false,
		CreatedAt:     s.now(),
	}, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// GetListing returns a listing snapshot
func (s *AuctionService) GetListing(ctx context.Context, listingID string) (models.Listing, error) {
	if listingID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrValidation)
	}
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	return listing, nil
}

// ListOpenListings returns open listings, newest first
func (s *AuctionService) ListOpenListings(ctx context.Context) ([]models.Listing, error) {
	listings, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list open listings: %w", err)
	}
	return listings, nil
}

// ListClosedListings returns closed listings, newest first
func (s *AuctionService) ListClosedListings(ctx context.Context) ([]models.Listing, error) {
	listings, err := s.repo.ListClosed(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list closed listings: %w", err)
	}
	return listings, nil
}

// ListByCategory returns open listings of a category, newest first
func (s *AuctionService) ListByCategory(ctx context.Context, code string) ([]models.Listing, error) {
	category, err := models.ParseCategory(code)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	listings, err := s.repo.ListOpenByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list category %s: %w", category, err)
	}
	return listings, nil
}

// CloseListing moves a listing from Open to Closed. Only the owner may close,
// and a closed listing cannot be closed again. The returned resolution reflects
// the highest bid at closure time.
func (s *AuctionService) CloseListing(ctx context.Context, listingID, requesterID string) (models.Resolution, error) {
	if listingID == "" {
		return models.Resolution{}, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrValidation)
	}

	var res models.Resolution
	err := s.repo.WithListingTx(ctx, listingID, func(tx repository.ListingTx) error {
		listing, err := tx.Listing()
		if err != nil {
			return err
		}
		if err := authorizeClose(listing, requesterID); err != nil {
			return err
		}
		highest, err := txHighest(tx)
		if err != nil {
			return err
		}
		if err := tx.Close(); err != nil {
			return err
		}
		res = Resolve(highest)
		return nil
	})
	if err != nil {
		return models.Resolution{}, fmt.Errorf("service: failed to close listing %s: %w", listingID, err)
	}
	return res, nil
}

// GetResolution returns Sold or Unsold for a closed listing
func (s *AuctionService) GetResolution(ctx context.Context, listingID string) (models.Resolution, error) {
	if listingID == "" {
		return models.Resolution{}, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrValidation)
	}

	var res models.Resolution
	err := s.repo.WithListingTx(ctx, listingID, func(tx repository.ListingTx) error {
		listing, err := tx.Listing()
		if err != nil {
			return err
		}
		if !listing.IsClosed {
			return biddingerrors.ErrAuctionOpen
		}
		highest, err := txHighest(tx)
		if err != nil {
			return err
		}
		res = Resolve(highest)
		return nil
	})
	if err != nil {
		return models.Resolution{}, fmt.Errorf("service: failed to resolve listing %s: %w", listingID, err)
	}
	return res, nil
}

// GetListingView assembles what viewerID may see of a listing. Closed listings
// are only visible to their seller and, when sold, their buyer.
func (s *AuctionService) GetListingView(ctx context.Context, listingID, viewerID string) (models.ListingView, error) {
	if listingID == "" {
		return models.ListingView{}, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrValidation)
	}

	var view models.ListingView
	err := s.repo.WithListingTx(ctx, listingID, func(tx repository.ListingTx) error {
		listing, err := tx.Listing()
		if err != nil {
			return err
		}
		total, err := tx.BidCount()
		if err != nil {
			return err
		}
		highest, err := txHighest(tx)
		if err != nil {
			return err
		}
		view = models.ListingView{Listing: listing, TotalBids: total, HighestBid: highest}
		return nil
	})
	if err != nil {
		return models.ListingView{}, fmt.Errorf("service: failed to view listing %s: %w", listingID, err)
	}

	if view.Listing.IsClosed {
		res := Resolve(view.HighestBid)
		if err := AuthorizeClosedView(view.Listing, res, viewerID); err != nil {
			return models.ListingView{}, fmt.Errorf("service: %w", err)
		}
		view.Resolution = &res
		view.ViewerIsSeller, view.ViewerIsBuyer = ClassifyViewer(view.Listing, res, viewerID)
		view.NoBid = !res.Sold
		return view, nil
	}

	view.ViewerIsSeller = viewerID != "" && viewerID == view.Listing.OwnerID
	view.ViewerIsHighestBidder = viewerID != "" && view.HighestBid != nil && view.HighestBid.BidderID == viewerID
	if err := s.attachCommunity(ctx, &view, viewerID); err != nil {
		return models.ListingView{}, fmt.Errorf("service: failed to view listing %s: %w", listingID, err)
	}
	return view, nil
}

func (s *AuctionService) attachCommunity(ctx context.Context, view *models.ListingView, viewerID string) error {
	if s.community == nil {
		return nil
	}
	if viewerID != "" {
		watching, err := s.community.IsWatching(ctx, view.Listing.ListingID, viewerID)
		if err != nil {
			return err
		}
		view.OnWatchlist = watching
	}
	comments, err := s.community.GetComments(ctx, view.Listing.ListingID)
	if err != nil {
		return err
	}
	view.Comments = comments
	return nil
}

func txHighest(tx repository.ListingTx) (*models.Bid, error) {
	bid, err := tx.HighestBid()
	if errors.Is(err, biddingerrors.ErrNoBids) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}
