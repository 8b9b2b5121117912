package community

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
	"context"
	"fmt"
	"strings"
	"time"
)

// CommunityService handles watchlists and comments
type CommunityService struct {
	repo repository.CommunityDB
	now  func() time.Time
}

// NewCommunityService creates a new CommunityService instance
func NewCommunityService(repo repository.CommunityDB) *CommunityService {
	return &CommunityService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// AddToWatchlist puts a listing on the user's watchlist
func (s *CommunityService) AddToWatchlist(ctx context.Context, listingID, userID string) error {
	if listingID == "" || userID == "" {
		return fmt.Errorf("service: %w - missing listingID or userID", biddingerrors.ErrValidation)
	}
	entry := models.WatchlistEntry{ListingID: listingID, UserID: userID, CreatedAt: s.now()}
	if err := s.repo.AddWatchlistEntry(ctx, entry); err != nil {
		return fmt.Errorf("service: failed to watch listing %s for user %s: %w", listingID, userID, err)
	}
	return nil
}

// RemoveFromWatchlist takes a listing off the user's watchlist
func (s *CommunityService) RemoveFromWatchlist(ctx context.Context, listingID, userID string) error {
	if listingID == "" || userID == "" {
		return fmt.Errorf("service: %w - missing listingID or userID", biddingerrors.ErrValidation)
	}
	if err := s.repo.RemoveWatchlistEntry(ctx, listingID, userID); err != nil {
		return fmt.Errorf("service: failed to unwatch listing %s for user %s: %w", listingID, userID, err)
	}
	return nil
}

// GetWatchlist returns the user's watched open listings, newest first
func (s *CommunityService) GetWatchlist(ctx context.Context, userID string) ([]models.Listing, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrValidation)
	}
	listings, err := s.repo.GetWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get watchlist for user %s: %w", userID, err)
	}
	return listings, nil
}

// PostComment adds a comment to a listing
func (s *CommunityService) PostComment(ctx context.Context, listingID, userID, message string) (models.Comment, error) {
	message = strings.TrimSpace(message)
	if listingID == "" || userID == "" {
		return models.Comment{}, fmt.Errorf("service: %w - missing listingID or userID", biddingerrors.ErrValidation)
	}
	if message == "" {
		return models.Comment{}, fmt.Errorf("service: %w - empty comment", biddingerrors.ErrValidation)
	}

	comment := models.Comment{
		CommentID: utils.GenerateID(),
		ListingID: listingID,
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("service: failed to comment on listing %s: %w", listingID, err)
	}
	return comment, nil
}

// GetComments returns a listing's comments, newest first
func (s *CommunityService) GetComments(ctx context.Context, listingID string) ([]models.Comment, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrValidation)
	}
	comments, err := s.repo.GetComments(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get comments for listing %s: %w", listingID, err)
	}
	return comments, nil
}
