package handler

import (
	"context"
	"net/http"

	model "auction-house/internal/models"
	"auction-house/services/bidding/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type CommunityServiceInterface interface {
	AddToWatchlist(ctx context.Context, listingID, userID string) error
	RemoveFromWatchlist(ctx context.Context, listingID, userID string) error
	GetWatchlist(ctx context.Context, userID string) ([]model.Listing, error)
	PostComment(ctx context.Context, listingID, userID, message string) (model.Comment, error)
	GetComments(ctx context.Context, listingID string) ([]model.Comment, error)
}

type CommunityHandler struct {
	service CommunityServiceInterface
}

func NewCommunityHandler(service CommunityServiceInterface) *CommunityHandler {
	return &CommunityHandler{service: service}
}

// AddWatchlistHandler handles POST /listings/:listing_id/watchlist
func (h *CommunityHandler) AddWatchlistHandler(c *gin.Context) {
	listingID, ok := helpers.ListingIDParam(c, "AddWatchlistHandler")
	if !ok {
		return
	}
	userID, ok := helpers.RequireUser(c, "AddWatchlistHandler")
	if !ok {
		return
	}

	if err := h.service.AddToWatchlist(c.Request.Context(), listingID, userID); err != nil {
		helpers.RespondError(c, "AddWatchlistHandler", "failed to add to watchlist", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}
	utils.JSONResponse(c, http.StatusCreated, gin.H{"listing_id": listingID, "on_watchlist": true}, "listing added to watchlist")
}

// RemoveWatchlistHandler handles DELETE /listings/:listing_id/watchlist
func (h *CommunityHandler) RemoveWatchlistHandler(c *gin.Context) {
	listingID, ok := helpers.ListingIDParam(c, "RemoveWatchlistHandler")
	if !ok {
		return
	}
	userID, ok := helpers.RequireUser(c, "RemoveWatchlistHandler")
	if !ok {
		return
	}

	if err := h.service.RemoveFromWatchlist(c.Request.Context(), listingID, userID); err != nil {
		helpers.RespondError(c, "RemoveWatchlistHandler", "failed to remove from watchlist", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"listing_id": listingID, "on_watchlist": false}, "listing removed from watchlist")
}

// GetWatchlistHandler handles GET /watchlist
func (h *CommunityHandler) GetWatchlistHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "GetWatchlistHandler")
	if !ok {
		return
	}

	listings, err := h.service.GetWatchlist(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetWatchlistHandler", "error retrieving watchlist", err, map[string]any{"user_id": userID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(listings), "watchlist retrieved successfully")
}

// PostCommentHandler handles POST /listings/:listing_id/comments
func (h *CommunityHandler) PostCommentHandler(c *gin.Context) {
	listingID, ok := helpers.ListingIDParam(c, "PostCommentHandler")
	if !ok {
		return
	}
	userID, ok := helpers.RequireUser(c, "PostCommentHandler")
	if !ok {
		return
	}

	var req helpers.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PostCommentHandler", err)
		return
	}

	comment, err := h.service.PostComment(c.Request.Context(), listingID, userID, req.Message)
	if err != nil {
		helpers.RespondError(c, "PostCommentHandler", "failed to post comment", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}
	utils.JSONResponse(c, http.StatusCreated, comment, "comment posted successfully")
	helpers.LogSuccess("PostCommentHandler", "comment posted successfully", map[string]any{
		"comment_id": comment.CommentID,
		"listing_id": listingID,
		"user_id":    userID,
	})
}

// GetCommentsHandler handles GET /listings/:listing_id/comments
func (h *CommunityHandler) GetCommentsHandler(c *gin.Context) {
	listingID, ok := helpers.ListingIDParam(c, "GetCommentsHandler")
	if !ok {
		return
	}

	comments, err := h.service.GetComments(c.Request.Context(), listingID)
	if err != nil {
		helpers.RespondError(c, "GetCommentsHandler", "error retrieving comments", err, map[string]any{"listing_id": listingID})
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	utils.JSONResponse(c, http.StatusOK, comments, "comments retrieved successfully")
}
