package handler

import (
	"context"
	"errors"
	"net/http"

	"auction-house/internal/biddingerrors"
	model "auction-house/internal/models"
	"auction-house/services/bidding/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	CreateListing(ctx context.Context, in model.NewListing) (model.Listing, error)
	ListOpenListings(ctx context.Context) ([]model.Listing, error)
	ListClosedListings(ctx context.Context) ([]model.Listing, error)
	ListByCategory(ctx context.Context, code string) ([]model.Listing, error)
	GetListingView(ctx context.Context, listingID, viewerID string) (model.ListingView, error)
	CloseListing(ctx context.Context, listingID, requesterID string) (model.Resolution, error)
	GetResolution(ctx context.Context, listingID string) (model.Resolution, error)
}

type ListingHandler struct {
	service AuctionServiceInterface
}

func NewListingHandler(service AuctionServiceInterface) *ListingHandler {
	return &ListingHandler{service: service}
}

// CreateListingHandler handles POST /listings
func (h *ListingHandler) CreateListingHandler(c *gin.Context) {
	userID, ok := helpers.RequireUser(c, "CreateListingHandler")
	if !ok {
		return
	}

	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	listing, err := h.service.CreateListing(c.Request.Context(), model.NewListing{
		Title:         req.Title,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
		ImageURL:      req.ImageURL,
		Category:      req.Category,
		OwnerID:       userID,
	})
	if err != nil {
		helpers.RespondError(c, "CreateListingHandler", "failed to create listing", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToListingResponse(listing), "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id": listing.ListingID,
		"user_id":    userID,
		"price":      listing.StartingPrice.StringFixed(2),
	})
}

// ListOpenHandler handles GET /listings
func (h *ListingHandler) ListOpenHandler(c *gin.Context) {
	listings, err := h.service.ListOpenListings(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListOpenHandler", "error listing open listings", err, nil)
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(listings), "listings retrieved successfully")
}

// ListClosedHandler handles GET /listings/closed
func (h *ListingHandler) ListClosedHandler(c *gin.Context) {
	listings, err := h.service.ListClosedListings(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListClosedHandler", "error listing closed listings", err, nil)
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(listings), "listings retrieved successfully")
}

// ListCategoriesHandler handles GET /categories
func (h *ListingHandler) ListCategoriesHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, model.Categories(), "categories retrieved successfully")
}

// ListByCategoryHandler handles GET /categories/:category/listings
func (h *ListingHandler) ListByCategoryHandler(c *gin.Context) {
	code := c.Param("category")
	listings, err := h.service.ListByCategory(c.Request.Context(), code)
	if err != nil {
		helpers.RespondError(c, "ListByCategoryHandler", "error listing category", err, map[string]any{"category": code})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(listings), "listings retrieved successfully")
	helpers.LogSuccess("ListByCategoryHandler", "listings retrieved successfully", map[string]any{
		"category": code,
		"count":    len(listings),
	})
}

// GetListingHandler handles GET /listings/:listing_id
func (h *ListingHandler) GetListingHandler(c *gin.Context) {
	listingID, ok := helpers.ListingIDParam(c, "GetListingHandler")
	if !ok {
		return
	}
	viewerID := helpers.ViewerID(c)

	view, err := h.service.GetListingView(c.Request.Context(), listingID, viewerID)
	if err != nil {
		helpers.RespondError(c, "GetListingHandler", "listing view denied or failed", err, map[string]any{
			"listing_id": listingID,
			"viewer_id":  viewerID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingViewResponse(view), "listing retrieved successfully")
}

// CloseListingHandler handles POST /listings/:listing_id/close
func (h *ListingHandler) CloseListingHandler(c *gin.Context) {
	listingID, ok := helpers.ListingIDParam(c, "CloseListingHandler")
	if !ok {
		return
	}
	userID, ok := helpers.RequireUser(c, "CloseListingHandler")
	if !ok {
		return
	}

	res, err := h.service.CloseListing(c.Request.Context(), listingID, userID)
	if err != nil {
		helpers.RespondError(c, "CloseListingHandler", "failed to close listing", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToResolutionResponse(res), "listing closed successfully")
	helpers.LogSuccess("CloseListingHandler", "listing closed successfully", map[string]any{
		"listing_id": listingID,
		"sold":       res.Sold,
		"winner_id":  res.WinnerID,
	})
}

// GetResolutionHandler handles GET /listings/:listing_id/resolution
func (h *ListingHandler) GetResolutionHandler(c *gin.Context) {
	listingID, ok := helpers.ListingIDParam(c, "GetResolutionHandler")
	if !ok {
		return
	}

	res, err := h.service.GetResolution(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrAuctionOpen) {
			utils.JSONError(c, http.StatusConflict, err, "auction is still open")
			utils.Info("GetResolutionHandler: auction still open", map[string]any{"listing_id": listingID})
			return
		}
		helpers.RespondError(c, "GetResolutionHandler", "resolution error", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToResolutionResponse(res), "resolution retrieved successfully")
}
