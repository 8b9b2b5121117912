package handler

//go:generate mockgen -destination=mock_handler.go -package=handler auction-house/services/bidding/handler BiddingServiceInterface,AuctionServiceInterface,CommunityServiceInterface

import (
	"context"
	"errors"
	"net/http"

	"auction-house/internal/biddingerrors"
	model "auction-house/internal/models"
	"auction-house/services/bidding/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, listingID, userID string, amount decimal.Decimal) (model.BidResult, error)
	GetBidsForListing(ctx context.Context, listingID string) ([]model.Bid, error)
	GetListingsByBidder(ctx context.Context, userID string) ([]model.Listing, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /listings/:listing_id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	listingID, ok := helpers.ListingIDParam(c, "PlaceBidHandler")
	if !ok {
		return
	}
	userID, ok := helpers.RequireUser(c, "PlaceBidHandler")
	if !ok {
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	result, err := h.service.PlaceBid(c.Request.Context(), listingID, userID, req.Amount)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", "failed to place bid", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}

	if !result.Accepted() {
		status, message := helpers.MapErrorToHTTP(result.Reason)
		code := helpers.ReasonCode(result.Reason)
		utils.JSONRejection(c, status, result.Reason, code, message)
		utils.Warn("PlaceBidHandler: bid rejected", map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
			"amount":     req.Amount.String(),
			"reason":     code,
		})
		return
	}

	bid := result.Bid
	utils.JSONResponse(c, http.StatusCreated, helpers.ToBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"listing_id": bid.ListingID,
		"user_id":    userID,
		"amount":     bid.Amount.StringFixed(2),
	})
}

// GetBidsByListingHandler handles GET /listings/:listing_id/bids
func (h *BiddingHandler) GetBidsByListingHandler(c *gin.Context) {
	listingID, ok := helpers.ListingIDParam(c, "GetBidsByListingHandler")
	if !ok {
		return
	}

	bids, err := h.service.GetBidsForListing(c.Request.Context(), listingID)
	if err != nil && !errors.Is(err, biddingerrors.ErrNoBids) {
		helpers.RespondError(c, "GetBidsByListingHandler", "error retrieving bids", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByListingHandler", "bids retrieved successfully", map[string]any{
		"listing_id": listingID,
		"count":      len(bids),
	})
}

// GetListingsByBidderHandler handles GET /users/:user_id/listings
func (h *BiddingHandler) GetListingsByBidderHandler(c *gin.Context) {
	userID := c.Param("user_id")
	listings, err := h.service.GetListingsByBidder(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, biddingerrors.ErrUserNoBids) {
		helpers.RespondError(c, "GetListingsByBidderHandler", "error retrieving listings", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(listings), "listings retrieved successfully")
	helpers.LogSuccess("GetListingsByBidderHandler", "listings retrieved successfully", map[string]any{
		"user_id":        userID,
		"listings_count": len(listings),
	})
}
