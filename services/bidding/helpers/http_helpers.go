package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-house/internal/biddingerrors"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the caller's identity
const UserIDKey = "user_id"

// UserIDHeader carries the authenticated user's ID from the auth layer
const UserIDHeader = "X-User-ID"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, biddingerrors.ErrInvalidCategory):
		return http.StatusBadRequest, "invalid category"
	case errors.Is(err, biddingerrors.ErrValidation):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, biddingerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid bid amount"
	case errors.Is(err, biddingerrors.ErrUnauthenticated):
		return http.StatusUnauthorized, "user identity required"
	case errors.Is(err, biddingerrors.ErrSelfBidForbidden):
		return http.StatusForbidden, "owner cannot bid on own listing"
	case errors.Is(err, biddingerrors.ErrForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction is closed"
	case errors.Is(err, biddingerrors.ErrAlreadyClosed):
		return http.StatusConflict, "listing already closed"
	case errors.Is(err, biddingerrors.ErrAuctionOpen):
		return http.StatusConflict, "auction is still open"
	case errors.Is(err, biddingerrors.ErrAlreadyWatching):
		return http.StatusConflict, "listing already on watchlist"
	case errors.Is(err, biddingerrors.ErrNotWatching):
		return http.StatusNotFound, "listing not on watchlist"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusOK, "no bids found for listing"
	case errors.Is(err, biddingerrors.ErrUserNoBids):
		return http.StatusOK, "no listings found for user"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// ReasonCode returns the stable code for a bid rejection reason
func ReasonCode(reason error) string {
	switch {
	case errors.Is(reason, biddingerrors.ErrAuctionClosed):
		return "AUCTION_CLOSED"
	case errors.Is(reason, biddingerrors.ErrInvalidAmount):
		return "INVALID_AMOUNT"
	case errors.Is(reason, biddingerrors.ErrSelfBidForbidden):
		return "SELF_BID_FORBIDDEN"
	case errors.Is(reason, biddingerrors.ErrBidTooLow):
		return "BID_TOO_LOW"
	default:
		return "REJECTED"
	}
}

// ViewerID returns the caller's identity, empty for anonymous requests
func ViewerID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// RequireUser returns the caller's identity or writes a 401 and returns false
func RequireUser(c *gin.Context, handlerName string) (string, bool) {
	userID := ViewerID(c)
	if userID == "" {
		err := biddingerrors.ErrUnauthenticated
		status, message := MapErrorToHTTP(err)
		utils.JSONError(c, status, err, message)
		utils.Warn(handlerName+": anonymous request rejected", map[string]any{"path": c.Request.URL.Path})
		return "", false
	}
	return userID, true
}

// ListingIDParam reads the listing id path parameter, writing a 404 for ids
// that cannot exist
func ListingIDParam(c *gin.Context, handlerName string) (string, bool) {
	listingID := c.Param("listing_id")
	if !utils.IsID(listingID) {
		err := fmt.Errorf("listing %q: %w", listingID, biddingerrors.ErrListingNotFound)
		status, message := MapErrorToHTTP(err)
		utils.JSONError(c, status, err, message)
		utils.Warn(handlerName+": malformed listing id", map[string]any{"listing_id": listingID})
		return "", false
	}
	return listingID, true
}

// RespondError maps err to a status, writes it and logs at a level matching
// its severity
func RespondError(c *gin.Context, handlerName, logMessage string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+logMessage, fields)
		return
	}
	utils.Warn(handlerName+": "+logMessage, fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
