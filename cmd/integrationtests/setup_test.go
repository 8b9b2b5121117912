package integrationtests

import (
	auction "auction-house/internal/auctionService"
	bidding "auction-house/internal/biddingService"
	community "auction-house/internal/communityService"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/services/bidding/helpers"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupTestRouter wires the full router over the given store
func SetupTestRouter(store repository.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return server.SetupRouter(server.Services{
		Bidding:   bidding.NewBiddingService(store),
		Auction:   auction.NewAuctionService(store, store),
		Community: community.NewCommunityService(store),
	})
}

// SetupMemoryRouter initializes the router with an in-memory repository
func SetupMemoryRouter() *gin.Engine {
	return SetupTestRouter(repository.NewMemoryRepo())
}

// ExecuteRequestAndParse executes an HTTP request as userID (anonymous when
// empty) and returns the decoded envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, userID string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(helpers.UserIDHeader, userID)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// CreateListing posts a listing as owner and returns its id
func CreateListing(t *testing.T, router *gin.Engine, owner, startingPrice string) string {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/listings", owner, map[string]any{
		"title":          "Road bike",
		"description":    "Aluminium frame, 56cm",
		"starting_price": startingPrice,
		"category":       "SnF",
	})
	require.Equal(t, http.StatusCreated, w.Code, "create listing: %v", resp)
	return resp["data"].(map[string]any)["listing_id"].(string)
}

// PlaceBid posts a bid and returns the response
func PlaceBid(t *testing.T, router *gin.Engine, listingID, bidder, amount string) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	return ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/bids", bidder, map[string]any{"amount": amount})
}
