package server

import (
	handler "auction-house/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// Services groups the domain services the routes delegate to
type Services struct {
	Bidding   handler.BiddingServiceInterface
	Auction   handler.AuctionServiceInterface
	Community handler.CommunityServiceInterface
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(UserIdentityMiddleware)  // caller identity from the auth layer
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(svc.Bidding)
	listingHandler := handler.NewListingHandler(svc.Auction)
	communityHandler := handler.NewCommunityHandler(svc.Community)

	listings := router.Group("/listings")
	{
		listings.POST("", listingHandler.CreateListingHandler)
		listings.GET("", listingHandler.ListOpenHandler)
		listings.GET("/closed", listingHandler.ListClosedHandler)
		listings.GET("/:listing_id", listingHandler.GetListingHandler)
		listings.POST("/:listing_id/close", listingHandler.CloseListingHandler)
		listings.GET("/:listing_id/resolution", listingHandler.GetResolutionHandler)

		listings.POST("/:listing_id/bids", biddingHandler.PlaceBidHandler)
		listings.GET("/:listing_id/bids", biddingHandler.GetBidsByListingHandler)

		listings.POST("/:listing_id/watchlist", communityHandler.AddWatchlistHandler)
		listings.DELETE("/:listing_id/watchlist", communityHandler.RemoveWatchlistHandler)
		listings.GET("/:listing_id/comments", communityHandler.GetCommentsHandler)
		listings.POST("/:listing_id/comments", communityHandler.PostCommentHandler)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", listingHandler.ListCategoriesHandler)
		categories.GET("/:category/listings", listingHandler.ListByCategoryHandler)
	}

	router.GET("/watchlist", communityHandler.GetWatchlistHandler)

	users := router.Group("/users")
	{
		users.GET("/:user_id/listings", biddingHandler.GetListingsByBidderHandler)
	}

	return router
}
