package auction

import (
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/biddingerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	repo    *repository.MemoryRepo
	auction *AuctionService
	bidding *bidding.BiddingService
}

func newFixture() fixture {
	repo := repository.NewMemoryRepo()
	return fixture{
		repo:    repo,
		auction: NewAuctionService(repo, repo),
		bidding: bidding.NewBiddingService(repo),
	}
}

func (f fixture) listing(t *testing.T, owner, startingPrice string) models.Listing {
	t.Helper()
	l, err := f.auction.CreateListing(context.Background(), models.NewListing{
		Title:         "Vintage camera",
		Description:   "35mm film camera in working order",
		StartingPrice: price(startingPrice),
		OwnerID:       owner,
	})
	require.NoError(t, err)
	return l
}

func (f fixture) bid(t *testing.T, listingID, bidder, amount string) {
	t.Helper()
	res, err := f.bidding.PlaceBid(context.Background(), listingID, bidder, price(amount))
	require.NoError(t, err)
	require.True(t, res.Accepted(), "bid %s by %s rejected: %v", amount, bidder, res.Reason)
}

func TestAuctionService_CreateListing(t *testing.T) {
	service := NewAuctionService(repository.NewMemoryRepo(), nil)

	valid := models.NewListing{
		Title:         "Desk lamp",
		Description:   "Brass desk lamp",
		StartingPrice: price("10.00"),
		ImageURL:      "https://img.example.com/lamp.jpg",
		Category:      "HnL",
		OwnerID:       "owner",
	}

	// Table-driven test cases
	tests := []struct {
		name          string
		mutate        func(in *models.NewListing)
		expectedError error
	}{
		{name: "valid", mutate: func(*models.NewListing) {}},
		{name: "zero_price", mutate: func(in *models.NewListing) { in.StartingPrice = decimal.Zero }},
		{name: "no_image_no_category", mutate: func(in *models.NewListing) { in.ImageURL = ""; in.Category = "" }},
		{name: "title_at_limit", mutate: func(in *models.NewListing) { in.Title = strings.Repeat("t", models.MaxTitleLength) }},
		{name: "missing_owner", mutate: func(in *models.NewListing) { in.OwnerID = "" }, expectedError: biddingerrors.ErrValidation},
		{name: "blank_title", mutate: func(in *models.NewListing) { in.Title = "   " }, expectedError: biddingerrors.ErrValidation},
		{name: "title_too_long", mutate: func(in *models.NewListing) { in.Title = strings.Repeat("t", models.MaxTitleLength+1) }, expectedError: biddingerrors.ErrValidation},
		{name: "empty_description", mutate: func(in *models.NewListing) { in.Description = "" }, expectedError: biddingerrors.ErrValidation},
		{name: "description_too_long", mutate: func(in *models.NewListing) { in.Description = strings.Repeat("d", models.MaxDescriptionLength+1) }, expectedError: biddingerrors.ErrValidation},
		{name: "negative_price", mutate: func(in *models.NewListing) { in.StartingPrice = price("-1") }, expectedError: biddingerrors.ErrValidation},
		{name: "three_decimal_places", mutate: func(in *models.NewListing) { in.StartingPrice = price("1.005") }, expectedError: biddingerrors.ErrValidation},
		{name: "above_max_price", mutate: func(in *models.NewListing) { in.StartingPrice = price("10000000000") }, expectedError: biddingerrors.ErrValidation},
		{name: "ftp_image", mutate: func(in *models.NewListing) { in.ImageURL = "ftp://img.example.com/lamp.jpg" }, expectedError: biddingerrors.ErrValidation},
		{name: "relative_image", mutate: func(in *models.NewListing) { in.ImageURL = "/lamp.jpg" }, expectedError: biddingerrors.ErrValidation},
		{name: "unknown_category", mutate: func(in *models.NewListing) { in.Category = "XYZ" }, expectedError: biddingerrors.ErrInvalidCategory},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			in := valid
			tc.mutate(&in)
			listing, err := service.CreateListing(context.Background(), in)

			if tc.expectedError != nil {
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				return
			}
			require.NoError(t, err)
			_, parseErr := uuid.Parse(listing.ListingID)
			require.NoError(t, parseErr, "ListingID should be a valid UUID")
			require.False(t, listing.IsClosed)
			require.True(t, listing.CurrentPrice.Equal(listing.StartingPrice))
			require.WithinDuration(t, time.Now(), listing.CreatedAt, 2*time.Second)
		})
	}
}

func TestAuctionService_CreateListing_InvalidCategoryIsValidation(t *testing.T) {
	service := NewAuctionService(repository.NewMemoryRepo(), nil)
	_, err := service.CreateListing(context.Background(), models.NewListing{
		Title: "t", Description: "d", StartingPrice: price("1"), Category: "eng", OwnerID: "owner",
	})
	require.True(t, errors.Is(err, biddingerrors.ErrValidation))
	require.True(t, errors.Is(err, biddingerrors.ErrInvalidCategory))
}

func TestAuctionService_CloseUnsold(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := f.listing(t, "owner", "10.00")

	res, err := f.auction.CloseListing(ctx, l.ListingID, "owner")
	require.NoError(t, err)
	require.False(t, res.Sold)

	view, err := f.auction.GetListingView(ctx, l.ListingID, "owner")
	require.NoError(t, err)
	require.True(t, view.NoBid)
	require.True(t, view.ViewerIsSeller)
	require.False(t, view.ViewerIsBuyer)
	require.NotNil(t, view.Resolution)
	require.False(t, view.Resolution.Sold)

	_, err = f.auction.GetListingView(ctx, l.ListingID, "stranger")
	require.True(t, errors.Is(err, biddingerrors.ErrForbidden))

	_, err = f.auction.GetListingView(ctx, l.ListingID, "")
	require.True(t, errors.Is(err, biddingerrors.ErrForbidden))
}

func TestAuctionService_CloseSold(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := f.listing(t, "owner", "10.00")

	f.bid(t, l.ListingID, "userB", "10.01")
	f.bid(t, l.ListingID, "userC", "12.00")

	res, err := f.auction.CloseListing(ctx, l.ListingID, "owner")
	require.NoError(t, err)
	require.True(t, res.Sold)
	require.Equal(t, "userC", res.WinnerID)
	require.True(t, res.Amount.Equal(price("12.00")))

	_, err = f.auction.GetListingView(ctx, l.ListingID, "userB")
	require.True(t, errors.Is(err, biddingerrors.ErrForbidden), "losing bidder must not see a closed listing")

	view, err := f.auction.GetListingView(ctx, l.ListingID, "userC")
	require.NoError(t, err)
	require.True(t, view.ViewerIsBuyer)
	require.False(t, view.ViewerIsSeller)
	require.False(t, view.NoBid)
	require.Equal(t, 2, view.TotalBids)

	view, err = f.auction.GetListingView(ctx, l.ListingID, "owner")
	require.NoError(t, err)
	require.True(t, view.ViewerIsSeller)
	require.False(t, view.ViewerIsBuyer)

	// resolution is stable and closed listings refuse new bids
	again, err := f.auction.GetResolution(ctx, l.ListingID)
	require.NoError(t, err)
	require.Equal(t, res.WinnerID, again.WinnerID)
	require.True(t, res.Amount.Equal(again.Amount))

	bidRes, err := f.bidding.PlaceBid(ctx, l.ListingID, "userB", price("50.00"))
	require.NoError(t, err)
	require.True(t, errors.Is(bidRes.Reason, biddingerrors.ErrAuctionClosed))
}

func TestAuctionService_CloseGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := f.listing(t, "owner", "10.00")

	_, err := f.auction.CloseListing(ctx, l.ListingID, "stranger")
	require.True(t, errors.Is(err, biddingerrors.ErrForbidden))

	_, err = f.auction.CloseListing(ctx, l.ListingID, "")
	require.True(t, errors.Is(err, biddingerrors.ErrForbidden))

	_, err = f.auction.CloseListing(ctx, uuid.NewString(), "owner")
	require.True(t, errors.Is(err, biddingerrors.ErrListingNotFound))

	_, err = f.auction.CloseListing(ctx, l.ListingID, "owner")
	require.NoError(t, err)

	_, err = f.auction.CloseListing(ctx, l.ListingID, "owner")
	require.True(t, errors.Is(err, biddingerrors.ErrAlreadyClosed))

	// a non-owner hears Forbidden even once the listing is closed
	_, err = f.auction.CloseListing(ctx, l.ListingID, "stranger")
	require.True(t, errors.Is(err, biddingerrors.ErrForbidden))
}

func TestAuctionService_CloseRacesBids(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := f.listing(t, "owner", "1.00")

	var (
		wg  sync.WaitGroup
		res models.Resolution
	)
	for i := 2; i < 40; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			_, err := f.bidding.PlaceBid(ctx, l.ListingID, uuid.NewString(), decimal.NewFromInt(int64(i)))
			assert.NoError(t, err)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		res, err = f.auction.CloseListing(ctx, l.ListingID, "owner")
		assert.NoError(t, err)
	}()
	wg.Wait()

	// the resolution at close time stays the resolution afterwards
	final, err := f.auction.GetResolution(ctx, l.ListingID)
	require.NoError(t, err)
	require.Equal(t, res.Sold, final.Sold)
	require.Equal(t, res.WinnerID, final.WinnerID)
	require.True(t, res.Amount.Equal(final.Amount))
}

func TestAuctionService_GetResolution_Open(t *testing.T) {
	f := newFixture()
	l := f.listing(t, "owner", "10.00")

	_, err := f.auction.GetResolution(context.Background(), l.ListingID)
	require.True(t, errors.Is(err, biddingerrors.ErrAuctionOpen))
}

func TestAuctionService_OpenListingView(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := f.listing(t, "owner", "10.00")
	f.bid(t, l.ListingID, "userB", "11.00")
	require.NoError(t, f.repo.AddWatchlistEntry(ctx, models.WatchlistEntry{ListingID: l.ListingID, UserID: "userB"}))
	require.NoError(t, f.repo.AddComment(ctx, models.Comment{CommentID: "c1", ListingID: l.ListingID, UserID: "userC", Message: "is it still working?"}))

	// Table-driven test cases
	tests := []struct {
		name        string
		viewer      string
		isSeller    bool
		isHighest   bool
		onWatchlist bool
	}{
		{name: "anonymous", viewer: ""},
		{name: "owner", viewer: "owner", isSeller: true},
		{name: "highest_bidder", viewer: "userB", isHighest: true, onWatchlist: true},
		{name: "other_user", viewer: "userC"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			view, err := f.auction.GetListingView(ctx, l.ListingID, tc.viewer)
			require.NoError(t, err)
			require.Equal(t, tc.isSeller, view.ViewerIsSeller)
			require.Equal(t, tc.isHighest, view.ViewerIsHighestBidder)
			require.Equal(t, tc.onWatchlist, view.OnWatchlist)
			require.False(t, view.ViewerIsBuyer)
			require.Nil(t, view.Resolution)
			require.Equal(t, 1, view.TotalBids)
			require.NotNil(t, view.HighestBid)
			require.True(t, view.Listing.CurrentPrice.Equal(price("11.00")))
			require.Len(t, view.Comments, 1)
		})
	}

	_, err := f.auction.GetListingView(ctx, uuid.NewString(), "owner")
	require.True(t, errors.Is(err, biddingerrors.ErrListingNotFound))
}

func TestAuctionService_ListByCategory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	books, err := f.auction.CreateListing(ctx, models.NewListing{
		Title: "Novel", Description: "Hardcover", StartingPrice: price("5"), Category: "BnS", OwnerID: "owner",
	})
	require.NoError(t, err)
	closedBook, err := f.auction.CreateListing(ctx, models.NewListing{
		Title: "Atlas", Description: "World atlas", StartingPrice: price("5"), Category: "BnS", OwnerID: "owner",
	})
	require.NoError(t, err)
	_, err = f.auction.CreateListing(ctx, models.NewListing{
		Title: "Robot", Description: "Toy robot", StartingPrice: price("5"), Category: "TnG", OwnerID: "owner",
	})
	require.NoError(t, err)
	_, err = f.auction.CloseListing(ctx, closedBook.ListingID, "owner")
	require.NoError(t, err)

	listings, err := f.auction.ListByCategory(ctx, "BnS")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Equal(t, books.ListingID, listings[0].ListingID)

	_, err = f.auction.ListByCategory(ctx, "nope")
	require.True(t, errors.Is(err, biddingerrors.ErrInvalidCategory))

	open, err := f.auction.ListOpenListings(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)

	closed, err := f.auction.ListClosedListings(ctx)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	require.Equal(t, closedBook.ListingID, closed[0].ListingID)
}

func TestAuctionService_StoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	mockTx := repository.NewMockListingTx(ctrl)
	service := NewAuctionService(mockRepo, nil)

	mockRepo.EXPECT().ListOpen(gomock.Any()).Return(nil, errors.New("db failure"))
	_, err := service.ListOpenListings(context.Background())
	require.Error(t, err)

	mockRepo.EXPECT().CreateListing(gomock.Any(), gomock.Any()).Return(errors.New("db failure"))
	_, err = service.CreateListing(context.Background(), models.NewListing{
		Title: "t", Description: "d", StartingPrice: price("1"), OwnerID: "owner",
	})
	require.Error(t, err)

	// a failing close leaves the listing untouched and reports the error
	mockRepo.EXPECT().
		WithListingTx(gomock.Any(), "l1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, fn func(repository.ListingTx) error) error {
			return fn(mockTx)
		})
	mockTx.EXPECT().Listing().Return(models.Listing{ListingID: "l1", OwnerID: "owner"}, nil)
	mockTx.EXPECT().HighestBid().Return(models.Bid{}, biddingerrors.ErrNoBids)
	mockTx.EXPECT().Close().Return(errors.New("disk full"))

	_, err = service.CloseListing(context.Background(), "l1", "owner")
	require.Error(t, err)
}
