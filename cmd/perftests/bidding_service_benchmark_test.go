package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	bidding "auction-house/internal/biddingService"
	model "auction-house/internal/models"
	repository "auction-house/internal/repository"

	"github.com/shopspring/decimal"
)

// addListing stores an open listing at the given starting price
func addListing(b *testing.B, repo repository.ListingStore, listingID string, startingPrice int64) {
	p := decimal.NewFromInt(startingPrice)
	err := repo.CreateListing(context.Background(), model.Listing{
		ListingID:     listingID,
		Title:         "Benchmark listing",
		Description:   "Used to measure bid admission",
		StartingPrice: p,
		CurrentPrice:  p,
		OwnerID:       "bench_owner",
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		b.Fatalf("failed to add listing: %v", err)
	}
}

// Benchmark 1: PlaceBid - Isolated Listings (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo)
	ctx := context.Background()

	for i := 0; i < b.N; i++ {
		addListing(b, repo, fmt.Sprintf("listing_%d", i), 50)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		userID := fmt.Sprintf("user_%d", i)
		listingID := fmt.Sprintf("listing_%d", i)
		amount := decimal.NewFromInt(int64(51 + rand.Intn(100)))
		if _, err := svc.PlaceBid(ctx, listingID, userID, amount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Listing (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedListing(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo)
	ctx := context.Background()
	addListing(b, repo, "shared_listing_1", 50)

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			userID := fmt.Sprintf("user_parallel_%d", rnd.Int())
			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _ = svc.PlaceBid(ctx, "shared_listing_1", userID, decimal.NewFromInt(nextBid))
		}
	})
}

// Benchmark 3: GetHighestBid - Single-Threaded (Low Contention)
func Benchmark_GetHighestBid_SingleThreaded(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo)
	ctx := context.Background()

	for i := 0; i < b.N; i++ {
		listingID := fmt.Sprintf("listing_%d", i)
		addListing(b, repo, listingID, 50)
		for j := 1; j <= 10; j++ {
			userID := fmt.Sprintf("user_%d_%d", i, j)
			_, _ = svc.PlaceBid(ctx, listingID, userID, decimal.NewFromInt(int64(50+j*10)))
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.GetHighestBid(ctx, fmt.Sprintf("listing_%d", i)); err != nil {
			b.Fatalf("failed to get highest bid: %v", err)
		}
	}
}

// Benchmark 4: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedListing(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo)
	ctx := context.Background()
	addListing(b, repo, "shared_listing_1", 50)

	for j := 1; j <= 50; j++ {
		userID := fmt.Sprintf("user_seed_%d", j)
		_, _ = svc.PlaceBid(ctx, "shared_listing_1", userID, decimal.NewFromInt(int64(50+j*2)))
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 150

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			if rnd.Intn(10) < 3 {
				userID := fmt.Sprintf("user_writer_%d", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid(ctx, "shared_listing_1", userID, decimal.NewFromInt(nextBid))
				continue
			}
			if _, err := svc.GetHighestBid(ctx, "shared_listing_1"); err != nil {
				b.Errorf("read error: %v", err)
			}
		}
	})
}

// Benchmark 5: PlaceBid on the SQLite store, one listing per bid
func Benchmark_PlaceBid_SQLite(b *testing.B) {
	repo, err := repository.NewSQLiteRepo(context.Background(), ":memory:", time.Second)
	if err != nil {
		b.Fatalf("failed to open sqlite: %v", err)
	}
	defer repo.Close()
	svc := bidding.NewBiddingService(repo)
	ctx := context.Background()

	for i := 0; i < b.N; i++ {
		addListing(b, repo, fmt.Sprintf("listing_%d", i), 50)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.PlaceBid(ctx, fmt.Sprintf("listing_%d", i), "user", decimal.NewFromInt(60)); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}
