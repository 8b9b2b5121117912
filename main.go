package main

import (
	auction "auction-house/internal/auctionService"
	bidding "auction-house/internal/biddingService"
	community "auction-house/internal/communityService"
	"auction-house/internal/config"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/utils"
	"context"
	"flag"
	"fmt"

	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}

	logCloser, err := utils.ConfigureLogger(utils.LogOptions{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		utils.Fatal("failed to configure logger", map[string]any{"error": err.Error()})
	}
	defer logCloser.Close()

	ctx := context.Background()
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"driver": cfg.Store.Driver, "error": err.Error()})
	}
	defer store.Close()

	auctionSvc := auction.NewAuctionService(store, store)
	if cfg.Seed {
		prepopulateListings(ctx, auctionSvc)
	}

	router := server.SetupRouter(server.Services{
		Bidding:   bidding.NewBiddingService(store),
		Auction:   auctionSvc,
		Community: community.NewCommunityService(store),
	})

	addr := cfg.Server.Addr()
	utils.Info(fmt.Sprintf("Starting auction server on %s...", addr), map[string]any{"store": cfg.Store.Driver})
	if err := router.Run(addr); err != nil {
		utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
	}
}

// openStore returns the configured storage backend
func openStore(ctx context.Context, cfg config.StoreConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return repository.NewSQLiteRepo(ctx, cfg.DSN, cfg.BusyTimeout)
	default:
		return repository.NewMemoryRepo(), nil
	}
}

// prepopulateListings adds sample listings owned by a demo seller
func prepopulateListings(ctx context.Context, svc *auction.AuctionService) {
	listings := []model.NewListing{
		{Title: "Noise-cancelling headphones", Description: "Over-ear, barely used", StartingPrice: decimal.RequireFromString("100.00"), Category: string(model.CategoryElectronics), OwnerID: "seller1"},
		{Title: "Trail running shoes", Description: "Size 42, two seasons old", StartingPrice: decimal.RequireFromString("45.50"), Category: string(model.CategorySports), OwnerID: "seller1"},
		{Title: "Cast iron skillet", Description: "Pre-seasoned 12 inch pan", StartingPrice: decimal.RequireFromString("30.00"), Category: string(model.CategoryKitchen), OwnerID: "seller2"},
	}

	for _, in := range listings {
		if _, err := svc.CreateListing(ctx, in); err != nil {
			utils.Warn("failed to seed listing", map[string]any{"title": in.Title, "error": err.Error()})
		}
	}
}
