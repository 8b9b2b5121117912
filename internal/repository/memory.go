package repository

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/models"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

type listingRecord struct {
	txMu    sync.Mutex // serializes WithListingTx on this listing
	listing models.Listing
	seq     int // insertion order, breaks CreatedAt ties
}

// MemoryRepo is a concurrency-safe in-memory implementation of Store
type MemoryRepo struct {
	mu        sync.RWMutex
	seq       int
	listings  map[string]*listingRecord                   // key: listingID -> value: listing
	bids      map[string][]models.Bid                     // key: listingID -> value: bids in append order
	userBids  map[string][]string                         // key: userID -> value: listingIDs user has bid on
	watchlist map[string]map[string]models.WatchlistEntry // key: userID -> listingID -> entry
	comments  map[string][]models.Comment                 // key: listingID -> value: comments in post order
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		listings:  make(map[string]*listingRecord),
		bids:      make(map[string][]models.Bid),
		userBids:  make(map[string][]string),
		watchlist: make(map[string]map[string]models.WatchlistEntry),
		comments:  make(map[string][]models.Comment),
	}
}

// CreateListing stores a new listing
func (r *MemoryRepo) CreateListing(_ context.Context, listing models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.ListingID == "" {
		return fmt.Errorf("create listing: %w - empty listing ID", biddingerrors.ErrValidation)
	}
	if _, ok := r.listings[listing.ListingID]; ok {
		return fmt.Errorf("create listing %s: %w - duplicate listing ID", listing.ListingID, biddingerrors.ErrValidation)
	}
	r.seq++
	r.listings[listing.ListingID] = &listingRecord{listing: listing, seq: r.seq}
	return nil
}

// GetListing returns a snapshot of a listing
func (r *MemoryRepo) GetListing(_ context.Context, listingID string) (models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.listings[listingID]
	if !ok {
		return models.Listing{}, fmt.Errorf("get listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	return rec.listing, nil
}

// ListOpen returns open listings, newest first
func (r *MemoryRepo) ListOpen(_ context.Context) ([]models.Listing, error) {
	return r.filterListings(func(l models.Listing) bool { return !l.IsClosed }), nil
}

// ListClosed returns closed listings, newest first
func (r *MemoryRepo) ListClosed(_ context.Context) ([]models.Listing, error) {
	return r.filterListings(func(l models.Listing) bool { return l.IsClosed }), nil
}

// ListOpenByCategory returns open listings of a category, newest first
func (r *MemoryRepo) ListOpenByCategory(_ context.Context, category models.Category) ([]models.Listing, error) {
	return r.filterListings(func(l models.Listing) bool { return !l.IsClosed && l.Category == category }), nil
}

func (r *MemoryRepo) filterListings(keep func(models.Listing) bool) []models.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := make([]*listingRecord, 0, len(r.listings))
	for _, rec := range r.listings {
		if keep(rec.listing) {
			recs = append(recs, rec)
		}
	}
	sortNewest(recs)

	out := make([]models.Listing, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.listing)
	}
	return out
}

func sortNewest(recs []*listingRecord) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.listing.CreatedAt.Equal(b.listing.CreatedAt) {
			return a.listing.CreatedAt.After(b.listing.CreatedAt)
		}
		return a.seq > b.seq
	})
}

// GetHighestBid returns the highest bid for a listing
func (r *MemoryRepo) GetHighestBid(_ context.Context, listingID string) (models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return models.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	winning, ok := highestOf(r.bids[listingID])
	if !ok {
		return models.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, biddingerrors.ErrNoBids)
	}
	return winning, nil
}

// highestOf picks the maximum amount, earliest timestamp on ties
func highestOf(bids []models.Bid) (models.Bid, bool) {
	if len(bids) == 0 {
		return models.Bid{}, false
	}
	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount.GreaterThan(winning.Amount) || (b.Amount.Equal(winning.Amount) && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning, true
}

// CountBids returns the number of bids on a listing
func (r *MemoryRepo) CountBids(_ context.Context, listingID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return 0, fmt.Errorf("count bids for listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	return len(r.bids[listingID]), nil
}

// GetBidsByListing returns all bids for a listing, newest first
func (r *MemoryRepo) GetBidsByListing(_ context.Context, listingID string) ([]models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	bids := r.bids[listingID]
	out := make([]models.Bid, 0, len(bids))
	for i := len(bids) - 1; i >= 0; i-- {
		out = append(out, bids[i])
	}
	return out, nil
}

// GetListingsByBidder returns all listings a user has bid on
func (r *MemoryRepo) GetListingsByBidder(_ context.Context, userID string) ([]models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listingIDs, ok := r.userBids[userID]
	if !ok || len(listingIDs) == 0 {
		return nil, fmt.Errorf("get listings for user %s: %w", userID, biddingerrors.ErrUserNoBids)
	}

	listings := make([]models.Listing, 0, len(listingIDs))
	for _, id := range listingIDs {
		if rec, exists := r.listings[id]; exists {
			listings = append(listings, rec.listing)
		}
	}
	return listings, nil
}

// WithListingTx runs fn while holding the listing's lock. Staged writes are
// applied atomically when fn returns nil. Unknown listings fail before any
// lock is taken, so lookups of missing ids leave no state behind.
func (r *MemoryRepo) WithListingTx(_ context.Context, listingID string, fn func(tx ListingTx) error) error {
	r.mu.RLock()
	rec, ok := r.listings[listingID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("listing tx %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}

	rec.txMu.Lock()
	defer rec.txMu.Unlock()

	r.mu.RLock()
	listing := rec.listing
	r.mu.RUnlock()

	tx := &memoryTx{repo: r, listing: listing}
	if err := fn(tx); err != nil {
		return err
	}
	r.commit(tx)
	return nil
}

func (r *MemoryRepo) commit(tx *memoryTx) {
	if !tx.dirty {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := tx.listing.ListingID
	r.listings[id].listing = tx.listing
	for _, bid := range tx.appended {
		r.bids[id] = append(r.bids[id], bid)
		r.trackBidder(bid.BidderID, id)
	}
}

func (r *MemoryRepo) trackBidder(userID, listingID string) {
	for _, id := range r.userBids[userID] {
		if id == listingID {
			return
		}
	}
	r.userBids[userID] = append(r.userBids[userID], listingID)
}

// memoryTx stages writes against a single listing
type memoryTx struct {
	repo     *MemoryRepo
	listing  models.Listing
	appended []models.Bid
	dirty    bool
}

func (tx *memoryTx) Listing() (models.Listing, error) {
	return tx.listing, nil
}

func (tx *memoryTx) committedBids() []models.Bid {
	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()
	return append([]models.Bid(nil), tx.repo.bids[tx.listing.ListingID]...)
}

func (tx *memoryTx) HighestBid() (models.Bid, error) {
	winning, ok := highestOf(append(tx.committedBids(), tx.appended...))
	if !ok {
		return models.Bid{}, fmt.Errorf("highest bid for listing %s: %w", tx.listing.ListingID, biddingerrors.ErrNoBids)
	}
	return winning, nil
}

func (tx *memoryTx) BidCount() (int, error) {
	return len(tx.committedBids()) + len(tx.appended), nil
}

func (tx *memoryTx) AppendBid(bid models.Bid) error {
	if bid.ListingID != tx.listing.ListingID {
		return fmt.Errorf("append bid: listing %s outside transaction for %s", bid.ListingID, tx.listing.ListingID)
	}
	if tx.listing.IsClosed {
		return fmt.Errorf("append bid to listing %s: %w", bid.ListingID, biddingerrors.ErrAuctionClosed)
	}
	tx.appended = append(tx.appended, bid)
	tx.dirty = true
	return nil
}

func (tx *memoryTx) UpdatePrice(price decimal.Decimal) error {
	if price.LessThan(tx.listing.CurrentPrice) {
		return fmt.Errorf("update price of listing %s from %s to %s: %w",
			tx.listing.ListingID, tx.listing.CurrentPrice.StringFixed(2), price.StringFixed(2), biddingerrors.ErrInvariantViolation)
	}
	tx.listing.CurrentPrice = price
	tx.dirty = true
	return nil
}

func (tx *memoryTx) Close() error {
	if tx.listing.IsClosed {
		return fmt.Errorf("close listing %s: %w", tx.listing.ListingID, biddingerrors.ErrAlreadyClosed)
	}
	tx.listing.IsClosed = true
	tx.dirty = true
	return nil
}

// AddWatchlistEntry puts a listing on a user's watchlist
func (r *MemoryRepo) AddWatchlistEntry(_ context.Context, entry models.WatchlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[entry.ListingID]; !ok {
		return fmt.Errorf("add watchlist entry for listing %s: %w", entry.ListingID, biddingerrors.ErrListingNotFound)
	}
	watched := r.watchlist[entry.UserID]
	if watched == nil {
		watched = make(map[string]models.WatchlistEntry)
		r.watchlist[entry.UserID] = watched
	}
	if _, ok := watched[entry.ListingID]; ok {
		return fmt.Errorf("add watchlist entry for listing %s: %w", entry.ListingID, biddingerrors.ErrAlreadyWatching)
	}
	watched[entry.ListingID] = entry
	return nil
}

// RemoveWatchlistEntry takes a listing off a user's watchlist
func (r *MemoryRepo) RemoveWatchlistEntry(_ context.Context, listingID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.watchlist[userID][listingID]; !ok {
		return fmt.Errorf("remove watchlist entry for listing %s: %w", listingID, biddingerrors.ErrNotWatching)
	}
	delete(r.watchlist[userID], listingID)
	return nil
}

// IsWatching reports whether the user watches the listing
func (r *MemoryRepo) IsWatching(_ context.Context, listingID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.watchlist[userID][listingID]
	return ok, nil
}

// GetWatchlist returns the open listings a user watches, newest first
func (r *MemoryRepo) GetWatchlist(_ context.Context, userID string) ([]models.Listing, error) {
	r.mu.RLock()
	watched := make(map[string]bool, len(r.watchlist[userID]))
	for id := range r.watchlist[userID] {
		watched[id] = true
	}
	r.mu.RUnlock()

	return r.filterListings(func(l models.Listing) bool { return !l.IsClosed && watched[l.ListingID] }), nil
}

// AddComment records a comment on a listing
func (r *MemoryRepo) AddComment(_ context.Context, comment models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[comment.ListingID]; !ok {
		return fmt.Errorf("add comment on listing %s: %w", comment.ListingID, biddingerrors.ErrListingNotFound)
	}
	r.comments[comment.ListingID] = append(r.comments[comment.ListingID], comment)
	return nil
}

// GetComments returns a listing's comments, newest first
func (r *MemoryRepo) GetComments(_ context.Context, listingID string) ([]models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return nil, fmt.Errorf("get comments for listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	comments := r.comments[listingID]
	out := make([]models.Comment, 0, len(comments))
	for i := len(comments) - 1; i >= 0; i-- {
		out = append(out, comments[i])
	}
	return out, nil
}

// Close releases nothing; it satisfies Store
func (r *MemoryRepo) Close() error {
	return nil
}
