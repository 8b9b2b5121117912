package repository

import (
	"auction-house/internal/biddingerrors"
	"auction-house/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// timeLayout has a fixed width so that stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepo is a Store backed by an embedded SQLite database. It keeps a
// single connection, so transactions are fully serialized.
type SQLiteRepo struct {
	db *sql.DB
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NewSQLiteRepo opens (or creates) the database at dsn and migrates the schema.
// Use ":memory:" for a throwaway database.
func NewSQLiteRepo(ctx context.Context, dsn string, busyTimeout time.Duration) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	// a :memory: database lives only as long as its connection
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	r := &SQLiteRepo{db: db}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return r, nil
}

// withPragmas appends connection pragmas to the DSN so the driver applies
// them to every connection it opens, not only the first one.
func withPragmas(dsn string, busyTimeout time.Duration) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", dsn, sep, busyTimeout.Milliseconds())
}

func (r *SQLiteRepo) migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS listings (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  image_url TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  starting_price_cents INTEGER NOT NULL,
  current_price_cents INTEGER NOT NULL,
  owner_id TEXT NOT NULL,
  is_closed INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_closed_created ON listings(is_closed, created_at DESC);`,
		`
CREATE TABLE IF NOT EXISTS bids (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
  bidder_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_bids_listing_amount ON bids(listing_id, amount_cents DESC, created_at ASC);`,
		`CREATE INDEX IF NOT EXISTS idx_bids_bidder ON bids(bidder_id);`,
		`
CREATE TABLE IF NOT EXISTS watchlist (
  listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  created_at TEXT NOT NULL,
  PRIMARY KEY (listing_id, user_id)
);`,
		`
CREATE TABLE IF NOT EXISTS comments (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  message TEXT NOT NULL,
  created_at TEXT NOT NULL
);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(models.PricePlaces).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -models.PricePlaces)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

const listingColumns = `id,title,description,image_url,category,starting_price_cents,current_price_cents,owner_id,is_closed,created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (models.Listing, error) {
	var (
		l                 models.Listing
		category, created string
		starting, current int64
		closed            int64
	)
	if err := row.Scan(&l.ListingID, &l.Title, &l.Description, &l.ImageURL, &category, &starting, &current, &l.OwnerID, &closed, &created); err != nil {
		return models.Listing{}, err
	}
	l.Category = models.Category(category)
	l.StartingPrice = fromCents(starting)
	l.CurrentPrice = fromCents(current)
	l.IsClosed = closed != 0
	createdAt, err := parseTime(created)
	if err != nil {
		return models.Listing{}, fmt.Errorf("listing %s: %w", l.ListingID, err)
	}
	l.CreatedAt = createdAt
	return l, nil
}

func scanBid(row rowScanner) (models.Bid, error) {
	var (
		b       models.Bid
		amount  int64
		created string
	)
	if err := row.Scan(&b.BidID, &b.ListingID, &b.BidderID, &amount, &created); err != nil {
		return models.Bid{}, err
	}
	b.Amount = fromCents(amount)
	createdAt, err := parseTime(created)
	if err != nil {
		return models.Bid{}, fmt.Errorf("bid %s: %w", b.BidID, err)
	}
	b.CreatedAt = createdAt
	return b, nil
}

func getListing(ctx context.Context, q queryer, listingID string) (models.Listing, error) {
	l, err := scanListing(q.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id=?`, listingID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, fmt.Errorf("get listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	if err != nil {
		return models.Listing{}, fmt.Errorf("get listing %s: %w", listingID, err)
	}
	return l, nil
}

func listingExists(ctx context.Context, q queryer, listingID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM listings WHERE id=?`, listingID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return biddingerrors.ErrListingNotFound
	}
	return err
}

func highestBid(ctx context.Context, q queryer, listingID string) (models.Bid, error) {
	b, err := scanBid(q.QueryRowContext(ctx, `
SELECT id,listing_id,bidder_id,amount_cents,created_at
FROM bids WHERE listing_id=?
ORDER BY amount_cents DESC, created_at ASC, seq ASC
LIMIT 1
`, listingID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, biddingerrors.ErrNoBids)
	}
	if err != nil {
		return models.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, err)
	}
	return b, nil
}

func countBids(ctx context.Context, q queryer, listingID string) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bids WHERE listing_id=?`, listingID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bids for listing %s: %w", listingID, err)
	}
	return n, nil
}

func (r *SQLiteRepo) queryListings(ctx context.Context, query string, args ...any) ([]models.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CreateListing stores a new listing
func (r *SQLiteRepo) CreateListing(ctx context.Context, l models.Listing) error {
	if l.ListingID == "" {
		return fmt.Errorf("create listing: %w - empty listing ID", biddingerrors.ErrValidation)
	}
	if err := listingExists(ctx, r.db, l.ListingID); err == nil {
		return fmt.Errorf("create listing %s: %w - duplicate listing ID", l.ListingID, biddingerrors.ErrValidation)
	} else if !errors.Is(err, biddingerrors.ErrListingNotFound) {
		return fmt.Errorf("create listing %s: %w", l.ListingID, err)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO listings (`+listingColumns+`)
VALUES (?,?,?,?,?,?,?,?,?,?)
`, l.ListingID, l.Title, l.Description, l.ImageURL, string(l.Category), toCents(l.StartingPrice), toCents(l.CurrentPrice),
		l.OwnerID, boolToInt(l.IsClosed), formatTime(l.CreatedAt))
	if err != nil {
		return fmt.Errorf("create listing %s: %w", l.ListingID, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetListing returns a snapshot of a listing
func (r *SQLiteRepo) GetListing(ctx context.Context, listingID string) (models.Listing, error) {
	return getListing(ctx, r.db, listingID)
}

// ListOpen returns open listings, newest first
func (r *SQLiteRepo) ListOpen(ctx context.Context) ([]models.Listing, error) {
	return r.queryListings(ctx, `SELECT `+listingColumns+` FROM listings WHERE is_closed=0 ORDER BY created_at DESC, seq DESC`)
}

// ListClosed returns closed listings, newest first
func (r *SQLiteRepo) ListClosed(ctx context.Context) ([]models.Listing, error) {
	return r.queryListings(ctx, `SELECT `+listingColumns+` FROM listings WHERE is_closed=1 ORDER BY created_at DESC, seq DESC`)
}

// ListOpenByCategory returns open listings of a category, newest first
func (r *SQLiteRepo) ListOpenByCategory(ctx context.Context, category models.Category) ([]models.Listing, error) {
	return r.queryListings(ctx, `SELECT `+listingColumns+` FROM listings WHERE is_closed=0 AND category=? ORDER BY created_at DESC, seq DESC`, string(category))
}

// GetHighestBid returns the highest bid for a listing
func (r *SQLiteRepo) GetHighestBid(ctx context.Context, listingID string) (models.Bid, error) {
	if err := listingExists(ctx, r.db, listingID); err != nil {
		return models.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, err)
	}
	return highestBid(ctx, r.db, listingID)
}

// CountBids returns the number of bids on a listing
func (r *SQLiteRepo) CountBids(ctx context.Context, listingID string) (int, error) {
	if err := listingExists(ctx, r.db, listingID); err != nil {
		return 0, fmt.Errorf("count bids for listing %s: %w", listingID, err)
	}
	return countBids(ctx, r.db, listingID)
}

// GetBidsByListing returns all bids for a listing, newest first
func (r *SQLiteRepo) GetBidsByListing(ctx context.Context, listingID string) ([]models.Bid, error) {
	if err := listingExists(ctx, r.db, listingID); err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, err)
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id,listing_id,bidder_id,amount_cents,created_at
FROM bids WHERE listing_id=?
ORDER BY created_at DESC, seq DESC
`, listingID)
	if err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, err)
	}
	defer rows.Close()

	out := []models.Bid{}
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetListingsByBidder returns all listings a user has bid on, in order of first bid
func (r *SQLiteRepo) GetListingsByBidder(ctx context.Context, userID string) ([]models.Listing, error) {
	listings, err := r.queryListings(ctx, `
SELECT l.id,l.title,l.description,l.image_url,l.category,l.starting_price_cents,l.current_price_cents,l.owner_id,l.is_closed,l.created_at
FROM listings l
JOIN (SELECT listing_id, MIN(seq) AS first_seq FROM bids WHERE bidder_id=? GROUP BY listing_id) b
  ON b.listing_id = l.id
ORDER BY b.first_seq ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("get listings for user %s: %w", userID, err)
	}
	if len(listings) == 0 {
		return nil, fmt.Errorf("get listings for user %s: %w", userID, biddingerrors.ErrUserNoBids)
	}
	return listings, nil
}

// WithListingTx runs fn inside one SQL transaction
func (r *SQLiteRepo) WithListingTx(ctx context.Context, listingID string, fn func(tx ListingTx) error) (err error) {
	sqlTx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("listing tx %s: begin: %w", listingID, err)
	}
	defer func() {
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err = listingExists(ctx, sqlTx, listingID); err != nil {
		return fmt.Errorf("listing tx %s: %w", listingID, err)
	}
	if err = fn(&sqliteTx{ctx: ctx, tx: sqlTx, listingID: listingID}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("listing tx %s: commit: %w", listingID, err)
	}
	return nil
}

type sqliteTx struct {
	ctx       context.Context
	tx        *sql.Tx
	listingID string
}

func (t *sqliteTx) Listing() (models.Listing, error) {
	return getListing(t.ctx, t.tx, t.listingID)
}

func (t *sqliteTx) HighestBid() (models.Bid, error) {
	return highestBid(t.ctx, t.tx, t.listingID)
}

func (t *sqliteTx) BidCount() (int, error) {
	return countBids(t.ctx, t.tx, t.listingID)
}

func (t *sqliteTx) AppendBid(bid models.Bid) error {
	if bid.ListingID != t.listingID {
		return fmt.Errorf("append bid: listing %s outside transaction for %s", bid.ListingID, t.listingID)
	}
	l, err := t.Listing()
	if err != nil {
		return err
	}
	if l.IsClosed {
		return fmt.Errorf("append bid to listing %s: %w", bid.ListingID, biddingerrors.ErrAuctionClosed)
	}
	_, err = t.tx.ExecContext(t.ctx, `
INSERT INTO bids (id,listing_id,bidder_id,amount_cents,created_at)
VALUES (?,?,?,?,?)
`, bid.BidID, bid.ListingID, bid.BidderID, toCents(bid.Amount), formatTime(bid.CreatedAt))
	if err != nil {
		return fmt.Errorf("append bid to listing %s: %w", bid.ListingID, err)
	}
	return nil
}

func (t *sqliteTx) UpdatePrice(price decimal.Decimal) error {
	l, err := t.Listing()
	if err != nil {
		return err
	}
	if price.LessThan(l.CurrentPrice) {
		return fmt.Errorf("update price of listing %s from %s to %s: %w",
			t.listingID, l.CurrentPrice.StringFixed(2), price.StringFixed(2), biddingerrors.ErrInvariantViolation)
	}
	if _, err := t.tx.ExecContext(t.ctx, `UPDATE listings SET current_price_cents=? WHERE id=?`, toCents(price), t.listingID); err != nil {
		return fmt.Errorf("update price of listing %s: %w", t.listingID, err)
	}
	return nil
}

func (t *sqliteTx) Close() error {
	l, err := t.Listing()
	if err != nil {
		return err
	}
	if l.IsClosed {
		return fmt.Errorf("close listing %s: %w", t.listingID, biddingerrors.ErrAlreadyClosed)
	}
	if _, err := t.tx.ExecContext(t.ctx, `UPDATE listings SET is_closed=1 WHERE id=?`, t.listingID); err != nil {
		return fmt.Errorf("close listing %s: %w", t.listingID, err)
	}
	return nil
}

// AddWatchlistEntry puts a listing on a user's watchlist
func (r *SQLiteRepo) AddWatchlistEntry(ctx context.Context, e models.WatchlistEntry) error {
	if err := listingExists(ctx, r.db, e.ListingID); err != nil {
		return fmt.Errorf("add watchlist entry for listing %s: %w", e.ListingID, err)
	}
	watching, err := r.IsWatching(ctx, e.ListingID, e.UserID)
	if err != nil {
		return err
	}
	if watching {
		return fmt.Errorf("add watchlist entry for listing %s: %w", e.ListingID, biddingerrors.ErrAlreadyWatching)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO watchlist (listing_id,user_id,created_at) VALUES (?,?,?)`,
		e.ListingID, e.UserID, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("add watchlist entry for listing %s: %w", e.ListingID, err)
	}
	return nil
}

// RemoveWatchlistEntry takes a listing off a user's watchlist
func (r *SQLiteRepo) RemoveWatchlistEntry(ctx context.Context, listingID, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watchlist WHERE listing_id=? AND user_id=?`, listingID, userID)
	if err != nil {
		return fmt.Errorf("remove watchlist entry for listing %s: %w", listingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove watchlist entry for listing %s: %w", listingID, err)
	}
	if n == 0 {
		return fmt.Errorf("remove watchlist entry for listing %s: %w", listingID, biddingerrors.ErrNotWatching)
	}
	return nil
}

// IsWatching reports whether the user watches the listing
func (r *SQLiteRepo) IsWatching(ctx context.Context, listingID, userID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM watchlist WHERE listing_id=? AND user_id=?`, listingID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check watchlist for listing %s: %w", listingID, err)
	}
	return true, nil
}

// GetWatchlist returns the open listings a user watches, newest first
func (r *SQLiteRepo) GetWatchlist(ctx context.Context, userID string) ([]models.Listing, error) {
	return r.queryListings(ctx, `
SELECT l.id,l.title,l.description,l.image_url,l.category,l.starting_price_cents,l.current_price_cents,l.owner_id,l.is_closed,l.created_at
FROM listings l
JOIN watchlist w ON w.listing_id = l.id
WHERE w.user_id=? AND l.is_closed=0
ORDER BY l.created_at DESC, l.seq DESC
`, userID)
}

// AddComment records a comment on a listing
func (r *SQLiteRepo) AddComment(ctx context.Context, c models.Comment) error {
	if err := listingExists(ctx, r.db, c.ListingID); err != nil {
		return fmt.Errorf("add comment on listing %s: %w", c.ListingID, err)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO comments (id,listing_id,user_id,message,created_at) VALUES (?,?,?,?,?)`,
		c.CommentID, c.ListingID, c.UserID, c.Message, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("add comment on listing %s: %w", c.ListingID, err)
	}
	return nil
}

// GetComments returns a listing's comments, newest first
func (r *SQLiteRepo) GetComments(ctx context.Context, listingID string) ([]models.Comment, error) {
	if err := listingExists(ctx, r.db, listingID); err != nil {
		return nil, fmt.Errorf("get comments for listing %s: %w", listingID, err)
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id,listing_id,user_id,message,created_at
FROM comments WHERE listing_id=?
ORDER BY created_at DESC, seq DESC
`, listingID)
	if err != nil {
		return nil, fmt.Errorf("get comments for listing %s: %w", listingID, err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		var created string
		if err := rows.Scan(&c.CommentID, &c.ListingID, &c.UserID, &c.Message, &created); err != nil {
			return nil, err
		}
		createdAt, err := parseTime(created)
		if err != nil {
			return nil, fmt.Errorf("comment %s: %w", c.CommentID, err)
		}
		c.CreatedAt = createdAt
		out = append(out, c)
	}
	return out, rows.Err()
}
