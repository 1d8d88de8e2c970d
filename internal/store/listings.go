package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/model"
)

const listingColumns = `l.id, l.card_id, l.ebay_listing_id, l.status, l.scheduled_end_time,
	l.actual_start_time, l.actual_end_time, l.current_bid, l.winning_bid, l.ebay_fees,
	l.created_at, l.updated_at`

func scanListing(row rowScanner, l *model.Listing) error {
	return row.Scan(&l.ID, &l.CardID, &l.EbayListingID, &l.Status, &l.ScheduledEndTime,
		&l.ActualStartTime, &l.ActualEndTime, &l.CurrentBid, &l.WinningBid, &l.EbayFees,
		&l.CreatedAt, &l.UpdatedAt)
}

func insertListing(ctx context.Context, q db.DBTX, l *model.Listing) (*model.Listing, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO listings (card_id, status, scheduled_end_time, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		l.CardID, l.Status, l.ScheduledEndTime.UTC(), l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting listing id: %w", err)
	}
	return GetListing(ctx, q, id)
}

// GetListing returns a listing by ID.
func GetListing(ctx context.Context, q db.DBTX, id int64) (*model.Listing, error) {
	l := &model.Listing{}
	err := scanListing(q.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.id = ?`, id), l)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing: %w", err)
	}
	return l, nil
}

// GetListingByCard returns the listing of a card.
func GetListingByCard(ctx context.Context, q db.DBTX, cardID int64) (*model.Listing, error) {
	l := &model.Listing{}
	err := scanListing(q.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.card_id = ?`, cardID), l)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing for card %d: %w", cardID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing for card: %w", err)
	}
	return l, nil
}

// ListListingsByStatus returns the listings in a status joined with their
// cards and orders, soonest scheduled end first. An empty status returns
// every listing.
func ListListingsByStatus(ctx context.Context, q db.DBTX, status model.Status) ([]model.ListingSummary, error) {
	query := `SELECT ` + listingColumns + `, ` + cardColumns + `, o.id
	          FROM listings l
	          JOIN cards c ON c.id = l.card_id
	          LEFT JOIN orders o ON o.listing_id = l.id`
	var args []any
	if status != "" {
		query += ` WHERE l.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY l.scheduled_end_time, l.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}
	defer rows.Close()

	var out []model.ListingSummary
	var orderIDs []sql.NullInt64
	for rows.Next() {
		var s model.ListingSummary
		var orderID sql.NullInt64
		l := &s.Listing
		c := &s.Card
		var front, back sql.NullString
		err := rows.Scan(&l.ID, &l.CardID, &l.EbayListingID, &l.Status, &l.ScheduledEndTime,
			&l.ActualStartTime, &l.ActualEndTime, &l.CurrentBid, &l.WinningBid, &l.EbayFees,
			&l.CreatedAt, &l.UpdatedAt,
			&c.ID, &c.Category, &c.Name, &c.SetName, &c.CardNumber, &c.PlayerName, &c.Year,
			&c.Condition, &c.Graded, &c.GradingCompany, &c.Grade, &c.Finish, &c.Quantity, &c.StartingBid,
			&c.Notes, &c.PrivateNotes, &front, &back, &c.CreatedAt,
			&orderID)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		c.ImageFront = front.String
		c.ImageBack = back.String
		out = append(out, s)
		orderIDs = append(orderIDs, orderID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// The pool holds a single connection, so orders are loaded after the
	// listing rows are released.
	for i, id := range orderIDs {
		if !id.Valid {
			continue
		}
		o, err := GetOrder(ctx, q, id.Int64)
		if err != nil {
			return nil, err
		}
		out[i].Order = o
	}
	return out, nil
}

// CountListingsByStatus returns the number of listings in every status.
// Statuses with no listings are present with a zero count.
func CountListingsByStatus(ctx context.Context, q db.DBTX) (map[model.Status]int, error) {
	rows, err := q.QueryContext(ctx, `SELECT status, COUNT(*) FROM listings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting listings: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Status]int, len(model.Statuses))
	for _, s := range model.Statuses {
		counts[s] = 0
	}
	for rows.Next() {
		var s model.Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, fmt.Errorf("scanning listing count: %w", err)
		}
		counts[s] = n
	}
	return counts, rows.Err()
}

// SetListingStatus applies a status change and its order side effects in
// one transaction. Nothing is written when the change is rejected.
func SetListingStatus(ctx context.Context, database *sql.DB, id int64, to model.Status, now time.Time, force bool) (*listing.Transition, error) {
	var t *listing.Transition
	err := db.WithTransaction(ctx, database, func(tx *sql.Tx) error {
		l, err := GetListing(ctx, tx, id)
		if err != nil {
			return err
		}
		order, err := GetOrderByListing(ctx, tx, id)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return err
		}

		t, err = listing.SetStatus(l, order, to, now, force)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE listings SET status = ?, updated_at = ? WHERE id = ?`,
			l.Status, l.UpdatedAt, l.ID,
		); err != nil {
			return fmt.Errorf("updating listing status: %w", err)
		}

		switch {
		case t.OrderCreated:
			t.Order, err = insertOrder(ctx, tx, t.Order)
			if err != nil {
				return err
			}
		case t.OrderChanged:
			if _, err := tx.ExecContext(ctx,
				`UPDATE orders SET shipped_at = ?, updated_at = ? WHERE id = ?`,
				t.Order.ShippedAt, t.Order.UpdatedAt, t.Order.ID,
			); err != nil {
				return fmt.Errorf("updating order: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// RescheduleListing moves a listing's scheduled end to the next auction
// end time after now.
func RescheduleListing(ctx context.Context, database *sql.DB, id int64, now time.Time) (*model.Listing, error) {
	var l *model.Listing
	err := db.WithTransaction(ctx, database, func(tx *sql.Tx) error {
		var err error
		l, err = GetListing(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := listing.Reschedule(l, now); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE listings SET scheduled_end_time = ?, updated_at = ? WHERE id = ?`,
			l.ScheduledEndTime, l.UpdatedAt, l.ID,
		)
		if err != nil {
			return fmt.Errorf("rescheduling listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// MarketplaceUpdate carries the marketplace-side fields of a listing that
// the operator copies in by hand.
type MarketplaceUpdate struct {
	EbayListingID   string              `json:"ebay_listing_id"`
	ActualStartTime *time.Time          `json:"actual_start_time"`
	ActualEndTime   *time.Time          `json:"actual_end_time"`
	CurrentBid      decimal.NullDecimal `json:"current_bid"`
	WinningBid      decimal.NullDecimal `json:"winning_bid"`
	EbayFees        decimal.NullDecimal `json:"ebay_fees"`
}

// UpdateListingMarketplace stores the marketplace fields of a listing. The
// status is not touched.
func UpdateListingMarketplace(ctx context.Context, q db.DBTX, id int64, u MarketplaceUpdate, now time.Time) (*model.Listing, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE listings SET ebay_listing_id = ?, actual_start_time = ?, actual_end_time = ?,
		        current_bid = ?, winning_bid = ?, ebay_fees = ?, updated_at = ?
		 WHERE id = ?`,
		u.EbayListingID, utcPtr(u.ActualStartTime), utcPtr(u.ActualEndTime),
		u.CurrentBid, u.WinningBid, u.EbayFees, now.UTC(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating listing: %w", err)
	}
	if err := expectOne(result, "listing", id); err != nil {
		return nil, err
	}
	return GetListing(ctx, q, id)
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
