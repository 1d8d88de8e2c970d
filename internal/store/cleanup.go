package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MichaelEbbert/ebaysales/internal/db"
)

// ShippedCard is a card with stored images whose order has shipped.
type ShippedCard struct {
	CardID     int64
	ImageFront string
	ImageBack  string
	ShippedAt  time.Time
}

// ListShippedCardsBefore returns cards holding at least one image whose
// order shipped strictly before cutoff.
func ListShippedCardsBefore(ctx context.Context, q db.DBTX, cutoff time.Time) ([]ShippedCard, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.id, c.image_front, c.image_back, o.shipped_at
		 FROM cards c
		 JOIN listings l ON l.card_id = c.id
		 JOIN orders o ON o.listing_id = l.id
		 WHERE o.shipped_at IS NOT NULL
		   AND (c.image_front IS NOT NULL OR c.image_back IS NOT NULL)
		 ORDER BY c.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing shipped cards: %w", err)
	}
	defer rows.Close()

	var out []ShippedCard
	for rows.Next() {
		var sc ShippedCard
		var front, back sql.NullString
		if err := rows.Scan(&sc.CardID, &front, &back, &sc.ShippedAt); err != nil {
			return nil, fmt.Errorf("scanning shipped card: %w", err)
		}
		// Stored timestamps are not lexically comparable, so the cutoff is
		// applied here.
		if !sc.ShippedAt.Before(cutoff) {
			continue
		}
		sc.ImageFront = front.String
		sc.ImageBack = back.String
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ReferencedImages returns the set of image references held by any card.
func ReferencedImages(ctx context.Context, q db.DBTX) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT image_front FROM cards WHERE image_front IS NOT NULL
		 UNION
		 SELECT image_back FROM cards WHERE image_back IS NOT NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing referenced images: %w", err)
	}
	defer rows.Close()

	refs := make(map[string]bool)
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scanning image reference: %w", err)
		}
		refs[ref] = true
	}
	return refs, rows.Err()
}
