package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/listing"
	"github.com/MichaelEbbert/ebaysales/internal/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const cardColumns = `c.id, c.category, c.name, c.set_name, c.card_number, c.player_name, c.year,
	c.condition, c.graded, c.grading_company, c.grade, c.finish, c.quantity, c.starting_bid,
	c.notes, c.private_notes, c.image_front, c.image_back, c.created_at`

func scanCard(row rowScanner, c *model.Card) error {
	var front, back sql.NullString
	err := row.Scan(&c.ID, &c.Category, &c.Name, &c.SetName, &c.CardNumber, &c.PlayerName, &c.Year,
		&c.Condition, &c.Graded, &c.GradingCompany, &c.Grade, &c.Finish, &c.Quantity, &c.StartingBid,
		&c.Notes, &c.PrivateNotes, &front, &back, &c.CreatedAt)
	if err != nil {
		return err
	}
	c.ImageFront = front.String
	c.ImageBack = back.String
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateCardWithListing validates and inserts a card together with its draft
// listing. Both rows are written in one transaction.
func CreateCardWithListing(ctx context.Context, database *sql.DB, c *model.Card, now time.Time) (*model.Card, *model.Listing, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	now = now.UTC()

	var card *model.Card
	var l *model.Listing
	err := db.WithTransaction(ctx, database, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO cards (category, name, set_name, card_number, player_name, year, condition,
			                    graded, grading_company, grade, finish, quantity, starting_bid,
			                    notes, private_notes, image_front, image_back, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Category, c.Name, c.SetName, c.CardNumber, c.PlayerName, c.Year, c.Condition,
			c.Graded, c.GradingCompany, c.Grade, c.Finish, c.Quantity, c.StartingBid,
			c.Notes, c.PrivateNotes, nullString(c.ImageFront), nullString(c.ImageBack), now,
		)
		if err != nil {
			return fmt.Errorf("creating card: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting card id: %w", err)
		}

		card, err = GetCard(ctx, tx, id)
		if err != nil {
			return err
		}

		l, err = insertListing(ctx, tx, listing.NewListing(card, now))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return card, l, nil
}

// GetCard returns a card by ID.
func GetCard(ctx context.Context, q db.DBTX, id int64) (*model.Card, error) {
	c := &model.Card{}
	err := scanCard(q.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards c WHERE c.id = ?`, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting card: %w", err)
	}
	return c, nil
}

// ListCards returns all cards, newest first.
func ListCards(ctx context.Context, q db.DBTX) ([]model.Card, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards c ORDER BY c.created_at DESC, c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		var c model.Card
		if err := scanCard(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// UpdateCard validates and stores the editable fields of c. Images and
// created_at are left alone.
func UpdateCard(ctx context.Context, q db.DBTX, c *model.Card) error {
	if err := c.Validate(); err != nil {
		return err
	}
	result, err := q.ExecContext(ctx,
		`UPDATE cards SET category = ?, name = ?, set_name = ?, card_number = ?, player_name = ?,
		        year = ?, condition = ?, graded = ?, grading_company = ?, grade = ?, finish = ?,
		        quantity = ?, starting_bid = ?, notes = ?, private_notes = ?
		 WHERE id = ?`,
		c.Category, c.Name, c.SetName, c.CardNumber, c.PlayerName,
		c.Year, c.Condition, c.Graded, c.GradingCompany, c.Grade, c.Finish,
		c.Quantity, c.StartingBid, c.Notes, c.PrivateNotes,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating card: %w", err)
	}
	return expectOne(result, "card", c.ID)
}

// SetCardImages sets the image references of a card. A nil argument leaves
// that side unchanged; an empty string clears it.
func SetCardImages(ctx context.Context, q db.DBTX, id int64, front, back *string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE cards SET
		        image_front = CASE WHEN ? THEN ? ELSE image_front END,
		        image_back  = CASE WHEN ? THEN ? ELSE image_back END
		 WHERE id = ?`,
		front != nil, nullString(deref(front)),
		back != nil, nullString(deref(back)),
		id,
	)
	if err != nil {
		return fmt.Errorf("setting card images: %w", err)
	}
	return expectOne(result, "card", id)
}

// ClearCardImages removes both image references from a card.
func ClearCardImages(ctx context.Context, q db.DBTX, id int64) error {
	empty := ""
	return SetCardImages(ctx, q, id, &empty, &empty)
}

// DeleteCard deletes a card and its draft listing. Cards whose listing has
// left draft, or has an order, are refused with model.ErrIllegalDeletion.
func DeleteCard(ctx context.Context, database *sql.DB, id int64) error {
	return db.WithTransaction(ctx, database, func(tx *sql.Tx) error {
		if _, err := GetCard(ctx, tx, id); err != nil {
			return err
		}

		l, err := GetListingByCard(ctx, tx, id)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return err
		}
		var order *model.Order
		if l != nil {
			order, err = GetOrderByListing(ctx, tx, l.ID)
			if err != nil && !errors.Is(err, model.ErrNotFound) {
				return err
			}
		}
		if err := listing.CheckDeletion(l, order); err != nil {
			return err
		}

		if l != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, l.ID); err != nil {
				return fmt.Errorf("deleting listing: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting card: %w", err)
		}
		return nil
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func expectOne(result sql.Result, what string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s update: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, model.ErrNotFound)
	}
	return nil
}
