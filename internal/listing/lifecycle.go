package listing

import (
	"fmt"
	"time"

	"github.com/MichaelEbbert/ebaysales/internal/model"
)

// transitions lists the statuses reachable from each status without force.
var transitions = map[model.Status][]model.Status{
	model.StatusDraft:       {model.StatusScheduled, model.StatusListed},
	model.StatusScheduled:   {model.StatusDraft, model.StatusListed},
	model.StatusListed:      {model.StatusEndedUnsold, model.StatusEndedSold},
	model.StatusEndedUnsold: {model.StatusDraft, model.StatusScheduled, model.StatusListed},
	model.StatusEndedSold:   {model.StatusPaid},
	model.StatusPaid:        {model.StatusShipped},
	model.StatusShipped:     {model.StatusComplete},
}

// CanTransition reports whether a listing may move from one status to
// another without force. Staying in the same status is always allowed.
func CanTransition(from, to model.Status) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Next returns the statuses reachable from s without force.
func Next(s model.Status) []model.Status {
	return append([]model.Status(nil), transitions[s]...)
}

// NewListing returns the draft listing created alongside a new card.
func NewListing(c *model.Card, now time.Time) *model.Listing {
	now = now.UTC()
	return &model.Listing{
		CardID:           c.ID,
		Status:           model.StatusDraft,
		ScheduledEndTime: NextAuctionEndTime(now).UTC(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Transition is the outcome of SetStatus.
type Transition struct {
	From    model.Status
	To      model.Status
	Listing *model.Listing
	// Order is the listing's order after the change, nil when none exists.
	Order *model.Order
	// OrderCreated is set when the change to paid created the order.
	OrderCreated bool
	// OrderChanged is set when an existing order was modified.
	OrderChanged bool
}

// SetStatus moves l to status to and applies the side effects of the new
// status. order is the listing's current order or nil. Without force, moves
// outside the transition table fail with ErrIllegalTransition and nothing
// is modified.
//
// Entering paid creates a paid order when none exists and leaves an existing
// one alone. Entering shipped stamps shipped_at on an existing order and
// never creates one.
func SetStatus(l *model.Listing, order *model.Order, to model.Status, now time.Time, force bool) (*Transition, error) {
	if _, err := model.ParseStatus(string(to)); err != nil {
		return nil, err
	}
	from := l.Status
	if !force && !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", model.ErrIllegalTransition, from, to)
	}

	now = now.UTC()
	l.Status = to
	l.UpdatedAt = now

	t := &Transition{From: from, To: to, Listing: l, Order: order}
	switch to {
	case model.StatusPaid:
		if order == nil {
			paidAt := now
			t.Order = &model.Order{
				ListingID:     l.ID,
				PaymentStatus: model.PaymentPaid,
				PaidAt:        &paidAt,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			t.OrderCreated = true
		}
	case model.StatusShipped:
		if order != nil {
			shippedAt := now
			order.ShippedAt = &shippedAt
			order.UpdatedAt = now
			t.OrderChanged = true
		}
	}
	return t, nil
}

// Reschedule recomputes the scheduled end time. Only listings that have not
// gone live can be rescheduled.
func Reschedule(l *model.Listing, now time.Time) error {
	switch l.Status {
	case model.StatusDraft, model.StatusScheduled, model.StatusEndedUnsold:
	default:
		return fmt.Errorf("%w: cannot reschedule a %s listing", model.ErrIllegalTransition, l.Status)
	}
	now = now.UTC()
	l.ScheduledEndTime = NextAuctionEndTime(now).UTC()
	l.UpdatedAt = now
	return nil
}

// CanDelete reports whether a card with listing l and order o may be
// deleted. A card without a listing, or whose listing is still a draft with
// no order, can be deleted. An order is kept even when force has moved its
// listing back to draft.
func CanDelete(l *model.Listing, o *model.Order) bool {
	if l == nil {
		return true
	}
	return l.Status == model.StatusDraft && o == nil
}

// CheckDeletion returns ErrIllegalDeletion when CanDelete is false.
func CheckDeletion(l *model.Listing, o *model.Order) error {
	if CanDelete(l, o) {
		return nil
	}
	if o != nil {
		return fmt.Errorf("%w (listing %d has order %d)", model.ErrIllegalDeletion, l.ID, o.ID)
	}
	return fmt.Errorf("%w (listing %d is %s)", model.ErrIllegalDeletion, l.ID, l.Status)
}
