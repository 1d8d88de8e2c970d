// Package events publishes listing lifecycle changes for downstream
// consumers.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MichaelEbbert/ebaysales/internal/model"
)

// StatusChanged is published after a listing status change commits.
type StatusChanged struct {
	ListingID    int64        `json:"listing_id"`
	CardID       int64        `json:"card_id"`
	From         model.Status `json:"from"`
	To           model.Status `json:"to"`
	Forced       bool         `json:"forced,omitempty"`
	OrderCreated bool         `json:"order_created,omitempty"`
	At           time.Time    `json:"at"`
}

// Subject returns the NATS subject for a listing's status events.
func Subject(listingID int64) string {
	return fmt.Sprintf("listing.status.%d", listingID)
}

// Publisher delivers lifecycle events.
type Publisher interface {
	PublishStatusChanged(e StatusChanged) error
	Close()
}

// NATS publishes events to a NATS server.
type NATS struct {
	conn *nats.Conn
}

// ConnectNATS connects to the NATS server at url.
func ConnectNATS(url string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("ebaysales"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return &NATS{conn: conn}, nil
}

// PublishStatusChanged implements Publisher.
func (n *NATS) PublishStatusChanged(e StatusChanged) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding status event: %w", err)
	}
	if err := n.conn.Publish(Subject(e.ListingID), data); err != nil {
		return fmt.Errorf("publishing status event: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (n *NATS) Close() {
	_ = n.conn.Drain()
}

// Noop discards events. Used when no NATS server is configured.
type Noop struct{}

// PublishStatusChanged implements Publisher.
func (Noop) PublishStatusChanged(StatusChanged) error { return nil }

// Close implements Publisher.
func (Noop) Close() {}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []StatusChanged
}

// PublishStatusChanged implements Publisher.
func (r *Recorder) PublishStatusChanged(e StatusChanged) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() {}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []StatusChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]StatusChanged(nil), r.events...)
}
