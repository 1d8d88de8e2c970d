package listing

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// AuctionZone is the civil time zone auctions end in.
const AuctionZone = "America/New_York"

// Auction end anchor and minimum lead time.
const (
	AuctionEndHour = 23
	MinLeadTime    = 120 * time.Hour
)

var auctionLoc = mustLoadLocation(AuctionZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// AuctionLocation returns the location auction end times are anchored to.
func AuctionLocation() *time.Location {
	return auctionLoc
}

// NextAuctionEndTime returns the earliest 23:00:00 Eastern instant that is
// at least 120 hours after now. Days are stepped on the civil calendar, so
// the result stays on 23:00 across DST changes.
func NextAuctionEndTime(now time.Time) time.Time {
	local := now.In(auctionLoc)
	y, m, d := local.Date()
	at := func(day int) time.Time {
		return time.Date(y, m, day, AuctionEndHour, 0, 0, 0, auctionLoc)
	}

	day := d
	candidate := at(day)
	if !candidate.After(now) {
		day++
		candidate = at(day)
	}
	earliest := now.Add(MinLeadTime)
	for candidate.Before(earliest) {
		day++
		candidate = at(day)
	}
	return candidate
}
