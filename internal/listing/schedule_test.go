package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eastern(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, AuctionLocation())
}

func TestNextAuctionEndTime(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"midday", eastern(2024, time.January, 1, 12, 0), eastern(2024, time.January, 6, 23, 0)},
		{"exactly 23:00", eastern(2024, time.January, 1, 23, 0), eastern(2024, time.January, 6, 23, 0)},
		{"after 23:00", eastern(2024, time.January, 1, 23, 30), eastern(2024, time.January, 7, 23, 0)},
		{"just after midnight", eastern(2024, time.January, 2, 0, 1), eastern(2024, time.January, 7, 23, 0)},
		{"into spring forward", eastern(2024, time.March, 5, 23, 30), eastern(2024, time.March, 11, 23, 0)},
		{"into fall back", eastern(2024, time.October, 29, 22, 0), eastern(2024, time.November, 3, 23, 0)},
		{"utc input", time.Date(2024, time.January, 1, 17, 0, 0, 0, time.UTC), eastern(2024, time.January, 6, 23, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextAuctionEndTime(tt.now)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestNextAuctionEndTimeIsEarliest(t *testing.T) {
	start := eastern(2024, time.February, 25, 0, 0)
	end := eastern(2024, time.November, 15, 0, 0)
	for now := start; now.Before(end); now = now.Add(97 * time.Minute) {
		got := NextAuctionEndTime(now)
		local := got.In(AuctionLocation())

		require.Equal(t, AuctionEndHour, local.Hour(), "now %s", now)
		require.Zero(t, local.Minute())
		require.Zero(t, local.Second())
		require.Zero(t, local.Nanosecond())
		require.False(t, got.Before(now.Add(MinLeadTime)), "now %s got %s", now, got)

		y, m, d := local.Date()
		prev := time.Date(y, m, d-1, AuctionEndHour, 0, 0, 0, AuctionLocation())
		require.True(t, prev.Before(now.Add(MinLeadTime)), "now %s: earlier candidate %s qualifies", now, prev)
	}
}
