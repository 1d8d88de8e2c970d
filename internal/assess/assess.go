// Package assess asks a vision model for a second opinion on a card's
// condition.
package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Request describes one scan to assess.
type Request struct {
	Image     []byte
	MediaType string
	// Category is the card category; it selects the condition scale.
	Category string
	Side     string
	// SelectedCondition is the seller's own grade, possibly empty.
	SelectedCondition string
}

// Assessor returns a free-text condition assessment for one image.
type Assessor interface {
	Assess(ctx context.Context, req Request) (string, error)
	Name() string
}

// Retry policy.
const (
	DefaultAttempts = 3
	DefaultBackoff  = 3 * time.Second
)

// MaxImageDimension bounds the longer side of images sent to a provider.
const MaxImageDimension = 1568

// Result is the outcome of a condition check. A failed check is reported in
// Error rather than as a Go error, so the upload itself still succeeds.
type Result struct {
	Assessment string `json:"condition_check,omitempty"`
	Error      string `json:"error,omitempty"`
	Warning    string `json:"warning,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Attempts   int    `json:"attempts"`
}

// Checker applies the retry policy around an Assessor.
type Checker struct {
	assessor Assessor
	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewChecker returns a Checker with the default retry policy. A nil
// assessor yields a Checker that only reports that checks are disabled.
func NewChecker(a Assessor) *Checker {
	return &Checker{
		assessor: a,
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		sleep:    sleepContext,
	}
}

// Enabled reports whether an assessor is configured.
func (c *Checker) Enabled() bool {
	return c.assessor != nil
}

// Check assesses req, retrying failures with a fixed backoff.
func (c *Checker) Check(ctx context.Context, req Request) Result {
	if c.assessor == nil {
		return Result{Warning: "condition assessor not configured; image saved but condition not checked"}
	}

	res := Result{Provider: c.assessor.Name()}
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.backoff); err != nil {
				lastErr = err
				break
			}
		}
		res.Attempts = attempt

		text, err := c.assessor.Assess(ctx, req)
		if err == nil {
			res.Assessment = text
			return res
		}
		lastErr = err
		slog.Warn("condition check failed", "provider", res.Provider, "attempt", attempt, "error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
	}

	res.Error = fmt.Sprintf("condition check failed after %d attempts: %v", res.Attempts, lastErr)
	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const (
	sportsScale = "NM (Near Mint), EX (Excellent), VG (Very Good), G (Good), P (Poor)"
	tcgScale    = "NM (Near Mint), LP (Lightly Played), MP (Moderately Played), HP (Heavily Played), DMG (Damaged)"
)

// Prompt builds the instruction sent with the image.
func Prompt(req Request) string {
	category := req.Category
	if category == "" {
		category = "trading card"
	}
	scale := tcgScale
	if category == "sports" {
		scale = sportsScale
	}
	side := req.Side
	if side == "" {
		side = "front"
	}
	selected := req.SelectedCondition
	if selected == "" {
		selected = "not yet selected"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this %s trading card image (%s of card) for condition assessment.\n\n", category, side)
	fmt.Fprintf(&b, "The seller has selected condition: %s\n\n", selected)
	fmt.Fprintf(&b, "Using the standard condition scale for %s cards: %s\n\n", category, scale)
	b.WriteString(`Please assess:
1. Corners - any whitening, dings, or wear?
2. Edges - any whitening, chipping, or roughness?
3. Surface - any scratches, print defects, staining, or creases?
4. Centering - estimate the centering (e.g., 60/40, 55/45)

Then provide:
- Your estimated condition grade
- If the seller's selected condition seems accurate, too generous, or too conservative
- Any specific issues a buyer might notice

Be concise and direct. Focus on what matters for selling.`)
	return b.String()
}
