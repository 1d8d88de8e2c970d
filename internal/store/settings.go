package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/listing"
)

// Settings keys.
const (
	keyJWTSecret      = "jwt_secret"
	keyPasswordHash   = "operator_password_hash"
	keyShippingTiers  = "shipping_tiers"
	keyTierThresholds = "shipping_thresholds"
)

func getSetting(ctx context.Context, q db.DBTX, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying %s: %w", key, err)
	}
	return value, true, nil
}

func putSetting(ctx context.Context, q db.DBTX, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, q db.DBTX) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		keyJWTSecret, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	secret, _, err := getSetting(ctx, q, keyJWTSecret)
	return secret, err
}

// GetOperatorPasswordHash returns the operator's bcrypt hash. ok is false
// before a password has been set.
func GetOperatorPasswordHash(ctx context.Context, q db.DBTX) (hash string, ok bool, err error) {
	return getSetting(ctx, q, keyPasswordHash)
}

// SetOperatorPasswordHash replaces the operator's bcrypt hash.
func SetOperatorPasswordHash(ctx context.Context, q db.DBTX, hash string) error {
	return putSetting(ctx, q, keyPasswordHash, hash)
}

// LoadShippingTiers returns the saved tariff table, or the defaults when no
// override has been saved.
func LoadShippingTiers(ctx context.Context, q db.DBTX) ([]listing.Tier, error) {
	raw, ok, err := getSetting(ctx, q, keyShippingTiers)
	if err != nil {
		return nil, err
	}
	if !ok {
		return listing.DefaultTiers(), nil
	}
	var tiers []listing.Tier
	if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
		return nil, fmt.Errorf("decoding shipping tiers: %w", err)
	}
	return tiers, nil
}

// SaveShippingTiers replaces the tariff table wholesale.
func SaveShippingTiers(ctx context.Context, q db.DBTX, tiers []listing.Tier) error {
	if err := listing.ValidateTiers(tiers); err != nil {
		return err
	}
	raw, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("encoding shipping tiers: %w", err)
	}
	return putSetting(ctx, q, keyShippingTiers, string(raw))
}

// LoadThresholds returns the saved tier thresholds, or the defaults.
func LoadThresholds(ctx context.Context, q db.DBTX) (listing.Thresholds, error) {
	raw, ok, err := getSetting(ctx, q, keyTierThresholds)
	if err != nil {
		return listing.Thresholds{}, err
	}
	if !ok {
		return listing.DefaultThresholds(), nil
	}
	var th listing.Thresholds
	if err := json.Unmarshal([]byte(raw), &th); err != nil {
		return listing.Thresholds{}, fmt.Errorf("decoding shipping thresholds: %w", err)
	}
	return th, nil
}

// SaveThresholds replaces the tier thresholds.
func SaveThresholds(ctx context.Context, q db.DBTX, th listing.Thresholds) error {
	if err := th.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(th)
	if err != nil {
		return fmt.Errorf("encoding shipping thresholds: %w", err)
	}
	return putSetting(ctx, q, keyTierThresholds, string(raw))
}
