package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/MichaelEbbert/ebaysales/internal/db"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

// ErrBadPassword is returned when a password does not match the stored hash.
var ErrBadPassword = errors.New("invalid password")

// MinPasswordLength applies to operator-chosen passwords.
const MinPasswordLength = 8

// GeneratePassword creates a random password of the given length.
func GeneratePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// EnsureOperator creates the operator password on first run. It returns the
// generated password, or "" when one was already set.
func EnsureOperator(ctx context.Context, q db.DBTX) (string, error) {
	_, ok, err := store.GetOperatorPasswordHash(ctx, q)
	if err != nil {
		return "", err
	}
	if ok {
		return "", nil
	}

	password, err := GeneratePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	if err := SetPassword(ctx, q, password); err != nil {
		return "", err
	}
	return password, nil
}

// CheckPassword compares password with the stored operator hash.
func CheckPassword(ctx context.Context, q db.DBTX, password string) error {
	hash, ok, err := store.GetOperatorPasswordHash(ctx, q)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}

// SetPassword hashes and stores a new operator password.
func SetPassword(ctx context.Context, q db.DBTX, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return store.SetOperatorPasswordHash(ctx, q, string(hash))
}
