package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/tendwell/internal/constants"
)

var (
	// ErrNotFound is returned when the keyring holds no connection string.
	ErrNotFound = errors.New("connection string not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// checkUser is never written; reading it only tells us whether the keyring answers.
const checkUser = "availability-check"

// ConnectionString returns the PostgreSQL connection string saved by
// StoreConnectionString.
func ConnectionString() (string, error) {
	connStr, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	switch {
	case err == nil:
		return connStr, nil
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrNotFound
	default:
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
}

// StoreConnectionString saves connStr, replacing any previous value.
func StoreConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, connStr); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	return nil
}

// ForgetConnectionString removes the saved connection string.
func ForgetConnectionString() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	return nil
}

// Status describes what the keyring currently holds.
type Status struct {
	Available bool
	HasSecret bool
}

// CurrentStatus checks the keyring without revealing the stored secret.
func CurrentStatus() Status {
	_, err := keyring.Get(constants.AppName, checkUser)
	available := err == nil || errors.Is(err, keyring.ErrNotFound)
	if !available {
		return Status{}
	}
	_, err = keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	return Status{Available: true, HasSecret: err == nil}
}
