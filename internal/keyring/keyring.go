// Package keyring keeps the PostgreSQL connection string in the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitloop/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Source names where a connection string came from.
type Source string

const (
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
)

var getenv = os.Getenv

// Credentials addresses one keyring entry under the habitloop service.
type Credentials struct {
	service string
	user    string
}

// New returns the entry for user, or the default entry when user is empty.
func New(user string) *Credentials {
	if user == "" {
		user = constants.DefaultKeyringUser
	}
	return &Credentials{service: constants.AppName, user: user}
}

func (c *Credentials) User() string { return c.user }

// ConnectionString returns the stored connection string, or ErrNotFound.
func (c *Credentials) ConnectionString() (string, error) {
	connStr, err := keyring.Get(c.service, c.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

func (c *Credentials) SetConnectionString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(c.service, c.user, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (c *Credentials) Delete() error {
	if err := keyring.Delete(c.service, c.user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Resolve returns the connection string from HABITLOOP_DB_CONNECTION, or
// from the keyring when the variable is unset.
func (c *Credentials) Resolve() (string, Source, error) {
	if connStr := strings.TrimSpace(getenv(constants.DBConnectionEnvVar)); connStr != "" {
		return connStr, SourceEnv, nil
	}
	connStr, err := c.ConnectionString()
	if err != nil {
		return "", "", err
	}
	return connStr, SourceKeyring, nil
}

// IsAvailable reports whether the OS keyring answers requests. A missing
// entry still counts as available.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
