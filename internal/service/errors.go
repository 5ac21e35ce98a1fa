package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	users "github.com/canchapp/canchapp/internal/user"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// notFound maps sql.ErrNoRows to ErrNotFound and wraps everything else with what.
func notFound(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func currentUser(ctx context.Context) (*users.User, error) {
	u := users.FromContext(ctx)
	if u == nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

func currentUserOrNil(ctx context.Context) *users.User {
	return users.FromContext(ctx)
}

func requireAdmin(ctx context.Context) (*users.User, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, ErrForbidden
	}
	return u, nil
}

func requireOwner(ctx context.Context) (*users.User, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !u.IsOwner() {
		return nil, ErrForbidden
	}
	return u, nil
}
