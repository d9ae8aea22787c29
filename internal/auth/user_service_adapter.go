package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UserDirectoryAdapter exposes user lookups to the bookings package without
// letting it import auth internals. Bookings snapshots the customer's name
// and email onto each booking through this.
type UserDirectoryAdapter struct {
	repo Repository
}

// NewUserDirectoryAdapter creates a new user directory adapter
func NewUserDirectoryAdapter(repo Repository) *UserDirectoryAdapter {
	return &UserDirectoryAdapter{
		repo: repo,
	}
}

// LookupUser fetches contact details for the given user ID.
func (a *UserDirectoryAdapter) LookupUser(ctx context.Context, userID uuid.UUID) (name, email string, err error) {
	user, err := a.repo.GetUserByID(ctx, userID.String())
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}
	return user.FirstName + " " + user.LastName, user.Email, nil
}
