package auth

import (
	"context"
	"strings"

	"hostelx-service/internal/apperrors"
	"hostelx-service/internal/models"
)

// UserLookup is the slice of the user repository the resolver needs.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// IdentityResolver maps a raw login identifier (email or username) to the
// email address the account authenticates with.
type IdentityResolver struct {
	users UserLookup
}

// NewIdentityResolver constructs an IdentityResolver.
func NewIdentityResolver(users UserLookup) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve returns the login email for an identifier. Identifiers containing
// "@" are taken as the email directly; anything else is looked up as a
// lowercased username, preferring the college email over the personal one.
func (r *IdentityResolver) Resolve(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return identifier, nil
	}

	user, err := r.users.GetUserByUsername(ctx, strings.ToLower(identifier))
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return "", apperrors.ErrUsernameNotFound
		}
		return "", err
	}

	email := user.LoginEmail()
	if email == "" {
		return "", apperrors.ErrMissingEmail
	}
	return email, nil
}
