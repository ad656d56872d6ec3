// Package prefs provides the user-preference store clients and the
// per-session coordinator that reconciles an async preference fetch with
// the first conversational turn.
package prefs

import (
	"context"

	"github.com/soyeahso/obiefood/internal/domain"
)

// Client is the async key-value store holding a user's saved preference.
// Get returns (nil, nil) when no preference is saved. Set with a nil
// preference clears it.
type Client interface {
	Get(ctx context.Context, userID string) (*domain.Preference, error)
	Set(ctx context.Context, userID string, pref *domain.Preference) error
}
