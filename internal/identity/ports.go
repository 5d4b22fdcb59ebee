package identity

import "context"

// GuestFlagKey is the durable key holding the guest opt-in.
const GuestFlagKey = "guestMode"

const guestFlagValue = "true"

// EventKind classifies provider notifications.
type EventKind string

const (
	EventInitialSession EventKind = "INITIAL_SESSION"
	EventSignedIn       EventKind = "SIGNED_IN"
	EventSignedOut      EventKind = "SIGNED_OUT"
	EventTokenRefreshed EventKind = "TOKEN_REFRESHED"
	EventUserUpdated    EventKind = "USER_UPDATED"
)

// SignOutScope selects which remote sessions a sign-out invalidates.
type SignOutScope string

const (
	ScopeLocal  SignOutScope = "local"
	ScopeGlobal SignOutScope = "global"
)

// AuthListener receives provider notifications. A nil session means none.
type AuthListener func(kind EventKind, session *Session)

// Provider is the remote identity provider.
type Provider interface {
	// OnAuthStateChange registers fn and returns the function that removes it.
	OnAuthStateChange(fn AuthListener) (unsubscribe func())
	GetSession(ctx context.Context) (*Session, error)
	SignOut(ctx context.Context, scope SignOutScope) error
	// StorageKeyPrefix is the prefix of every key the provider persists locally.
	StorageKeyPrefix() string
}

// ProfileFetcher loads the profile row for a user. A nil profile means none exists.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (*Profile, error)
}

// LocalStore is the durable flat key-value store.
type LocalStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// TransientStore is process-scoped storage wiped on sign-out.
type TransientStore interface {
	Clear()
}

// Navigator performs a full reload to the unauthenticated entry point.
type Navigator interface {
	Reload(ctx context.Context) error
}
