// Package identity owns the client-side view of who is using the CLI: signed
// in, browsing as a guest or anonymous. A single Controller is the only writer
// of that view; commands read it through snapshots.
package identity

import (
	"strings"
	"time"

	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/enums"
)

const defaultDisplayName = "User"

// User is the identity asserted by the remote provider.
type User struct {
	ID    string
	Email string
	// Name comes from provider metadata and may be empty.
	Name string
}

// Session is the remote session as last reported by the provider.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Profile is the application profile row keyed by user id.
type Profile struct {
	ID       string
	FullName *string
	Role     string
}

// State is one of Loading, Anonymous, Guest or Authenticated.
type State interface {
	isState()
}

type Loading struct{}

type Anonymous struct{}

type Guest struct{}

// Authenticated carries the signed-in user. Profile stays nil until it is
// fetched, and for good if the fetch fails.
type Authenticated struct {
	User    User
	Session Session
	Profile *Profile
}

func (Loading) isState()       {}
func (Anonymous) isState()     {}
func (Guest) isState()         {}
func (Authenticated) isState() {}

// Snapshot is an immutable view of the controller at one point in time.
type Snapshot struct {
	State State

	profilePending bool
	admin          config.ClientAdminConfig
}

func (s Snapshot) Loading() bool {
	_, ok := s.State.(Loading)
	return ok
}

func (s Snapshot) IsGuest() bool {
	_, ok := s.State.(Guest)
	return ok
}

// User returns the signed-in user, if any.
func (s Snapshot) User() (User, bool) {
	auth, ok := s.State.(Authenticated)
	if !ok {
		return User{}, false
	}
	return auth.User, true
}

// Session returns the current remote session, if any.
func (s Snapshot) Session() (Session, bool) {
	auth, ok := s.State.(Authenticated)
	if !ok {
		return Session{}, false
	}
	return auth.Session, true
}

// Profile returns the fetched profile or nil.
func (s Snapshot) Profile() *Profile {
	auth, ok := s.State.(Authenticated)
	if !ok {
		return nil
	}
	return auth.Profile
}

// Settled is true once loading has finished and no profile fetch is in flight.
func (s Snapshot) Settled() bool {
	return !s.Loading() && !s.profilePending
}

// IsAuthenticated is true for a signed-in user or a guest.
func (s Snapshot) IsAuthenticated() bool {
	switch s.State.(type) {
	case Authenticated, Guest:
		return true
	default:
		return false
	}
}

func (s Snapshot) IsAdmin() bool {
	profile := s.Profile()
	return profile != nil && profile.Role == enums.ProfileRoleAdmin.String()
}

// IsMasterAdmin matches the configured master email regardless of profile role.
func (s Snapshot) IsMasterAdmin() bool {
	user, ok := s.User()
	return ok && s.admin.IsMasterEmail(user.Email)
}

// CanManageContent gates create, edit and delete of interviews.
func (s Snapshot) CanManageContent() bool {
	return s.IsAdmin() || s.IsMasterAdmin()
}

// DisplayName prefers the profile's first name, then the email local part,
// then the first word of the provider name.
func (s Snapshot) DisplayName() string {
	if s.IsGuest() {
		return "Guest"
	}
	user, ok := s.User()
	if !ok {
		return defaultDisplayName
	}
	if profile := s.Profile(); profile != nil && profile.FullName != nil {
		if first := firstWord(*profile.FullName); first != "" {
			return first
		}
	}
	if local, _, _ := strings.Cut(strings.TrimSpace(user.Email), "@"); local != "" {
		return local
	}
	if first := firstWord(user.Name); first != "" {
		return first
	}
	return defaultDisplayName
}

// Role names the effective role for display.
func (s Snapshot) Role() string {
	switch {
	case s.IsMasterAdmin():
		return "master admin"
	case s.IsAdmin():
		return enums.ProfileRoleAdmin.String()
	case s.IsGuest():
		return "guest"
	case s.IsAuthenticated():
		return enums.ProfileRoleUser.String()
	default:
		return "anonymous"
	}
}

func firstWord(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
