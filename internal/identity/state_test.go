package identity

import (
	"testing"

	"github.com/quanty/quanty-backend/pkg/config"
)

func strptr(s string) *string { return &s }

func TestDerivedRoles(t *testing.T) {
	admin := config.ClientAdminConfig{MasterEmail: " Owner@Quanty.dev "}
	cases := []struct {
		name       string
		state      State
		isAdmin    bool
		isMaster   bool
		canManage  bool
		authed     bool
		wantedRole string
	}{
		{name: "anonymous", state: Anonymous{}, wantedRole: "anonymous"},
		{name: "guest", state: Guest{}, authed: true, wantedRole: "guest"},
		{
			name:       "profile admin",
			state:      Authenticated{User: User{ID: "u1", Email: "a@b.com"}, Profile: &Profile{ID: "u1", Role: "admin"}},
			isAdmin:    true,
			canManage:  true,
			authed:     true,
			wantedRole: "admin",
		},
		{
			name:       "master without admin role",
			state:      Authenticated{User: User{ID: "u2", Email: "owner@quanty.dev"}, Profile: &Profile{ID: "u2", Role: "user"}},
			isMaster:   true,
			canManage:  true,
			authed:     true,
			wantedRole: "master admin",
		},
		{
			name:       "master before profile loads",
			state:      Authenticated{User: User{ID: "u2", Email: "OWNER@quanty.dev"}},
			isMaster:   true,
			canManage:  true,
			authed:     true,
			wantedRole: "master admin",
		},
		{
			name:       "plain user",
			state:      Authenticated{User: User{ID: "u3", Email: "c@d.com"}, Profile: &Profile{ID: "u3", Role: "user"}},
			authed:     true,
			wantedRole: "user",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := Snapshot{State: tc.state, admin: admin}
			if got := snap.IsAdmin(); got != tc.isAdmin {
				t.Fatalf("IsAdmin = %v, want %v", got, tc.isAdmin)
			}
			if got := snap.IsMasterAdmin(); got != tc.isMaster {
				t.Fatalf("IsMasterAdmin = %v, want %v", got, tc.isMaster)
			}
			if got := snap.CanManageContent(); got != tc.canManage {
				t.Fatalf("CanManageContent = %v, want %v", got, tc.canManage)
			}
			if got := snap.IsAuthenticated(); got != tc.authed {
				t.Fatalf("IsAuthenticated = %v, want %v", got, tc.authed)
			}
			if got := snap.Role(); got != tc.wantedRole {
				t.Fatalf("Role = %q, want %q", got, tc.wantedRole)
			}
		})
	}
}

func TestDisplayNameFallbacks(t *testing.T) {
	cases := []struct {
		name  string
		state State
		want  string
	}{
		{name: "profile first name", state: Authenticated{User: User{Email: "jdoe@x.com"}, Profile: &Profile{FullName: strptr("  Jane Doe ")}}, want: "Jane"},
		{name: "blank profile name", state: Authenticated{User: User{Email: "jdoe@x.com"}, Profile: &Profile{FullName: strptr("  ")}}, want: "jdoe"},
		{name: "email local part", state: Authenticated{User: User{Email: "jdoe@x.com"}}, want: "jdoe"},
		{name: "metadata name", state: Authenticated{User: User{Name: "Jane Q Doe"}}, want: "Jane"},
		{name: "nothing", state: Authenticated{User: User{ID: "u1"}}, want: "User"},
		{name: "anonymous", state: Anonymous{}, want: "User"},
		{name: "guest", state: Guest{}, want: "Guest"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (Snapshot{State: tc.state}).DisplayName(); got != tc.want {
				t.Fatalf("DisplayName = %q, want %q", got, tc.want)
			}
		})
	}
}
