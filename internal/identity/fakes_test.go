package identity

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quanty/quanty-backend/pkg/config"
)

const providerPrefix = "qy-"

type fakeProvider struct {
	mu          sync.Mutex
	listeners   map[int]AuthListener
	next        int
	session     *Session
	sessionErr  error
	sessionGate chan struct{}
	signOutErr  error
	signOuts    []SignOutScope
	getCalls    atomic.Int32
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{listeners: map[int]AuthListener{}}
}

func (p *fakeProvider) OnAuthStateChange(fn AuthListener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next
	p.next++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *fakeProvider) GetSession(ctx context.Context) (*Session, error) {
	p.getCalls.Add(1)
	p.mu.Lock()
	gate := p.sessionGate
	p.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session, p.sessionErr
}

func (p *fakeProvider) SignOut(_ context.Context, scope SignOutScope) error {
	p.mu.Lock()
	p.signOuts = append(p.signOuts, scope)
	err := p.signOutErr
	p.mu.Unlock()
	if err == nil {
		p.emit(EventSignedOut, nil)
	}
	return err
}

func (p *fakeProvider) StorageKeyPrefix() string { return providerPrefix }

func (p *fakeProvider) emit(kind EventKind, session *Session) {
	p.mu.Lock()
	listeners := make([]AuthListener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(kind, session)
	}
}

func (p *fakeProvider) listenerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

type profileResult struct {
	profile *Profile
	err     error
}

// fakeProfiles blocks each fetch until the test resolves it, unless auto is set.
type fakeProfiles struct {
	mu    sync.Mutex
	gates map[string]chan profileResult
	auto  func(userID string) (*Profile, error)
	calls atomic.Int32
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{gates: map[string]chan profileResult{}}
}

func (f *fakeProfiles) gate(userID string) chan profileResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[userID]
	if !ok {
		ch = make(chan profileResult, 1)
		f.gates[userID] = ch
	}
	return ch
}

func (f *fakeProfiles) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	f.calls.Add(1)
	if f.auto != nil {
		return f.auto(userID)
	}
	select {
	case res := <-f.gate(userID):
		return res.profile, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeProfiles) resolve(userID string, profile *Profile, err error) {
	f.gate(userID) <- profileResult{profile: profile, err: err}
}

type memStore struct {
	mu        sync.Mutex
	values    map[string]string
	removeErr error
	afterSet  func(key string)
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	hook := s.afterSet
	s.mu.Unlock()
	if hook != nil {
		hook(key)
	}
	return nil
}

func (s *memStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *memStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memStore) has(key string) bool {
	_, ok, _ := s.Get(context.Background(), key)
	return ok
}

type countingTransient struct{ clears atomic.Int32 }

func (t *countingTransient) Clear() { t.clears.Add(1) }

type countingNavigator struct{ reloads atomic.Int32 }

func (n *countingNavigator) Reload(context.Context) error {
	n.reloads.Add(1)
	return nil
}

type harness struct {
	ctrl      *Controller
	provider  *fakeProvider
	profiles  *fakeProfiles
	store     *memStore
	transient *countingTransient
	navigator *countingNavigator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		provider:  newFakeProvider(),
		profiles:  newFakeProfiles(),
		store:     newMemStore(),
		transient: &countingTransient{},
		navigator: &countingNavigator{},
	}
	h.ctrl = NewController(Params{
		Provider:  h.provider,
		Profiles:  h.profiles,
		Store:     h.store,
		Transient: h.transient,
		Navigator: h.navigator,
		Admin:     config.ClientAdminConfig{MasterEmail: "owner@quanty.dev"},
	})
	t.Cleanup(h.ctrl.Dispose)
	return h
}

func session(id, email string) *Session {
	return &Session{
		AccessToken:  "access-" + id,
		RefreshToken: "refresh-" + id,
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         User{ID: id, Email: email},
	}
}

// waitFor blocks until cond holds for a published snapshot.
func waitFor(t *testing.T, c *Controller, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	updates, cancel := c.Watch()
	defer cancel()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				t.Fatalf("controller disposed while waiting")
			}
			if cond(snap) {
				return snap
			}
		case <-timeout:
			t.Fatalf("condition not met; last state %T", c.Snapshot().State)
		}
	}
}

func settled(s Snapshot) bool { return s.Settled() }

var errRemote = errors.New("remote unavailable")
