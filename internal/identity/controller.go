package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/logger"
)

var (
	// ErrAlreadySignedIn is returned by ContinueAsGuest while a user is signed in.
	ErrAlreadySignedIn = errors.New("already signed in")
	ErrDisposed        = errors.New("identity controller disposed")
)

// Params wires a Controller to its collaborators.
type Params struct {
	Provider  Provider
	Profiles  ProfileFetcher
	Store     LocalStore
	Transient TransientStore
	Navigator Navigator
	Admin     config.ClientAdminConfig
	Logger    *logger.Logger
}

// Controller derives the identity snapshot from the guest flag, the remote
// session and the profile row. All mutations go through its mutex.
type Controller struct {
	provider  Provider
	profiles  ProfileFetcher
	store     LocalStore
	transient TransientStore
	navigator Navigator
	admin     config.ClientAdminConfig
	logg      *logger.Logger

	mu             sync.Mutex
	state          State
	generation     uint64
	profilePending bool
	initialFailed  bool
	started        bool
	disposed       bool
	ctx            context.Context
	cancel         context.CancelFunc
	unsubscribe    func()
	watchers       map[int]chan Snapshot
	nextWatcher    int
}

func NewController(p Params) *Controller {
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Controller{
		provider:  p.Provider,
		profiles:  p.Profiles,
		store:     p.Store,
		transient: p.Transient,
		navigator: p.Navigator,
		admin:     p.Admin,
		logg:      logg,
		state:     Loading{},
		watchers:  map[int]chan Snapshot{},
	}
}

// Initialize resolves the starting state. A stored guest flag short-circuits
// to Guest without asking the provider for a session. Otherwise the provider
// listener is registered and the current session is fetched in the background.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.disposed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))
	c.mu.Unlock()

	guest, err := c.guestFlagSet(ctx)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "guest flag unreadable, treating as absent")
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if guest {
		c.setStateLocked(Guest{})
	}
	c.mu.Unlock()

	unsubscribe := c.provider.OnAuthStateChange(c.handleAuthEvent)
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		unsubscribe()
		return
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	if guest {
		return
	}
	go c.fetchInitialSession()
}

// Dispose detaches from the provider and closes every watcher. In-flight
// fetches complete into nothing.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.generation++
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	if c.cancel != nil {
		c.cancel()
	}
	for id, ch := range c.watchers {
		close(ch)
		delete(c.watchers, id)
	}
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Watch delivers the current snapshot and then every change. Slow readers only
// see the latest snapshot. The returned cancel func stops delivery.
func (c *Controller) Watch() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if c.disposed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextWatcher
	c.nextWatcher++
	c.watchers[id] = ch
	ch <- c.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if existing, ok := c.watchers[id]; ok {
				close(existing)
				delete(c.watchers, id)
			}
		})
	}
}

// Settled blocks until loading has finished and no profile fetch is pending.
func (c *Controller) Settled(ctx context.Context) (Snapshot, error) {
	updates, cancel := c.Watch()
	defer cancel()
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return c.Snapshot(), ErrDisposed
			}
			if snap.Settled() {
				return snap, nil
			}
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
}

// ContinueAsGuest persists the guest flag and enters Guest.
func (c *Controller) ContinueAsGuest(ctx context.Context) error {
	if _, ok := c.Snapshot().User(); ok {
		return ErrAlreadySignedIn
	}
	if err := c.store.Set(ctx, GuestFlagKey, guestFlagValue); err != nil {
		return fmt.Errorf("persist guest flag: %w", err)
	}

	c.mu.Lock()
	if _, ok := c.state.(Authenticated); ok {
		c.mu.Unlock()
		// A sign-in landed while the flag was being written.
		if err := c.store.Remove(ctx, GuestFlagKey); err != nil {
			c.logg.Error(ctx, "roll back guest flag", err)
		}
		return ErrAlreadySignedIn
	}
	c.generation++
	c.profilePending = false
	c.initialFailed = false
	c.setStateLocked(Guest{})
	c.mu.Unlock()
	return nil
}

// ExitGuestMode clears the guest flag. The result is Anonymous, not signed in.
func (c *Controller) ExitGuestMode(ctx context.Context) error {
	err := c.store.Remove(ctx, GuestFlagKey)

	c.mu.Lock()
	if _, ok := c.state.(Guest); ok {
		c.setStateLocked(Anonymous{})
	}
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("clear guest flag: %w", err)
	}
	return nil
}

// SignOut invalidates every remote session and then wipes all local identity
// state before reloading. A remote failure is logged only; local cleanup always
// runs and only its failures are returned.
func (c *Controller) SignOut(ctx context.Context) error {
	if err := c.provider.SignOut(ctx, ScopeGlobal); err != nil {
		c.logg.Error(ctx, "remote sign-out failed, continuing with local cleanup", err)
	}

	c.mu.Lock()
	c.generation++
	c.profilePending = false
	c.initialFailed = false
	c.setStateLocked(Anonymous{})
	c.mu.Unlock()

	var errs error
	keys := []string{GuestFlagKey}
	if prefix := c.provider.StorageKeyPrefix(); prefix != "" {
		providerKeys, err := c.store.Keys(ctx, prefix)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("list provider keys: %w", err))
		}
		keys = append(keys, providerKeys...)
	}
	if err := c.store.Remove(ctx, keys...); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.transient != nil {
		c.transient.Clear()
	}
	c.logg.Info(c.logg.WithField(ctx, "removed_keys", len(keys)), "local identity state cleared")

	if c.navigator != nil {
		if err := c.navigator.Reload(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reload: %w", err))
		}
	}
	return errs
}

func (c *Controller) fetchInitialSession() {
	ctx := c.context()
	session, err := c.provider.GetSession(ctx)
	if err != nil {
		c.logg.Error(ctx, "initial session fetch failed", err)
		session = nil
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	// Any event delivered meanwhile is at least as fresh as this fetch.
	if !c.loadingLocked() {
		c.mu.Unlock()
		return
	}
	// A failed fetch resolves to Anonymous but leaves INITIAL_SESSION free to
	// supply the stored session later.
	c.initialFailed = err != nil
	fetch := c.applySessionLocked(session)
	c.mu.Unlock()

	fetch()
}

func (c *Controller) handleAuthEvent(kind EventKind, session *Session) {
	ctx := c.context()
	c.logg.Debug(c.logg.WithField(ctx, "event", string(kind)), "auth state change")

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}

	clearGuest := false
	fetch := func() {}
	switch _, wasGuest := c.state.(Guest); {
	case kind == EventSignedOut:
		c.generation++
		c.profilePending = false
		c.initialFailed = false
		c.setStateLocked(Anonymous{})
		clearGuest = true
	case wasGuest && (kind != EventSignedIn || session == nil):
		// Guest mode only yields to an explicit sign-in.
	case kind == EventInitialSession && !c.loadingLocked() && !c.initialFailed:
		// Initial state only; anything applied since is newer.
	default:
		clearGuest = wasGuest && session != nil
		c.initialFailed = false
		fetch = c.applySessionLocked(session)
	}
	c.mu.Unlock()

	if clearGuest {
		if err := c.store.Remove(ctx, GuestFlagKey); err != nil {
			c.logg.Error(ctx, "clear guest flag after auth change", err)
		}
	}
	fetch()
}

// applySessionLocked merges session into the state and returns the profile
// fetch to start once the lock is released.
func (c *Controller) applySessionLocked(session *Session) func() {
	if session == nil {
		if _, ok := c.state.(Anonymous); !ok {
			c.generation++
			c.profilePending = false
			c.setStateLocked(Anonymous{})
		}
		return func() {}
	}

	next := Authenticated{User: session.User, Session: *session}
	if current, ok := c.state.(Authenticated); ok && current.User.ID == session.User.ID {
		next.Profile = current.Profile
		if next.Profile != nil || c.profilePending {
			c.setStateLocked(next)
			return func() {}
		}
	} else {
		c.generation++
	}

	c.profilePending = true
	c.setStateLocked(next)
	generation := c.generation
	userID := session.User.ID
	return func() { go c.fetchProfile(generation, userID) }
}

func (c *Controller) fetchProfile(generation uint64, userID string) {
	ctx := c.context()
	profile, err := c.profiles.FetchProfile(ctx, userID)
	if err != nil {
		c.logg.Error(c.logg.WithUserID(ctx, userID), "profile fetch failed", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || generation != c.generation {
		return
	}
	current, ok := c.state.(Authenticated)
	if !ok || current.User.ID != userID {
		return
	}
	c.profilePending = false
	if err == nil && profile != nil && profile.ID == userID {
		current.Profile = profile
	}
	c.setStateLocked(current)
}

func (c *Controller) guestFlagSet(ctx context.Context) (bool, error) {
	value, ok, err := c.store.Get(ctx, GuestFlagKey)
	if err != nil {
		return false, err
	}
	return ok && value == guestFlagValue, nil
}

func (c *Controller) context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

func (c *Controller) loadingLocked() bool {
	_, loading := c.state.(Loading)
	return loading
}

func (c *Controller) setStateLocked(state State) {
	c.state = state
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()
	for _, ch := range c.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{State: c.state, profilePending: c.profilePending, admin: c.admin}
}
