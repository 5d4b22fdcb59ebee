package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/quanty/quanty-backend/internal/authclient"
	"github.com/quanty/quanty-backend/internal/identity"
	"github.com/quanty/quanty-backend/internal/localstore"
	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/logger"
)

const entryPointNotice = "Signed out. Run `quanty signin` to sign in or `quanty guest` to browse as a guest."

// App is the per-invocation runtime: durable state, the API client and the
// identity controller built on top of them.
type App struct {
	cfg    *config.ClientConfig
	logg   *logger.Logger
	notice io.Writer

	store  *localstore.Store
	cache  *localstore.Transient
	client *authclient.Client

	mu   sync.Mutex
	ctrl *identity.Controller
}

// OpenApp opens local state and starts an initialized identity controller.
func OpenApp(ctx context.Context, cfg *config.ClientConfig, logg *logger.Logger, notice io.Writer) (*App, error) {
	store, err := localstore.Open(cfg.State.Path)
	if err != nil {
		return nil, err
	}
	cache := localstore.NewTransient(cfg.State.CacheSize, cfg.State.CacheTTL)
	client, err := authclient.New(authclient.Options{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		StoragePrefix: cfg.State.StoragePrefix,
		Store:         store,
		Cache:         cache,
		Logger:        logg,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	app := &App{cfg: cfg, logg: logg, notice: notice, store: store, cache: cache, client: client}
	app.ctrl = app.newController()
	app.ctrl.Initialize(ctx)
	return app, nil
}

func (a *App) newController() *identity.Controller {
	return identity.NewController(identity.Params{
		Provider:  a.client,
		Profiles:  a.client,
		Store:     a.store,
		Transient: a.cache,
		Navigator: a,
		Admin:     a.cfg.Admin,
		Logger:    a.logg,
	})
}

// Controller returns the live controller. It changes after Reload.
func (a *App) Controller() *identity.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctrl
}

func (a *App) Client() *authclient.Client { return a.client }

// Reload discards the controller and rebuilds it from durable storage, then
// points the user at the unauthenticated entry point.
func (a *App) Reload(ctx context.Context) error {
	next := a.newController()
	a.mu.Lock()
	previous := a.ctrl
	a.ctrl = next
	a.mu.Unlock()

	if previous != nil {
		previous.Dispose()
	}
	next.Initialize(ctx)
	_, err := fmt.Fprintln(a.notice, entryPointNotice)
	return err
}

// Snapshot waits for the controller to settle within the API timeout.
func (a *App) Snapshot(ctx context.Context) (identity.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.API.Timeout)
	defer cancel()
	return a.Controller().Settled(ctx)
}

func (a *App) Close() error {
	a.Controller().Dispose()
	return a.store.Close()
}
