package cli

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/config"
	"github.com/ikmich/package-deps-admin/internal/domain"
	"github.com/ikmich/package-deps-admin/internal/installer"
	"github.com/ikmich/package-deps-admin/internal/logging"
	"github.com/ikmich/package-deps-admin/internal/store"
	"github.com/ikmich/package-deps-admin/internal/trace"
	"github.com/ikmich/package-deps-admin/internal/util"
)

// app holds what every command needs once flags are parsed.
type app struct {
	root   string
	cfg    config.Config
	logger *log.Logger

	store    *store.Store
	storeErr error
}

func (a *app) setup(root string, verbose bool) {
	a.root = root

	cfg, err := config.Load()
	if err != nil {
		util.Die("%s", err)
	}
	a.cfg = cfg

	level := logging.ParseLevel(cfg.LogLevel)
	switch {
	case verbose:
		level = log.DebugLevel
	case config.Quiet && level < log.WarnLevel:
		level = log.WarnLevel
	}
	a.logger = logging.New(os.Stderr, level)

	if trace.MaybeTrace(version) {
		a.logger.Debug("tracing enabled")
	}

	a.openStore()
}

// openStore opens the store and records the running version. A store
// that cannot be opened only matters to the commands that use links.
func (a *app) openStore() {
	st, err := store.Open(a.cfg)
	if err != nil {
		a.storeErr = err
		a.logger.Debug("store unavailable", "err", err)
		return
	}
	st.OnReadError = func(key string, err error) {
		a.logger.Warn("could not read from store", "key", key, "err", err)
	}

	migration, err := st.Migrate(version)
	if err != nil {
		a.logger.Warn("could not record version in store", "err", err)
	} else if migration.Kind != store.MigrationNone {
		a.logger.Debug("store " + migration.String())
	}
	a.store = st
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing store", "err", err)
		}
	}
}

// links returns the store, terminating the process if it is missing.
func (a *app) links() *store.Store {
	if a.store == nil {
		err := a.storeErr
		if err == nil {
			err = errors.New("store not opened")
		}
		util.Die("%s", err)
	}
	return a.store
}

// domain loads the package at root, terminating the process on error.
func (a *app) domain(root string, flags commandFlags) *domain.PackageDomain {
	backend := flags.packageManager
	if backend == "" {
		backend = a.cfg.Backend
	}
	pause := a.cfg.ReinstallPause.Duration
	d, err := domain.New(root, domain.Options{
		Backend:        backend,
		Logger:         a.logger,
		Installer:      installer.New(a.logger),
		ReinstallPause: &pause,
		CommandOptions: flags.options(),
	})
	if err != nil {
		util.Die("%s", err)
	}
	if !util.IsDir(d.Root()) {
		util.Die("%s: %s", api.ErrRootNotFound, d.Root())
	}
	return d
}
