// Package domain models a package root: the directory holding a
// manifest, the backend that manages it and the dependencies it
// declares.
package domain

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/backends"
	"github.com/ikmich/package-deps-admin/internal/config"
	"github.com/ikmich/package-deps-admin/internal/deps"
	"github.com/ikmich/package-deps-admin/internal/installer"
	"github.com/ikmich/package-deps-admin/internal/logging"
	"github.com/ikmich/package-deps-admin/internal/manifest"
)

// Options configures a PackageDomain. The zero value is usable.
type Options struct {
	// Backend forces a package manager by name.
	Backend string

	Logger    *log.Logger
	Installer *installer.Installer

	// ReinstallPause is the wait between the removal and the install
	// of a reinstall. Nil means config.DefaultReinstallPause; zero or
	// less means no pause.
	ReinstallPause *time.Duration

	// Sleep and Now replace time.Sleep and time.Now.
	Sleep func(time.Duration)
	Now   func() time.Time

	// CommandOptions are passed to every command the domain runs.
	api.CommandOptions
}

// PackageDomain is loaded once from the manifest and only changes on
// Reload.
type PackageDomain struct {
	root    string
	backend api.Backend

	name           string
	version        string
	packageManager string

	runtime []api.Dependency
	dev     []api.Dependency

	opts      Options
	logger    *log.Logger
	installer *installer.Installer
}

// New loads the package rooted at root. The backend is, in order: the
// Backend option, the manifest's packageManager field, the backend
// owning a lock file in root, npm.
func New(root string, opts Options) (*PackageDomain, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", api.ErrRootNotFound, err)
	}

	d := &PackageDomain{
		root:   abs,
		opts:   opts,
		logger: logging.OrDefault(opts.Logger),
	}
	d.installer = opts.Installer
	if d.installer == nil {
		d.installer = installer.New(d.logger)
	}

	if err := d.Load(); err != nil {
		return nil, err
	}
	if err := d.resolveBackend(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *PackageDomain) resolveBackend() error {
	if d.opts.Backend != "" {
		b, err := backends.GetBackend(d.opts.Backend)
		if err != nil {
			return err
		}
		d.backend = b
		return nil
	}

	if d.packageManager != "" {
		b, err := backends.GetBackend(d.packageManager)
		if err == nil {
			d.backend = b
			return nil
		}
		d.logger.Warn("ignoring packageManager field", "value", d.packageManager, "err", err)
	}

	if b, ok := backends.DetectLockfile(d.root); ok {
		d.backend = b
		return nil
	}
	d.backend = backends.Default()
	return nil
}

// Load reads the manifest and replaces the dependency lists. A missing
// manifest leaves the lists empty.
func (d *PackageDomain) Load() error {
	m, err := manifest.Read(d.root)
	if errors.Is(err, api.ErrManifestNotFound) {
		d.logger.Warn(err.Error())
		m = &manifest.Manifest{}
	} else if err != nil {
		return err
	}

	d.name = m.Name
	if d.name == "" {
		d.name = filepath.Base(d.root)
	}
	d.version = m.Version
	d.packageManager = m.PackageManager

	d.runtime = m.RuntimeDependencies()
	d.dev = []api.Dependency{}
	for _, dep := range m.DevDependencies() {
		if d.IsRuntimeDependency(dep) {
			d.logger.Warn("dependency declared as both runtime and dev; treating it as runtime", "name", dep.Name())
			continue
		}
		d.dev = append(d.dev, dep)
	}
	return nil
}

// Reload is Load under the name callers use after a mutation.
func (d *PackageDomain) Reload() error {
	return d.Load()
}

func (d *PackageDomain) Root() string         { return d.root }
func (d *PackageDomain) Backend() api.Backend { return d.backend }
func (d *PackageDomain) Name() string         { return d.name }
func (d *PackageDomain) Version() string      { return d.version }

// RuntimeDependencies returns the dependencies as of the last load.
func (d *PackageDomain) RuntimeDependencies() []api.Dependency {
	return append([]api.Dependency(nil), d.runtime...)
}

// DevDependencies returns the dev dependencies as of the last load.
func (d *PackageDomain) DevDependencies() []api.Dependency {
	return append([]api.Dependency(nil), d.dev...)
}

// Ref snapshots the domain for a transit link.
func (d *PackageDomain) Ref() api.DomainRef {
	return api.DomainRef{
		Name:    d.name,
		Version: d.version,
		Root:    d.root,
		Backend: d.backend.Name,
	}
}

func (d *PackageDomain) IsRuntimeDependency(ref api.DependencyRef) bool {
	return deps.Contains(deps.FromDependencies(d.runtime), ref)
}

func (d *PackageDomain) IsDevDependency(ref api.DependencyRef) bool {
	return deps.Contains(deps.FromDependencies(d.dev), ref)
}

func (d *PackageDomain) HasDependency(ref api.DependencyRef) bool {
	return d.IsRuntimeDependency(ref) || d.IsDevDependency(ref)
}

// Selection groups references by category.
type Selection struct {
	Runtime []api.DependencyRef
	Dev     []api.DependencyRef
	Global  []api.DependencyRef
}

func (s Selection) Empty() bool {
	return len(s.Runtime) == 0 && len(s.Dev) == 0 && len(s.Global) == 0
}

// Classify sorts refs into the category the domain already has them
// in. Names the domain does not know count as runtime.
func (d *PackageDomain) Classify(refs []api.DependencyRef) Selection {
	sel := Selection{Runtime: []api.DependencyRef{}, Dev: []api.DependencyRef{}}
	for _, ref := range deps.Unique(refs) {
		if d.IsDevDependency(ref) {
			sel.Dev = append(sel.Dev, ref)
		} else {
			sel.Runtime = append(sel.Runtime, ref)
		}
	}
	return sel
}

func instruction(refs []api.DependencyRef) *api.InstallInstruction {
	if len(refs) == 0 {
		return nil
	}
	return &api.InstallInstruction{Dependencies: refs, Undo: api.NoCompensation}
}

// Install installs each group of sel in its category. A selection with
// only global dependencies does not need a manifest under the root.
func (d *PackageDomain) Install(ctx context.Context, sel Selection) (*installer.Report, error) {
	opts := installer.InstallOptions{
		Domain:         d,
		Backend:        &d.backend,
		Runtime:        instruction(sel.Runtime),
		Dev:            instruction(sel.Dev),
		Global:         instruction(sel.Global),
		CommandOptions: d.opts.CommandOptions,
	}
	if len(sel.Runtime) == 0 && len(sel.Dev) == 0 && len(sel.Global) > 0 {
		opts.Domain = nil
	}
	return d.installer.Install(ctx, opts)
}

func (d *PackageDomain) InstallRuntimeDependency(ctx context.Context, ref api.DependencyRef) (*installer.Report, error) {
	return d.InstallRuntimeDependencies(ctx, []api.DependencyRef{ref})
}

func (d *PackageDomain) InstallRuntimeDependencies(ctx context.Context, refs []api.DependencyRef) (*installer.Report, error) {
	return d.Install(ctx, Selection{Runtime: refs})
}

func (d *PackageDomain) InstallDevDependency(ctx context.Context, ref api.DependencyRef) (*installer.Report, error) {
	return d.InstallDevDependencies(ctx, []api.DependencyRef{ref})
}

func (d *PackageDomain) InstallDevDependencies(ctx context.Context, refs []api.DependencyRef) (*installer.Report, error) {
	return d.Install(ctx, Selection{Dev: refs})
}

func (d *PackageDomain) InstallGlobalDependencies(ctx context.Context, refs []api.DependencyRef) (*installer.Report, error) {
	return d.Install(ctx, Selection{Global: refs})
}

func (d *PackageDomain) RemoveDependency(ctx context.Context, ref api.DependencyRef) (*installer.UninstallReport, error) {
	return d.RemoveDependencies(ctx, []api.DependencyRef{ref})
}

// RemoveDependencies uninstalls refs with one command.
func (d *PackageDomain) RemoveDependencies(ctx context.Context, refs []api.DependencyRef) (*installer.UninstallReport, error) {
	return d.installer.Uninstall(ctx, installer.UninstallOptions{
		Domain:         d,
		Dependencies:   refs,
		CommandOptions: d.opts.CommandOptions,
	})
}

func (d *PackageDomain) RemoveRuntimeDependencies(ctx context.Context) (*installer.UninstallReport, error) {
	return d.RemoveDependencies(ctx, deps.FromDependencies(d.runtime))
}

func (d *PackageDomain) RemoveDevDependencies(ctx context.Context) (*installer.UninstallReport, error) {
	return d.RemoveDependencies(ctx, deps.FromDependencies(d.dev))
}

func (d *PackageDomain) RemoveAllDependencies(ctx context.Context) (*installer.UninstallReport, error) {
	all := append(deps.FromDependencies(d.runtime), deps.FromDependencies(d.dev)...)
	return d.RemoveDependencies(ctx, all)
}

func (d *PackageDomain) reinstallPause() time.Duration {
	if d.opts.ReinstallPause == nil {
		return config.DefaultReinstallPause
	}
	return *d.opts.ReinstallPause
}

func (d *PackageDomain) sleep(pause time.Duration) {
	if pause <= 0 {
		return
	}
	if d.opts.Sleep != nil {
		d.opts.Sleep(pause)
		return
	}
	time.Sleep(pause)
}

func (d *PackageDomain) now() time.Time {
	if d.opts.Now != nil {
		return d.opts.Now()
	}
	return time.Now()
}
