package domain

import (
	"context"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/deps"
	"github.com/ikmich/package-deps-admin/internal/installer"
)

// ReinstallReport holds both halves of a reinstall. Install is nil when
// the removal failed or had nothing to do.
type ReinstallReport struct {
	Uninstall *installer.UninstallReport
	Install   *installer.Report
}

// Failed reports whether either half failed.
func (r *ReinstallReport) Failed() bool {
	return (r.Uninstall != nil && r.Uninstall.Failed()) || (r.Install != nil && r.Install.Failed())
}

// Reinstall removes the runtime and dev groups of sel with one command,
// waits for the reinstall pause, then installs each group back in its
// category. Global references are ignored. If the removal fails its
// rollback has already restored what it could, so nothing is installed.
func (d *PackageDomain) Reinstall(ctx context.Context, sel Selection) (*ReinstallReport, error) {
	runtime := deps.Unique(sel.Runtime)
	dev := deps.Filter(deps.Unique(sel.Dev), func(name string) bool {
		_, found := deps.Find(runtime, name)
		return !found
	})
	all := append(append([]api.DependencyRef{}, runtime...), dev...)

	report := &ReinstallReport{}
	uninstall, err := d.RemoveDependencies(ctx, all)
	if err != nil {
		return nil, err
	}
	report.Uninstall = uninstall
	if uninstall.NoDependencies {
		return report, nil
	}
	if uninstall.Failed() {
		d.logger.Warn("skipping install after failed removal", "dependencies", deps.Display(all, false))
		return report, nil
	}

	d.sleep(d.reinstallPause())

	install, err := d.Install(ctx, Selection{Runtime: runtime, Dev: dev})
	if err != nil {
		return report, err
	}
	report.Install = install
	return report, nil
}

func (d *PackageDomain) ReinstallDependency(ctx context.Context, ref api.DependencyRef) (*ReinstallReport, error) {
	return d.ReinstallDependencies(ctx, []api.DependencyRef{ref})
}

// ReinstallDependencies reinstalls refs, each in the category the
// domain has it in.
func (d *PackageDomain) ReinstallDependencies(ctx context.Context, refs []api.DependencyRef) (*ReinstallReport, error) {
	return d.Reinstall(ctx, d.Classify(refs))
}

func (d *PackageDomain) ReinstallRuntimeDependencies(ctx context.Context) (*ReinstallReport, error) {
	return d.Reinstall(ctx, Selection{Runtime: deps.FromDependencies(d.runtime)})
}

func (d *PackageDomain) ReinstallDevDependencies(ctx context.Context) (*ReinstallReport, error) {
	return d.Reinstall(ctx, Selection{Dev: deps.FromDependencies(d.dev)})
}

func (d *PackageDomain) ReinstallAllDependencies(ctx context.Context) (*ReinstallReport, error) {
	return d.Reinstall(ctx, Selection{
		Runtime: deps.FromDependencies(d.runtime),
		Dev:     deps.FromDependencies(d.dev),
	})
}
