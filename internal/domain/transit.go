package domain

import (
	"context"
	"fmt"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/deps"
	"github.com/ikmich/package-deps-admin/internal/installer"
)

// LinkStore persists transit links.
type LinkStore interface {
	SaveLink(link api.TransitLink) error
	FindLink(sourceName, destName string) (api.TransitLink, bool)
	RemoveLink(id string) error
}

// TransitReport is the outcome of Transit. Install is nil when there
// was nothing to transit.
type TransitReport struct {
	Link    api.TransitLink
	Install *installer.Report
}

// missingFrom returns the names of ds that dest does not declare in
// any category.
func missingFrom(dest *PackageDomain, ds []api.Dependency) []api.DependencyRef {
	return deps.Filter(deps.FromDependencies(ds), func(name string) bool {
		return !dest.HasDependency(api.Name(name))
	})
}

// succeeded returns the names of refs if the category's step did not
// fail.
func succeeded(report *installer.Report, category api.Category, refs []api.DependencyRef) []string {
	if report != nil {
		if step, ok := report.Step(category); ok && !step.Succeeded() {
			return []string{}
		}
	}
	return deps.Names(refs)
}

// Transit installs into dest the dependencies of source that dest does
// not have, keeping their category, and saves a link recording the
// names that were installed. A link is saved even when nothing was
// missing.
func Transit(ctx context.Context, source, dest *PackageDomain, links LinkStore) (*TransitReport, error) {
	runtime := missingFrom(dest, source.runtime)
	dev := missingFrom(dest, source.dev)

	report := &TransitReport{}
	if len(runtime) > 0 || len(dev) > 0 {
		dest.logger.Info("transiting dependencies",
			"source", source.Name(), "dest", dest.Name(),
			"runtime", deps.Display(runtime, false), "dev", deps.Display(dev, false))

		install, err := dest.Install(ctx, Selection{Runtime: runtime, Dev: dev})
		if err != nil {
			return nil, err
		}
		report.Install = install
	} else {
		dest.logger.Info("nothing to transit", "source", source.Name(), "dest", dest.Name())
	}

	report.Link = api.TransitLink{
		ID:     api.LinkID(source.Name(), dest.Name()),
		Source: source.Ref(),
		Dest:   dest.Ref(),
		TransitedDependencies: api.TransitedDeps{
			Runtime: succeeded(report.Install, api.CategoryRuntime, runtime),
			Dev:     succeeded(report.Install, api.CategoryDev, dev),
		},
		CreatedAt: dest.now().UTC(),
	}
	if err := links.SaveLink(report.Link); err != nil {
		return report, fmt.Errorf("saving transit link %s: %w", report.Link.ID, err)
	}
	return report, nil
}

// RemoveTransit uninstalls from dest exactly the names recorded by the
// last transit from source, then deletes the link. The link is kept if
// the uninstall fails.
func RemoveTransit(ctx context.Context, source, dest *PackageDomain, links LinkStore) (*installer.UninstallReport, error) {
	link, ok := links.FindLink(source.Name(), dest.Name())
	if !ok {
		return nil, fmt.Errorf("%w: %s", api.ErrLinkNotFound, api.LinkID(source.Name(), dest.Name()))
	}

	names := link.TransitedDependencies.All()
	if len(names) == 0 {
		dest.logger.Info("transit link has no dependencies", "id", link.ID)
		return &installer.UninstallReport{Backend: dest.backend.Name, NoDependencies: true}, links.RemoveLink(link.ID)
	}

	report, err := dest.RemoveDependencies(ctx, deps.FromNames(names))
	if err != nil {
		return nil, err
	}
	if report.Failed() {
		dest.logger.Warn("keeping transit link after failed removal", "id", link.ID)
		return report, nil
	}
	if err := links.RemoveLink(link.ID); err != nil {
		return report, fmt.Errorf("removing transit link %s: %w", link.ID, err)
	}
	return report, nil
}
