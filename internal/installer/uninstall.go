package installer

import (
	"context"
	"fmt"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/backends/nodejs"
	"github.com/ikmich/package-deps-admin/internal/deps"
	"github.com/ikmich/package-deps-admin/internal/util"
)

// UninstallOptions describes one uninstall call. Domain is required.
type UninstallOptions struct {
	Domain       Target
	Dependencies []api.DependencyRef

	// Backend overrides the domain's backend.
	Backend *api.Backend

	api.CommandOptions
}

// RollbackSet is what a failed uninstall reinstalls, by category.
type RollbackSet struct {
	Runtime []api.DependencyRef
	Dev     []api.DependencyRef
}

// Empty reports whether there is nothing to roll back.
func (r RollbackSet) Empty() bool {
	return len(r.Runtime) == 0 && len(r.Dev) == 0
}

// UninstallReport is the outcome of Uninstall.
type UninstallReport struct {
	Backend        api.BackendName
	NoDependencies bool

	Dependencies []api.DependencyRef
	Cmd          []string
	Result       util.CmdResult

	// Err is a *api.CommandError if the uninstall command failed. It
	// is kept even when the rollback succeeds.
	Err error

	Rollback        RollbackSet
	RollbackReports []*Report
}

// Failed reports whether the uninstall command failed.
func (r *UninstallReport) Failed() bool {
	return r.Err != nil
}

// ComputeRollback intersects the requested names with the dependencies
// a domain had registered, keeping the category split. Each entry
// carries the version recorded in the domain. Requested names the
// domain does not know are left out.
func ComputeRollback(requested []api.DependencyRef, runtime, dev []api.Dependency) RollbackSet {
	var rollback RollbackSet
	known := func(ds []api.Dependency) []api.DependencyRef {
		out := []api.DependencyRef{}
		for _, ref := range deps.Unique(requested) {
			for _, d := range ds {
				if d.Name() == ref.Name() {
					out = append(out, d)
					break
				}
			}
		}
		return out
	}
	rollback.Runtime = known(runtime)
	rollback.Dev = known(dev)
	return rollback
}

// Uninstall removes every requested dependency with one command. If the
// command fails, the requested dependencies that the domain had
// registered are installed again in their original categories, and
// the uninstall failure is reported whatever the rollback's outcome.
// The returned error is only set when validation fails.
func (in *Installer) Uninstall(ctx context.Context, opts UninstallOptions) (*UninstallReport, error) {
	if opts.Domain == nil {
		return nil, fmt.Errorf("%w: uninstall needs a package root", api.ErrRootNotFound)
	}
	b := resolveBackend(opts.Backend, opts.Domain)
	if err := in.validate(b, opts.Domain); err != nil {
		return nil, err
	}

	report := &UninstallReport{Backend: b.Name, Dependencies: opts.Dependencies}
	if len(opts.Dependencies) == 0 {
		in.logger().Warn("No dependencies to remove.")
		report.NoDependencies = true
		return report, nil
	}

	// The domain's lists as they were before the attempt.
	runtime := opts.Domain.RuntimeDependencies()
	dev := opts.Domain.DevDependencies()

	display := deps.Display(opts.Dependencies, false)
	report.Cmd = nodejs.UninstallCmd(b, opts.Dependencies, opts.CommandOptions)

	in.logger().Infof("Uninstalling dependencies: %s", display)
	result, err := in.exec(ctx, b, "uninstall", opts.Domain.Root(), report.Cmd)
	report.Result = result
	if err == nil {
		in.logger().Infof("Uninstalled dependencies: %s", display)
		return report, nil
	}

	report.Err = err
	report.Rollback = ComputeRollback(opts.Dependencies, runtime, dev)
	in.logger().Error("uninstall failed",
		"cmd", util.QuoteCmd(report.Cmd),
		"dependencies", display,
		"rollback", deps.Display(append(report.Rollback.Runtime, report.Rollback.Dev...), false),
		"err", err,
	)

	rollbackOpts := api.CommandOptions{
		VersionSpecific:   true,
		UseLegacyPeerDeps: opts.UseLegacyPeerDeps,
	}
	for _, r := range []struct {
		category api.Category
		refs     []api.DependencyRef
	}{
		{api.CategoryRuntime, report.Rollback.Runtime},
		{api.CategoryDev, report.Rollback.Dev},
	} {
		if len(r.refs) == 0 {
			continue
		}
		instruction := &api.InstallInstruction{Dependencies: r.refs, Undo: api.NoCompensation}
		installOpts := InstallOptions{
			Domain:         opts.Domain,
			Backend:        &b,
			CommandOptions: rollbackOpts,
		}
		if r.category == api.CategoryRuntime {
			installOpts.Runtime = instruction
		} else {
			installOpts.Dev = instruction
		}

		rollbackReport, err := in.Install(ctx, installOpts)
		if err != nil {
			in.logger().Warn("rollback skipped", "category", r.category, "err", err)
			continue
		}
		if rollbackReport.Failed() {
			in.logger().Warn("rollback failed", "category", r.category, "err", rollbackReport.Err())
		}
		report.RollbackReports = append(report.RollbackReports, rollbackReport)
	}
	return report, nil
}
