package installer

import (
	"context"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/backends/nodejs"
	"github.com/ikmich/package-deps-admin/internal/deps"
	"github.com/ikmich/package-deps-admin/internal/util"
)

// InstallOptions describes one install call. A nil Domain means a
// global context with no manifest: commands run in the working
// directory and no root is validated.
type InstallOptions struct {
	Domain Target

	Runtime *api.InstallInstruction
	Dev     *api.InstallInstruction
	Global  *api.InstallInstruction

	// Backend overrides the domain's backend.
	Backend *api.Backend

	api.CommandOptions
}

// StepReport is the outcome of one category.
type StepReport struct {
	Category     api.Category
	Dependencies []api.DependencyRef
	Cmd          []string
	Result       util.CmdResult

	// Err is a *api.CommandError if the command failed.
	Err error

	// Compensated is true if the step failed and its compensating
	// action ran; CompensationErr holds what it returned.
	Compensated     bool
	CompensationErr error
}

// Succeeded reports whether the step's command exited with status 0.
func (s StepReport) Succeeded() bool {
	return s.Err == nil
}

// Report is the outcome of Install.
type Report struct {
	Backend api.BackendName

	// NoDependencies is set when every instruction was empty and
	// nothing ran.
	NoDependencies bool

	Steps []StepReport
}

// Step returns the report for category, if that category ran.
func (r *Report) Step(category api.Category) (StepReport, bool) {
	for _, step := range r.Steps {
		if step.Category == category {
			return step, true
		}
	}
	return StepReport{}, false
}

// Failed reports whether any step failed.
func (r *Report) Failed() bool {
	return r.Err() != nil
}

// Err joins the errors of the failed steps.
func (r *Report) Err() error {
	var errs []error
	for _, step := range r.Steps {
		if step.Err != nil {
			errs = append(errs, step.Err)
		}
	}
	return joinErrs(errs)
}

// Install runs the runtime, dev and global instructions in that order.
// The returned error is only set when validation fails, before any
// process is spawned. A failing category runs its compensating action
// and does not stop the categories after it; failures are in the
// report.
func (in *Installer) Install(ctx context.Context, opts InstallOptions) (*Report, error) {
	b := resolveBackend(opts.Backend, opts.Domain)
	if err := in.validate(b, opts.Domain); err != nil {
		return nil, err
	}

	report := &Report{Backend: b.Name}
	if opts.Runtime.Empty() && opts.Dev.Empty() && opts.Global.Empty() {
		in.logger().Warn(api.ErrNoDependencies.Error())
		report.NoDependencies = true
		return report, nil
	}

	dir := ""
	if opts.Domain != nil {
		dir = opts.Domain.Root()
	}

	steps := []struct {
		category    api.Category
		instruction *api.InstallInstruction
		dir         string
	}{
		{api.CategoryRuntime, opts.Runtime, dir},
		{api.CategoryDev, opts.Dev, dir},
		// Global installs do not belong to the package root.
		{api.CategoryGlobal, opts.Global, ""},
	}
	for _, s := range steps {
		if s.instruction.Empty() {
			continue
		}
		step := in.installStep(ctx, b, s.category, s.dir, s.instruction, opts.CommandOptions)
		report.Steps = append(report.Steps, step)
	}
	return report, nil
}

func (in *Installer) installStep(ctx context.Context, b api.Backend, category api.Category,
	dir string, instruction *api.InstallInstruction, cmdOpts api.CommandOptions) StepReport {

	refs := instruction.Dependencies
	display := deps.Display(refs, cmdOpts.VersionSpecific)
	cmd := nodejs.InstallCmd(b, category, refs, cmdOpts)

	in.logger().Infof("Installing %s dependencies: %s", category, display)
	result, err := in.exec(ctx, b, "install-"+category.String(), dir, cmd)
	step := StepReport{
		Category:     category,
		Dependencies: refs,
		Cmd:          cmd,
		Result:       result,
	}
	if err == nil {
		in.logger().Infof("Installed %s dependencies: %s", category, display)
		return step
	}

	step.Err = err
	in.logger().Error("install failed",
		"category", category,
		"cmd", util.QuoteCmd(cmd),
		"dependencies", display,
		"err", err,
	)

	step.Compensated = true
	step.CompensationErr = compensate(ctx, instruction.Undo)
	if step.CompensationErr != nil {
		in.logger().Warn("compensating action failed", "category", category, "err", step.CompensationErr)
	} else if instruction.Undo != nil && instruction.Undo != api.NoCompensation {
		in.logger().Info("compensating action completed", "category", category)
	}
	return step
}
