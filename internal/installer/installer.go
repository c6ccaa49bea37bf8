// Package installer drives a package manager to install and uninstall
// dependencies. It decides how commands run and how failures are
// compensated, never which dependencies are targeted.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/backends"
	"github.com/ikmich/package-deps-admin/internal/manifest"
	"github.com/ikmich/package-deps-admin/internal/trace"
	"github.com/ikmich/package-deps-admin/internal/util"
)

// Target is the package domain an orchestrator works on.
type Target interface {
	Root() string
	Backend() api.Backend
	RuntimeDependencies() []api.Dependency
	DevDependencies() []api.Dependency
}

// Installer runs package manager commands one at a time.
type Installer struct {
	Runner   util.Runner
	LookPath func(file string) (string, error)
	Logger   *log.Logger
}

// New returns an Installer that runs real processes.
func New(logger *log.Logger) *Installer {
	return &Installer{
		Runner:   util.ExecRunner{},
		LookPath: exec.LookPath,
		Logger:   logger,
	}
}

func (in *Installer) logger() *log.Logger {
	if in.Logger == nil {
		return log.Default()
	}
	return in.Logger
}

// resolveBackend picks the override, then the domain's backend, then
// the default.
func resolveBackend(override *api.Backend, domain Target) api.Backend {
	switch {
	case override != nil:
		return *override
	case domain != nil:
		return domain.Backend()
	default:
		return backends.Default()
	}
}

func validateRoot(root string) error {
	if !util.IsDir(root) {
		return fmt.Errorf("%w: %s is not a directory", api.ErrRootNotFound, root)
	}
	if _, ok := manifest.Locate(root); !ok {
		return fmt.Errorf("%w: no %s in %s", api.ErrRootNotFound, manifest.JSONFile, root)
	}
	return nil
}

func (in *Installer) validateBackend(b api.Backend) error {
	lookPath := in.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(b.Command); err != nil {
		return fmt.Errorf(
			"%w: it seems %q is not installed. Install it and try again, or choose another package manager that is installed",
			api.ErrBackendUnavailable, b.Command,
		)
	}
	return nil
}

func (in *Installer) validate(b api.Backend, domain Target) error {
	if domain != nil {
		if err := validateRoot(domain.Root()); err != nil {
			return err
		}
	}
	return in.validateBackend(b)
}

// exec runs cmd in dir inside a trace span and logs whatever the
// package manager printed. Start failures and non-zero exits both come
// back as a *api.CommandError.
func (in *Installer) exec(ctx context.Context, b api.Backend, operation, dir string, cmd []string) (util.CmdResult, error) {
	in.logger().Debug("exec", "cmd", util.QuoteCmd(cmd), "dir", dir)

	runner := in.Runner
	if runner == nil {
		runner = util.ExecRunner{}
	}

	span, _ := trace.StartExecSpan(ctx, b.Name, operation, cmd)
	result, err := runner.Run(dir, cmd)
	trace.FinishExecSpan(span, result.ExitCode, err)

	if out := strings.TrimSpace(result.Stdout); out != "" {
		in.logger().Info(out)
	}
	if out := strings.TrimSpace(result.Stderr); out != "" {
		in.logger().Warn(out)
	}

	if err != nil || result.ExitCode != 0 {
		return result, &api.CommandError{
			Cmd:      cmd,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}
	return result, nil
}

// compensate runs undo and turns both errors and panics into a return
// value, so that no compensating action can abort its caller.
func compensate(ctx context.Context, undo api.Compensator) (err error) {
	if undo == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compensating action panicked: %v", r)
		}
	}()
	return undo.Compensate(ctx)
}

// joinErrs joins the non-nil errors, or returns nil.
func joinErrs(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
