package api

import (
	"errors"
	"fmt"

	"github.com/kballard/go-shellquote"
)

var (
	// ErrRootNotFound means the package root is missing, is not a
	// directory, or holds no manifest. Fatal.
	ErrRootNotFound = errors.New("package root not found")

	// ErrManifestNotFound is logged, never returned: a domain
	// without a manifest has no dependencies.
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrBackendUnavailable means the backend executable is not on
	// PATH. Fatal.
	ErrBackendUnavailable = errors.New("package manager not installed")

	// ErrUnknownBackend means a backend name is not one of the
	// supported ones.
	ErrUnknownBackend = errors.New("unknown package manager")

	// ErrNoDependencies is reported when there is nothing to do.
	ErrNoDependencies = errors.New("no dependencies specified")

	// ErrCommandFailed is matched by every *CommandError.
	ErrCommandFailed = errors.New("command failed")

	// ErrStoreRead is passed to the store's read-error hook.
	ErrStoreRead = errors.New("store read failed")

	// ErrLinkNotFound means no transit link exists for a source and
	// destination pair.
	ErrLinkNotFound = errors.New("transit link not found")
)

// CommandError describes a spawned command that did not succeed.
// ExitCode is -1 if the process could not be started.
type CommandError struct {
	Cmd      []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", shellquote.Join(e.Cmd...), e.ExitCode)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", shellquote.Join(e.Cmd...), e.Err)
	}
	return msg
}

func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailed
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
