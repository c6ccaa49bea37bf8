// Package api specifies the types shared by the orchestration engine,
// the package domain and the transit link store.
package api

import (
	"context"
	"time"
)

// BackendName identifies one of the supported package managers.
type BackendName string

// Supported backends. The order of this list is the order used for
// lock-file detection; the first entry is the fallback.
const (
	BackendNPM  BackendName = "npm"
	BackendYarn BackendName = "yarn"
	BackendPNPM BackendName = "pnpm"
	BackendBun  BackendName = "bun"
)

// Category classifies a dependency or an install step.
type Category int

const (
	CategoryRuntime Category = iota
	CategoryDev
	CategoryGlobal
)

func (c Category) String() string {
	switch c {
	case CategoryRuntime:
		return "runtime"
	case CategoryDev:
		return "dev"
	case CategoryGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// DependencyRef is a reference to a dependency as given by a caller:
// either a bare Name or a Pinned record. All comparisons go through
// Name().
type DependencyRef interface {
	Name() string
	// Version is empty for bare names.
	Version() string
	isDependencyRef()
}

// Name is a dependency reference that carries no version.
type Name string

func (n Name) Name() string     { return string(n) }
func (n Name) Version() string  { return "" }
func (n Name) isDependencyRef() {}

// Dependency is the resolved form of a dependency, as loaded from a
// manifest or pinned by a caller.
type Dependency struct {
	DepName    string `json:"name"`
	DepVersion string `json:"version"`
	IsGlobal   bool   `json:"isGlobal,omitempty"`
}

// Pinned returns a Dependency reference for name at version.
func Pinned(name, version string) Dependency {
	return Dependency{DepName: name, DepVersion: version}
}

func (d Dependency) Name() string     { return d.DepName }
func (d Dependency) Version() string  { return d.DepVersion }
func (d Dependency) isDependencyRef() {}

// Compensator is a compensating action run when an install step
// fails.
type Compensator interface {
	Compensate(ctx context.Context) error
}

// CompensateFunc adapts an ordinary function to a Compensator.
type CompensateFunc func(ctx context.Context) error

func (f CompensateFunc) Compensate(ctx context.Context) error {
	return f(ctx)
}

type noCompensation struct{}

func (noCompensation) Compensate(context.Context) error { return nil }

// NoCompensation does nothing and always succeeds.
var NoCompensation Compensator = noCompensation{}

// InstallInstruction describes the dependencies of one category and
// how to undo a failed attempt to install them. A nil Undo is treated
// as NoCompensation.
type InstallInstruction struct {
	Dependencies []DependencyRef
	Undo         Compensator
}

// Empty reports whether the instruction has nothing to install.
func (i *InstallInstruction) Empty() bool {
	return i == nil || len(i.Dependencies) == 0
}

// CommandOptions are the flags that shape a synthesized command.
type CommandOptions struct {
	VersionSpecific   bool
	UseLegacyPeerDeps bool
	UseForce          bool
	ExtraFlags        []string
}

// Quirks is a bit set of backend differences that the verb table alone
// does not express.
type Quirks uint8

const (
	QuirksNone Quirks = 0

	// The backend understands --legacy-peer-deps.
	QuirksLegacyPeerDeps Quirks = 1 << iota

	// The global flag is a subcommand placed before the install
	// verb ("yarn global add") rather than an option after it.
	QuirksGlobalIsSubcommand
)

// Backend is the verb table of one package manager.
type Backend struct {
	Name BackendName

	// The executable looked up on PATH.
	Command string

	// Lock files that identify a project as managed by this
	// backend.
	Lockfiles []string

	InstallVerb   string
	DevFlag       string
	GlobalFlag    string
	UninstallVerb string

	Quirks Quirks
}

// DomainRef is a snapshot of a package domain's identity, recorded in
// transit links.
type DomainRef struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Root    string      `json:"root"`
	Backend BackendName `json:"backend"`
}

// TransitedDeps are the names copied by a transit, split by category.
type TransitedDeps struct {
	Runtime []string `json:"runtime"`
	Dev     []string `json:"dev"`
}

// All returns runtime names followed by dev names.
func (t TransitedDeps) All() []string {
	all := make([]string, 0, len(t.Runtime)+len(t.Dev))
	all = append(all, t.Runtime...)
	return append(all, t.Dev...)
}

// TransitLink records a transit from Source into Dest.
type TransitLink struct {
	ID                    string        `json:"id"`
	Source                DomainRef     `json:"source"`
	Dest                  DomainRef     `json:"dest"`
	TransitedDependencies TransitedDeps `json:"transitedDependencies"`
	CreatedAt             time.Time     `json:"createdAt"`
}

// LinkID derives the transit link identifier for a source and
// destination package name.
func LinkID(sourceName, destName string) string {
	return sourceName + "::to::" + destName
}
