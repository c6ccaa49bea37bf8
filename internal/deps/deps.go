// Package deps provides name-based helpers over dependency references.
// Every helper compares references by name only.
package deps

import (
	"strings"

	"github.com/ikmich/package-deps-admin/internal/api"
)

// Ref renders a reference as it is passed to a package manager. Pinned
// references render as name@version when versioned is set and the
// version is known; bare names never carry a version.
func Ref(ref api.DependencyRef, versioned bool) string {
	if versioned && ref.Version() != "" {
		return ref.Name() + "@" + ref.Version()
	}
	return ref.Name()
}

// Refs renders each reference with Ref, preserving order.
func Refs(refs []api.DependencyRef, versioned bool) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, Ref(ref, versioned))
	}
	return out
}

// Names returns the names of refs, preserving order.
func Names(refs []api.DependencyRef) []string {
	return Refs(refs, false)
}

// Display joins rendered references with spaces, for log lines.
func Display(refs []api.DependencyRef, versioned bool) string {
	return strings.Join(Refs(refs, versioned), " ")
}

// Find returns the first reference in refs named name.
func Find(refs []api.DependencyRef, name string) (api.DependencyRef, bool) {
	for _, ref := range refs {
		if ref.Name() == name {
			return ref, true
		}
	}
	return nil, false
}

// Contains reports whether refs has a reference named like ref.
func Contains(refs []api.DependencyRef, ref api.DependencyRef) bool {
	_, ok := Find(refs, ref.Name())
	return ok
}

// Filter keeps the references whose name satisfies keep.
func Filter(refs []api.DependencyRef, keep func(name string) bool) []api.DependencyRef {
	filtered := []api.DependencyRef{}
	for _, ref := range refs {
		if keep(ref.Name()) {
			filtered = append(filtered, ref)
		}
	}
	return filtered
}

// Unique drops later references whose name was already seen.
func Unique(refs []api.DependencyRef) []api.DependencyRef {
	seen := map[string]bool{}
	return Filter(refs, func(name string) bool {
		if seen[name] {
			return false
		}
		seen[name] = true
		return true
	})
}

// FromNames wraps plain strings as bare-name references.
func FromNames(names []string) []api.DependencyRef {
	refs := make([]api.DependencyRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, api.Name(name))
	}
	return refs
}

// FromDependencies widens resolved dependencies to references.
func FromDependencies(ds []api.Dependency) []api.DependencyRef {
	refs := make([]api.DependencyRef, 0, len(ds))
	for _, d := range ds {
		refs = append(refs, d)
	}
	return refs
}

// Parse turns a command-line argument into a reference. "name@1.2.3"
// becomes a pinned reference; scoped names such as "@scope/pkg" keep
// their leading at-sign.
func Parse(arg string) api.DependencyRef {
	at := strings.LastIndex(arg, "@")
	if at <= 0 || at == len(arg)-1 {
		return api.Name(arg)
	}
	return api.Pinned(arg[:at], arg[at+1:])
}
