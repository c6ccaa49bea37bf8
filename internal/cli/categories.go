package cli

import (
	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/domain"
)

// selectCategories assigns named dependencies to categories. A category
// flag wins; otherwise each name keeps the category the domain records
// for it, and unknown names are runtime dependencies.
func selectCategories(d *domain.PackageDomain, refs []api.DependencyRef, flags categoryFlags) domain.Selection {
	switch {
	case flags.global:
		return domain.Selection{Global: refs}
	case flags.dev && !flags.runtime:
		return domain.Selection{Dev: refs}
	case flags.runtime && !flags.dev:
		return domain.Selection{Runtime: refs}
	default:
		return d.Classify(refs)
	}
}

// wholeCategory is what uninstall and reinstall act on when no names
// are given.
type wholeCategory int

const (
	wholeNone wholeCategory = iota
	wholeRuntime
	wholeDev
	wholeAll
)

// resolveWholeCategory reads the category flags for a command run
// without names. fallback is used when no flag is set.
func resolveWholeCategory(flags categoryFlags, fallback wholeCategory) wholeCategory {
	switch {
	case flags.all, flags.runtime && flags.dev:
		return wholeAll
	case flags.runtime:
		return wholeRuntime
	case flags.dev:
		return wholeDev
	default:
		return fallback
	}
}
