package store

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

type MigrationKind int

const (
	MigrationNone MigrationKind = iota
	MigrationFirstRun
	MigrationUpgrade
	MigrationDowngrade
	// MigrationChange is a version change that could not be ordered,
	// because one side is not a semantic version.
	MigrationChange
)

func (k MigrationKind) String() string {
	switch k {
	case MigrationFirstRun:
		return "first run"
	case MigrationUpgrade:
		return "upgrade"
	case MigrationDowngrade:
		return "downgrade"
	case MigrationChange:
		return "change"
	default:
		return "none"
	}
}

// Migration describes how the running version relates to the one that
// last used the store.
type Migration struct {
	From string
	To   string
	Kind MigrationKind
}

func (m Migration) String() string {
	if m.Kind == MigrationFirstRun {
		return fmt.Sprintf("first run of %s", m.To)
	}
	return fmt.Sprintf("%s from %s to %s", m.Kind, m.From, m.To)
}

func compareVersions(from, to string) MigrationKind {
	fromV, err := version.NewVersion(from)
	if err != nil {
		return MigrationChange
	}
	toV, err := version.NewVersion(to)
	if err != nil {
		return MigrationChange
	}
	switch {
	case toV.GreaterThan(fromV):
		return MigrationUpgrade
	case toV.LessThan(fromV):
		return MigrationDowngrade
	default:
		// "1.0" and "1.0.0" are the same release.
		return MigrationNone
	}
}

// Migrate records active as the version using the store and reports
// how it differs from the cached one. No stored data is rewritten.
func (st *Store) Migrate(active string) (Migration, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var cached string
	migration := Migration{To: active}
	if !st.get(KeyVersion, &cached) || cached == "" {
		migration.Kind = MigrationFirstRun
	} else if cached == active {
		migration.From = cached
		return migration, nil
	} else {
		migration.From = cached
		migration.Kind = compareVersions(cached, active)
	}

	if err := st.set(KeyVersion, active); err != nil {
		return migration, err
	}
	return migration, nil
}
