package backends

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/backends/nodejs"
	"github.com/ikmich/package-deps-admin/internal/util"
)

// If more than one backend's lock file is present, the one that comes
// first in this list will be used. The first entry is also the
// fallback when no lock file is found.
var packageBackends = []api.Backend{
	nodejs.NodejsNPMBackend,
	nodejs.NodejsYarnBackend,
	nodejs.NodejsPNPMBackend,
	nodejs.NodejsBunBackend,
}

// Keep up to date with api.Backend.
func CheckAll() {
	for _, b := range packageBackends {
		if b.Name == "" ||
			b.Command == "" ||
			len(b.Lockfiles) == 0 ||
			b.InstallVerb == "" ||
			b.DevFlag == "" ||
			b.GlobalFlag == "" ||
			b.UninstallVerb == "" {
			util.Panicf("package backend %s is incomplete", b.Name)
		}
	}
}

// GetBackend returns the backend called name. Names are matched
// case-insensitively; a corepack-style version suffix ("pnpm@8.6.0")
// is ignored.
func GetBackend(name string) (api.Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	for _, b := range packageBackends {
		if string(b.Name) == name {
			return b, nil
		}
	}
	return api.Backend{}, fmt.Errorf("%w: %q (supported: %s)",
		api.ErrUnknownBackend, name, strings.Join(GetBackendNames(), ", "))
}

// Default returns the fallback backend.
func Default() api.Backend {
	return packageBackends[0]
}

// DetectLockfile infers the backend of the project at root from its
// lock files. ok is false if no known lock file exists.
func DetectLockfile(root string) (b api.Backend, ok bool) {
	for _, b := range packageBackends {
		for _, lockfile := range b.Lockfiles {
			if util.Exists(filepath.Join(root, lockfile)) {
				return b, true
			}
		}
	}
	return Default(), false
}

func GetBackendNames() []string {
	backendNames := []string{}
	for _, b := range packageBackends {
		backendNames = append(backendNames, string(b.Name))
	}
	return backendNames
}
