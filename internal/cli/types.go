package cli

import (
	"github.com/ikmich/package-deps-admin/internal/api"
)

// outputFormat is an enum representing the argument of the --format
// option.
type outputFormat int

// Values for outputFormat.
const (
	// --format=table
	outputFormatTable outputFormat = iota

	// --format=json
	outputFormatJSON
)

// categoryFlags are the category options shared by install, uninstall
// and reinstall.
type categoryFlags struct {
	runtime bool
	dev     bool
	all     bool
	global  bool
}

// commandFlags are the options passed through to the package manager.
type commandFlags struct {
	force          bool
	legacyPeerDeps bool
	exact          bool
	extra          []string
	packageManager string
}

func (f commandFlags) options() api.CommandOptions {
	return api.CommandOptions{
		VersionSpecific:   f.exact,
		UseLegacyPeerDeps: f.legacyPeerDeps,
		UseForce:          f.force,
		ExtraFlags:        f.extra,
	}
}

// linkRow is one line of 'pda links'.
type linkRow struct {
	ID      string   `pretty:"ID"`
	Source  string   `pretty:"Source"`
	Dest    string   `pretty:"Destination"`
	Runtime []string `pretty:"Runtime"`
	Dev     []string `pretty:"Dev"`
	Created string   `pretty:"Created"`
}
