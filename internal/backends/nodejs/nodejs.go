package nodejs

import (
	"regexp"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/deps"
	"github.com/ikmich/package-deps-admin/internal/util"
)

var NodejsNPMBackend = api.Backend{
	Name:          api.BackendNPM,
	Command:       "npm",
	Lockfiles:     []string{"package-lock.json", "npm-shrinkwrap.json"},
	InstallVerb:   "install",
	DevFlag:       "--save-dev",
	GlobalFlag:    "-g",
	UninstallVerb: "uninstall",
	Quirks:        api.QuirksLegacyPeerDeps,
}

var NodejsYarnBackend = api.Backend{
	Name:          api.BackendYarn,
	Command:       "yarn",
	Lockfiles:     []string{"yarn.lock"},
	InstallVerb:   "add",
	DevFlag:       "--dev",
	GlobalFlag:    "global",
	UninstallVerb: "remove",
	Quirks:        api.QuirksGlobalIsSubcommand,
}

var NodejsPNPMBackend = api.Backend{
	Name:          api.BackendPNPM,
	Command:       "pnpm",
	Lockfiles:     []string{"pnpm-lock.yaml"},
	InstallVerb:   "add",
	DevFlag:       "--save-dev",
	GlobalFlag:    "-g",
	UninstallVerb: "remove",
}

var NodejsBunBackend = api.Backend{
	Name:          api.BackendBun,
	Command:       "bun",
	Lockfiles:     []string{"bun.lockb", "bun.lock"},
	InstallVerb:   "install",
	DevFlag:       "--development",
	GlobalFlag:    "-g",
	UninstallVerb: "remove",
}

// Accepts "-x" and "--xyz"; rejects bare dashes and anything else.
var flagPattern = regexp.MustCompile(`^--?`)

// filterFlags drops extra flags that do not start with a dash.
func filterFlags(flags []string) []string {
	kept := []string{}
	for _, flag := range flags {
		if !flagPattern.MatchString(flag) {
			util.ProgressMsg("ignoring malformed flag " + flag)
			continue
		}
		kept = append(kept, flag)
	}
	return kept
}

// InstallCmd synthesizes the command that installs refs as the given
// category.
func InstallCmd(b api.Backend, category api.Category, refs []api.DependencyRef, opts api.CommandOptions) []string {
	cmd := []string{b.Command}
	switch category {
	case api.CategoryDev:
		cmd = append(cmd, b.InstallVerb, b.DevFlag)
	case api.CategoryGlobal:
		if b.QuirksIsGlobalSubcommand() {
			cmd = append(cmd, b.GlobalFlag, b.InstallVerb)
		} else {
			cmd = append(cmd, b.InstallVerb, b.GlobalFlag)
		}
	default:
		cmd = append(cmd, b.InstallVerb)
	}

	cmd = append(cmd, deps.Refs(refs, opts.VersionSpecific)...)

	if opts.UseForce {
		cmd = append(cmd, "--force")
	}
	if opts.UseLegacyPeerDeps && b.QuirksDoesSupportLegacyPeerDeps() {
		cmd = append(cmd, "--legacy-peer-deps")
	}
	return append(cmd, filterFlags(opts.ExtraFlags)...)
}

// UninstallCmd synthesizes the command that removes refs. Versions are
// never rendered and --force is never added.
func UninstallCmd(b api.Backend, refs []api.DependencyRef, opts api.CommandOptions) []string {
	cmd := []string{b.Command, b.UninstallVerb}
	cmd = append(cmd, deps.Names(refs)...)
	if opts.UseLegacyPeerDeps && b.QuirksDoesSupportLegacyPeerDeps() {
		cmd = append(cmd, "--legacy-peer-deps")
	}
	return append(cmd, filterFlags(opts.ExtraFlags)...)
}
