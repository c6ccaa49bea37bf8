package nodejs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ikmich/package-deps-admin/internal/api"
)

var allBackends = []api.Backend{
	NodejsNPMBackend,
	NodejsYarnBackend,
	NodejsPNPMBackend,
	NodejsBunBackend,
}

func refs(names ...string) []api.DependencyRef {
	out := []api.DependencyRef{}
	for _, name := range names {
		out = append(out, api.Name(name))
	}
	return out
}

func TestInstallCmdVerbTable(t *testing.T) {
	cases := []struct {
		backend  api.Backend
		category api.Category
		want     string
	}{
		{NodejsNPMBackend, api.CategoryRuntime, "npm install a b"},
		{NodejsNPMBackend, api.CategoryDev, "npm install --save-dev a b"},
		{NodejsNPMBackend, api.CategoryGlobal, "npm install -g a b"},
		{NodejsYarnBackend, api.CategoryRuntime, "yarn add a b"},
		{NodejsYarnBackend, api.CategoryDev, "yarn add --dev a b"},
		{NodejsYarnBackend, api.CategoryGlobal, "yarn global add a b"},
		{NodejsPNPMBackend, api.CategoryRuntime, "pnpm add a b"},
		{NodejsPNPMBackend, api.CategoryDev, "pnpm add --save-dev a b"},
		{NodejsPNPMBackend, api.CategoryGlobal, "pnpm add -g a b"},
		{NodejsBunBackend, api.CategoryRuntime, "bun install a b"},
		{NodejsBunBackend, api.CategoryDev, "bun install --development a b"},
		{NodejsBunBackend, api.CategoryGlobal, "bun install -g a b"},
	}
	for _, c := range cases {
		cmd := InstallCmd(c.backend, c.category, refs("a", "b"), api.CommandOptions{})
		require.Equal(t, c.want, strings.Join(cmd, " "), "%s %s", c.backend.Name, c.category)
	}
}

func TestUninstallCmdVerbTable(t *testing.T) {
	want := map[api.BackendName]string{
		api.BackendNPM:  "npm uninstall a b",
		api.BackendYarn: "yarn remove a b",
		api.BackendPNPM: "pnpm remove a b",
		api.BackendBun:  "bun remove a b",
	}
	for _, b := range allBackends {
		cmd := UninstallCmd(b, []api.DependencyRef{api.Name("a"), api.Pinned("b", "1.0.0")},
			api.CommandOptions{VersionSpecific: true, UseForce: true})
		require.Equal(t, want[b.Name], strings.Join(cmd, " "))
	}
}

func TestYarnDevInstallUsesDevFlag(t *testing.T) {
	cmd := InstallCmd(NodejsYarnBackend, api.CategoryDev, refs("left-pad"), api.CommandOptions{})
	require.Equal(t, []string{"yarn", "add", "--dev", "left-pad"}, cmd)
	require.NotContains(t, cmd, "--save-dev")
}

func TestForceAppendedOnceAfterRefs(t *testing.T) {
	for _, b := range allBackends {
		for _, category := range []api.Category{api.CategoryRuntime, api.CategoryDev, api.CategoryGlobal} {
			cmd := InstallCmd(b, category, refs("a", "b"), api.CommandOptions{UseForce: true})

			count := 0
			index := -1
			for i, arg := range cmd {
				if arg == "--force" {
					count++
					index = i
				}
			}
			require.Equal(t, 1, count, "%v", cmd)
			require.Greater(t, index, indexOf(cmd, "b"), "%v", cmd)
		}
	}
}

func indexOf(cmd []string, arg string) int {
	for i := range cmd {
		if cmd[i] == arg {
			return i
		}
	}
	return -1
}

func TestLegacyPeerDepsOnlyForNPM(t *testing.T) {
	opts := api.CommandOptions{UseLegacyPeerDeps: true}
	for _, b := range allBackends {
		cmd := InstallCmd(b, api.CategoryRuntime, refs("a"), opts)
		if b.Name == api.BackendNPM {
			require.Equal(t, []string{"npm", "install", "a", "--legacy-peer-deps"}, cmd)
		} else {
			require.NotContains(t, cmd, "--legacy-peer-deps")
		}
	}
}

func TestVersionSpecificRendering(t *testing.T) {
	mixed := []api.DependencyRef{api.Pinned("x", "1.2.3"), api.Name("y")}

	cmd := InstallCmd(NodejsPNPMBackend, api.CategoryRuntime, mixed, api.CommandOptions{VersionSpecific: true})
	require.Equal(t, []string{"pnpm", "add", "x@1.2.3", "y"}, cmd)

	cmd = InstallCmd(NodejsPNPMBackend, api.CategoryRuntime, mixed, api.CommandOptions{})
	require.Equal(t, []string{"pnpm", "add", "x", "y"}, cmd)
}

func TestExtraFlagsFiltered(t *testing.T) {
	opts := api.CommandOptions{
		UseForce:   true,
		ExtraFlags: []string{"--ignore-scripts", "-E", "nope", "-", "--", "---x"},
	}
	cmd := InstallCmd(NodejsNPMBackend, api.CategoryRuntime, refs("a"), opts)
	require.Equal(t, []string{"npm", "install", "a", "--force", "--ignore-scripts", "-E", "-", "--", "---x"}, cmd)

	cmd = UninstallCmd(NodejsNPMBackend, refs("a"), api.CommandOptions{ExtraFlags: []string{"bad", "--save-exact"}})
	require.Equal(t, []string{"npm", "uninstall", "a", "--save-exact"}, cmd)
}
