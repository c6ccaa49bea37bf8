package domain

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/deps"
	"github.com/ikmich/package-deps-admin/internal/installer"
	"github.com/ikmich/package-deps-admin/internal/util"
)

type fakeRunner struct {
	cmds []string
	dirs []string
	fail map[string]int
}

func (f *fakeRunner) Run(dir string, cmd []string) (util.CmdResult, error) {
	line := strings.Join(cmd, " ")
	f.cmds = append(f.cmds, line)
	f.dirs = append(f.dirs, dir)
	for prefix, code := range f.fail {
		if strings.HasPrefix(line, prefix) {
			return util.CmdResult{ExitCode: code}, nil
		}
	}
	return util.CmdResult{}, nil
}

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func newDomain(t *testing.T, runner *fakeRunner, manifest string, opts Options) *PackageDomain {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "package.json", manifest)

	opts.Logger = log.New(io.Discard)
	opts.Installer = &installer.Installer{
		Runner:   runner,
		LookPath: func(file string) (string, error) { return file, nil },
		Logger:   opts.Logger,
	}
	if opts.Sleep == nil {
		opts.Sleep = func(time.Duration) {}
	}
	d, err := New(root, opts)
	require.NoError(t, err)
	return d
}

const appManifest = `{
  "name": "app",
  "version": "1.0.0",
  "dependencies": {"b": "^2.0.0", "a": "^1.0.0"},
  "devDependencies": {"c": "^3.0.0", "a": "^1.0.0"}
}`

func TestLoad(t *testing.T) {
	d := newDomain(t, &fakeRunner{}, appManifest, Options{})

	assert.Equal(t, "app", d.Name())
	assert.Equal(t, "1.0.0", d.Version())
	assert.Equal(t, api.BackendNPM, d.Backend().Name)
	assert.Equal(t, []api.Dependency{api.Pinned("a", "^1.0.0"), api.Pinned("b", "^2.0.0")}, d.RuntimeDependencies())
	// "a" is declared twice and stays runtime only.
	assert.Equal(t, []api.Dependency{api.Pinned("c", "^3.0.0")}, d.DevDependencies())

	assert.True(t, d.IsRuntimeDependency(api.Name("a")))
	assert.False(t, d.IsDevDependency(api.Name("a")))
	assert.True(t, d.IsDevDependency(api.Pinned("c", "9")))
	assert.True(t, d.HasDependency(api.Name("b")))
	assert.False(t, d.HasDependency(api.Name("z")))
}

func TestReload(t *testing.T) {
	d := newDomain(t, &fakeRunner{}, `{"name":"app"}`, Options{})
	assert.Empty(t, d.RuntimeDependencies())

	writeFile(t, d.Root(), "package.json", `{"name":"app","dependencies":{"x":"1"}}`)
	assert.Empty(t, d.RuntimeDependencies())
	require.NoError(t, d.Reload())
	assert.Equal(t, []api.Dependency{api.Pinned("x", "1")}, d.RuntimeDependencies())
}

func TestNewWithoutManifest(t *testing.T) {
	root := filepath.Join(t.TempDir(), "lib")
	require.NoError(t, os.Mkdir(root, 0o755))

	d, err := New(root, Options{Logger: log.New(io.Discard)})
	require.NoError(t, err)
	assert.Equal(t, "lib", d.Name())
	assert.Empty(t, d.RuntimeDependencies())
	assert.Empty(t, d.DevDependencies())
}

func TestNewMalformedManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name":`)
	_, err := New(root, Options{Logger: log.New(io.Discard)})
	require.Error(t, err)
}

func TestBackendResolution(t *testing.T) {
	logger := log.New(io.Discard)

	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name":"app","packageManager":"pnpm@8.6.0"}`)
	writeFile(t, root, "yarn.lock", "")

	d, err := New(root, Options{Logger: logger, Backend: "bun"})
	require.NoError(t, err)
	assert.Equal(t, api.BackendBun, d.Backend().Name)

	d, err = New(root, Options{Logger: logger})
	require.NoError(t, err)
	assert.Equal(t, api.BackendPNPM, d.Backend().Name)

	writeFile(t, root, "package.json", `{"name":"app","packageManager":"rush@5"}`)
	d, err = New(root, Options{Logger: logger})
	require.NoError(t, err)
	assert.Equal(t, api.BackendYarn, d.Backend().Name)

	_, err = New(root, Options{Logger: logger, Backend: "rush"})
	require.True(t, errors.Is(err, api.ErrUnknownBackend))
}

func TestClassify(t *testing.T) {
	d := newDomain(t, &fakeRunner{}, appManifest, Options{})

	sel := d.Classify(deps.FromNames([]string{"c", "a", "z", "c"}))
	assert.Equal(t, []string{"a", "z"}, deps.Names(sel.Runtime))
	assert.Equal(t, []string{"c"}, deps.Names(sel.Dev))
}

func TestInstallWrappers(t *testing.T) {
	runner := &fakeRunner{}
	d := newDomain(t, runner, appManifest, Options{
		CommandOptions: api.CommandOptions{UseForce: true},
	})
	ctx := context.Background()

	_, err := d.InstallRuntimeDependency(ctx, api.Name("zod"))
	require.NoError(t, err)
	_, err = d.InstallDevDependencies(ctx, deps.FromNames([]string{"vitest", "tsx"}))
	require.NoError(t, err)
	_, err = d.InstallGlobalDependencies(ctx, deps.FromNames([]string{"typescript"}))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"npm install zod --force",
		"npm install --save-dev vitest tsx --force",
		"npm install -g typescript --force",
	}, runner.cmds)
	assert.Equal(t, []string{d.Root(), d.Root(), ""}, runner.dirs)
}

func TestInstallGlobalWithoutManifest(t *testing.T) {
	runner := &fakeRunner{}
	logger := log.New(io.Discard)
	d, err := New(t.TempDir(), Options{
		Backend: "pnpm",
		Logger:  logger,
		Installer: &installer.Installer{
			Runner:   runner,
			LookPath: func(file string) (string, error) { return file, nil },
			Logger:   logger,
		},
	})
	require.NoError(t, err)

	report, err := d.InstallGlobalDependencies(context.Background(), deps.FromNames([]string{"typescript"}))
	require.NoError(t, err)
	assert.False(t, report.Failed())
	assert.Equal(t, []string{"pnpm add -g typescript"}, runner.cmds)
	assert.Equal(t, []string{""}, runner.dirs)

	// Project categories still need a manifest.
	_, err = d.InstallRuntimeDependencies(context.Background(), deps.FromNames([]string{"zod"}))
	assert.True(t, errors.Is(err, api.ErrRootNotFound))
	assert.Len(t, runner.cmds, 1)
}

func TestRemoveWrappers(t *testing.T) {
	runner := &fakeRunner{}
	d := newDomain(t, runner, appManifest, Options{})
	ctx := context.Background()

	_, err := d.RemoveDependency(ctx, api.Name("a"))
	require.NoError(t, err)
	_, err = d.RemoveRuntimeDependencies(ctx)
	require.NoError(t, err)
	_, err = d.RemoveDevDependencies(ctx)
	require.NoError(t, err)
	_, err = d.RemoveAllDependencies(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"npm uninstall a",
		"npm uninstall a b",
		"npm uninstall c",
		"npm uninstall a b c",
	}, runner.cmds)
}

func TestReinstallPreservesCategories(t *testing.T) {
	runner := &fakeRunner{}
	var slept []time.Duration
	d := newDomain(t, runner, appManifest, Options{
		Sleep: func(pause time.Duration) {
			slept = append(slept, pause)
			runner.cmds = append(runner.cmds, "<pause>")
		},
	})

	report, err := d.ReinstallDependencies(context.Background(), deps.FromNames([]string{"c", "a"}))
	require.NoError(t, err)
	assert.False(t, report.Failed())
	assert.Equal(t, []time.Duration{time.Second}, slept)
	assert.Equal(t, []string{
		"npm uninstall a c",
		"<pause>",
		"npm install a",
		"npm install --save-dev c",
	}, runner.cmds)
}

func TestReinstallAll(t *testing.T) {
	runner := &fakeRunner{}
	pause := 10 * time.Millisecond
	d := newDomain(t, runner, appManifest, Options{ReinstallPause: &pause})

	report, err := d.ReinstallAllDependencies(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.Install)
	assert.Equal(t, []string{
		"npm uninstall a b c",
		"npm install a b",
		"npm install --save-dev c",
	}, runner.cmds)
}

func TestReinstallPauseDisabled(t *testing.T) {
	runner := &fakeRunner{}
	var pause time.Duration
	d := newDomain(t, runner, appManifest, Options{
		ReinstallPause: &pause,
		Sleep:          func(time.Duration) { t.Error("must not pause") },
	})

	report, err := d.ReinstallDependency(context.Background(), api.Name("b"))
	require.NoError(t, err)
	assert.False(t, report.Failed())
	assert.Equal(t, []string{"npm uninstall b", "npm install b"}, runner.cmds)
}

func TestReinstallSkipsInstallAfterFailedRemoval(t *testing.T) {
	runner := &fakeRunner{fail: map[string]int{"npm uninstall": 1}}
	d := newDomain(t, runner, appManifest, Options{
		Sleep: func(time.Duration) { t.Error("must not pause") },
	})

	report, err := d.ReinstallDevDependencies(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Failed())
	assert.Nil(t, report.Install)
	// The removal's rollback is the only install.
	assert.Equal(t, []string{"npm uninstall c", "npm install --save-dev c@^3.0.0"}, runner.cmds)
}

func TestReinstallNothing(t *testing.T) {
	runner := &fakeRunner{}
	d := newDomain(t, runner, `{"name":"app"}`, Options{})

	report, err := d.ReinstallRuntimeDependencies(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Uninstall.NoDependencies)
	assert.Empty(t, runner.cmds)
}
