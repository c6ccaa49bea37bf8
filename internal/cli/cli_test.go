package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/deps"
	"github.com/ikmich/package-deps-admin/internal/domain"
)

func testDomain(t *testing.T) *domain.PackageDomain {
	t.Helper()
	root := t.TempDir()
	manifest := `{"name":"app","dependencies":{"a":"1"},"devDependencies":{"c":"3"}}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(manifest), 0o644))
	d, err := domain.New(root, domain.Options{Logger: log.New(io.Discard)})
	require.NoError(t, err)
	return d
}

func TestSelectCategories(t *testing.T) {
	d := testDomain(t)
	refs := parseRefs([]string{"a", "c", "z@2.0.0"})

	tests := []struct {
		name    string
		flags   categoryFlags
		runtime []string
		dev     []string
		global  []string
	}{
		{"membership", categoryFlags{}, []string{"a", "z"}, []string{"c"}, nil},
		{"dev flag wins", categoryFlags{dev: true}, nil, []string{"a", "c", "z"}, nil},
		{"runtime flag wins", categoryFlags{runtime: true}, []string{"a", "c", "z"}, nil, nil},
		{"both flags fall back", categoryFlags{runtime: true, dev: true}, []string{"a", "z"}, []string{"c"}, nil},
		{"global", categoryFlags{global: true, dev: true}, nil, nil, []string{"a", "c", "z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := selectCategories(d, refs, tt.flags)
			assert.Equal(t, tt.runtime, namesOrNil(sel.Runtime))
			assert.Equal(t, tt.dev, namesOrNil(sel.Dev))
			assert.Equal(t, tt.global, namesOrNil(sel.Global))
		})
	}
}

func namesOrNil(refs []api.DependencyRef) []string {
	if len(refs) == 0 {
		return nil
	}
	return deps.Names(refs)
}

func TestResolveWholeCategory(t *testing.T) {
	assert.Equal(t, wholeNone, resolveWholeCategory(categoryFlags{}, wholeNone))
	assert.Equal(t, wholeAll, resolveWholeCategory(categoryFlags{}, wholeAll))
	assert.Equal(t, wholeRuntime, resolveWholeCategory(categoryFlags{runtime: true}, wholeNone))
	assert.Equal(t, wholeDev, resolveWholeCategory(categoryFlags{dev: true}, wholeAll))
	assert.Equal(t, wholeAll, resolveWholeCategory(categoryFlags{runtime: true, dev: true}, wholeNone))
	assert.Equal(t, wholeAll, resolveWholeCategory(categoryFlags{all: true, dev: true}, wholeNone))
}

func TestParseRefs(t *testing.T) {
	refs := parseRefs([]string{"left-pad", "@types/node@20.1.0", "@scope/pkg"})
	assert.Equal(t, []api.DependencyRef{
		api.Name("left-pad"),
		api.Pinned("@types/node", "20.1.0"),
		api.Name("@scope/pkg"),
	}, refs)
}

func TestCommandFlagsOptions(t *testing.T) {
	flags := commandFlags{force: true, exact: true, extra: []string{"--silent"}}
	assert.Equal(t, api.CommandOptions{
		VersionSpecific: true,
		UseForce:        true,
		ExtraFlags:      []string{"--silent"},
	}, flags.options())
}

func TestLinksOutput(t *testing.T) {
	link := api.TransitLink{
		ID:     api.LinkID("p", "q"),
		Source: api.DomainRef{Name: "p", Root: "/work/p", Backend: api.BackendNPM},
		Dest:   api.DomainRef{Name: "q", Root: "/work/q", Backend: api.BackendYarn},
		TransitedDependencies: api.TransitedDeps{
			Runtime: []string{"x", "y"},
			Dev:     []string{},
		},
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	rows := linkRows([]api.TransitLink{link})
	require.Len(t, rows, 1)
	assert.Equal(t, "p::to::q", rows[0].ID)
	assert.Equal(t, "/work/q", rows[0].Dest)
	assert.Equal(t, []string{"x", "y"}, rows[0].Runtime)

	var out bytes.Buffer
	require.NoError(t, writeLinksJSON(&out, nil))
	assert.Equal(t, "[]\n", out.String())

	out.Reset()
	require.NoError(t, writeLinksJSON(&out, []api.TransitLink{link}))
	assert.JSONEq(t, `[{
		"id": "p::to::q",
		"source": {"name": "p", "root": "/work/p", "backend": "npm"},
		"dest": {"name": "q", "root": "/work/q", "backend": "yarn"},
		"transitedDependencies": {"runtime": ["x", "y"], "dev": []},
		"createdAt": "2024-05-01T12:00:00Z"
	}]`, out.String())
}
