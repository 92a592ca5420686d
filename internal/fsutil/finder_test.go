package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layout(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	return root
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestFinder_FindDocuments(t *testing.T) {
	root := layout(t,
		".github/workflows/ci.yml",
		".github/workflows/notes.md",
		".github/actions/setup/action.yml",
		"images/api/Dockerfile",
		"images/api/Dockerfile.dev",
		"images/legacy/Dockerfile",
		"config.yml",
		"vendor/lib/Dockerfile",
		"node_modules/pkg/action.yaml",
		".git/hooks/Dockerfile",
	)

	tests := []struct {
		name    string
		exclude []string
		want    []string
	}{
		{
			name: "default skips",
			want: []string{
				".github/actions/setup/action.yml",
				".github/workflows/ci.yml",
				"images/api/Dockerfile",
				"images/api/Dockerfile.dev",
				"images/legacy/Dockerfile",
			},
		},
		{
			name:    "directory pattern excludes subtree",
			exclude: []string{"images/legacy"},
			want: []string{
				".github/actions/setup/action.yml",
				".github/workflows/ci.yml",
				"images/api/Dockerfile",
				"images/api/Dockerfile.dev",
			},
		},
		{
			name:    "base name pattern",
			exclude: []string{"Dockerfile.*", "images/*/"},
			want: []string{
				".github/actions/setup/action.yml",
				".github/workflows/ci.yml",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &Finder{Exclude: tc.exclude}
			got, err := f.FindDocuments(root)
			require.NoError(t, err)
			assert.Equal(t, tc.want, rel(t, root, got))
		})
	}
}

func TestFinder_SingleFileAndMissingRoot(t *testing.T) {
	root := layout(t, "build/Containerfile")
	f := &Finder{}

	got, err := f.FindDocuments(filepath.Join(root, "build", "Containerfile"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "build", "Containerfile")}, got)

	_, err = f.FindDocuments(filepath.Join(root, "missing"))
	require.Error(t, err)
}

func TestFinder_Dirs(t *testing.T) {
	root := layout(t, ".github/workflows/ci.yml", "vendor/x/Dockerfile", "a/b/c.txt")

	dirs, err := (&Finder{Exclude: []string{"a/b"}}).Dirs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".", ".github", ".github/workflows", "a"}, rel(t, root, dirs))
}
