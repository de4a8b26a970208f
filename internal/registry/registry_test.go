package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iclvault/pkg/errors"
	"iclvault/pkg/logger"
)

// writeArtifactDir lays out a complete candidate directory: manifest plus
// the four model files (dummy bytes; tests use a fake loader).
func writeArtifactDir(t *testing.T, root, dirName string, m *Manifest) {
	t.Helper()
	dir := filepath.Join(root, dirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), raw, 0o644))

	for _, name := range []string{LensModelFile, LensScalerFile, VaultModelFile, VaultScalerFile} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("stub"), 0o644))
	}
}

func fakeLoader(dir string, m *Manifest) (*Artifact, error) {
	return &Artifact{
		Tag:         m.Tag,
		Description: m.Description,
		Features:    m.Features,
		VaultMargin: m.VaultMarginUm,
	}, nil
}

func testManifest(tag string) *Manifest {
	return &Manifest{
		Schema:        1,
		Tag:           tag,
		Features:      []string{"Age", "WTW"},
		VaultMarginUm: 130,
	}
}

func TestRegistry_Discovery(t *testing.T) {
	root := t.TempDir()
	writeArtifactDir(t, root, "v1", testManifest("gestalt-24f-756c"))
	writeArtifactDir(t, root, "v2", testManifest("gestalt-27f-756c"))

	r := New(root, logger.Get(), WithLoader(fakeLoader))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"gestalt-24f-756c", "gestalt-27f-756c"}, r.Tags())

	a, err := r.Get("gestalt-24f-756c")
	require.NoError(t, err)
	assert.Equal(t, 130.0, a.VaultMargin)
}

func TestRegistry_GetUnknownTag(t *testing.T) {
	root := t.TempDir()
	writeArtifactDir(t, root, "v1", testManifest("gestalt-24f-756c"))

	r := New(root, logger.Get(), WithLoader(fakeLoader))

	_, err := r.Get("does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrArtifactNotFound))
}

func TestRegistry_SkipsIncompleteDir(t *testing.T) {
	root := t.TempDir()
	writeArtifactDir(t, root, "complete", testManifest("complete"))

	// Missing everything but the manifest.
	dir := filepath.Join(root, "partial")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	raw, _ := json.Marshal(testManifest("partial"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), raw, 0o644))

	r := New(root, logger.Get(), WithLoader(fakeLoader))
	assert.Equal(t, []string{"complete"}, r.Tags())
}

func TestRegistry_SkipsHiddenAndFileEntries(t *testing.T) {
	root := t.TempDir()
	writeArtifactDir(t, root, "visible", testManifest("visible"))
	writeArtifactDir(t, root, ".hidden", testManifest("hidden"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("docs"), 0o644))

	r := New(root, logger.Get(), WithLoader(fakeLoader))
	assert.Equal(t, []string{"visible"}, r.Tags())
}

func TestRegistry_SkipsInvalidManifest(t *testing.T) {
	root := t.TempDir()
	writeArtifactDir(t, root, "good", testManifest("good"))

	bad := testManifest("bad")
	bad.VaultMarginUm = -1
	writeArtifactDir(t, root, "bad", bad)

	r := New(root, logger.Get(), WithLoader(fakeLoader))
	assert.Equal(t, []string{"good"}, r.Tags())
}

func TestRegistry_SkipsDuplicateTag(t *testing.T) {
	root := t.TempDir()
	writeArtifactDir(t, root, "a", testManifest("same-tag"))
	writeArtifactDir(t, root, "b", testManifest("same-tag"))

	r := New(root, logger.Get(), WithLoader(fakeLoader))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SkipsLoaderFailure(t *testing.T) {
	root := t.TempDir()
	writeArtifactDir(t, root, "ok", testManifest("ok"))
	writeArtifactDir(t, root, "corrupt", testManifest("corrupt"))

	loader := func(dir string, m *Manifest) (*Artifact, error) {
		if m.Tag == "corrupt" {
			return nil, errors.New("bad weights")
		}
		return fakeLoader(dir, m)
	}

	r := New(root, logger.Get(), WithLoader(loader))
	assert.Equal(t, []string{"ok"}, r.Tags())
}

func TestRegistry_EmptyRoot(t *testing.T) {
	r := New(t.TempDir(), logger.Get(), WithLoader(fakeLoader))
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Tags())
}

func TestRegistry_MissingRoot(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "nope"), logger.Get(), WithLoader(fakeLoader))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ScansOnce(t *testing.T) {
	root := t.TempDir()
	writeArtifactDir(t, root, "v1", testManifest("v1"))

	var mu sync.Mutex
	calls := 0
	loader := func(dir string, m *Manifest) (*Artifact, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return fakeLoader(dir, m)
	}

	r := New(root, logger.Get(), WithLoader(loader))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Len()
			_, _ = r.Get("v1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	root := t.TempDir()
	writeArtifactDir(t, root, "v1", testManifest("v1"))

	r := New(root, logger.Get(), WithLoader(fakeLoader))

	all := r.All()
	delete(all, "v1")
	assert.Equal(t, 1, r.Len())
}
