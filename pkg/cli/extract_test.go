package cli_test

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/prism-brain/prism/pkg/cli"
)

func writeArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	gt.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	for name, content := range entries {
		gt.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		gt.NoError(t, err)
	}

	gt.NoError(t, tw.Close())
	gt.NoError(t, gz.Close())
}

func TestExtract(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	archive := filepath.Join(dir, "backend.tar.gz")
	dest := filepath.Join(dir, "out")

	writeArchive(t, archive, map[string]string{
		"app/main.py":          "print('prism')",
		"app/requirements.txt": "fastapi\n",
	})

	gt.NoError(t, cli.Run(ctx, []string{"prism", "extract", "-a", archive, "-d", dest}))

	data, err := os.ReadFile(filepath.Join(dest, "app", "main.py"))
	gt.NoError(t, err)
	gt.Equal(t, string(data), "print('prism')")
}

func TestExtractReplacesExistingDest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	archive := filepath.Join(dir, "backend.tar.gz")
	dest := filepath.Join(dir, "out")

	// Stale file that must not survive the extraction
	gt.NoError(t, os.MkdirAll(dest, 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(dest, "stale.txt"), []byte("old"), 0644))

	writeArchive(t, archive, map[string]string{"fresh.txt": "new"})

	gt.NoError(t, cli.Run(ctx, []string{"prism", "extract", "-a", archive, "-d", dest}))

	_, err := os.Stat(filepath.Join(dest, "stale.txt"))
	gt.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dest, "fresh.txt"))
	gt.NoError(t, err)
}

func TestExtractMissingArchive(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	err := cli.Run(ctx, []string{"prism", "extract",
		"-a", filepath.Join(dir, "no-such-archive.tar.gz"),
		"-d", filepath.Join(dir, "out")})
	gt.Error(t, err)
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.gz")
	dest := filepath.Join(dir, "out")

	writeArchive(t, archive, map[string]string{"../escape.txt": "nope"})

	err := cli.Run(ctx, []string{"prism", "extract", "-a", archive, "-d", dest})
	gt.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "escape.txt"))
	gt.True(t, os.IsNotExist(statErr))
}
