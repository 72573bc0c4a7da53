package cli

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdExtract() *cli.Command {
	var (
		archivePath string
		destDir     string
	)

	return &cli.Command{
		Name:  "extract",
		Usage: "Extract a packaged backend archive into a working directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "archive",
				Aliases:     []string{"a"},
				Usage:       "Path to the .tar.gz archive",
				Value:       "prism-deploy.tar.gz",
				Destination: &archivePath,
				Sources:     cli.EnvVars("PRISM_ARCHIVE"),
			},
			&cli.StringFlag{
				Name:        "dest",
				Aliases:     []string{"d"},
				Usage:       "Destination directory (replaced if it exists)",
				Value:       "./prism-backend",
				Destination: &destDir,
				Sources:     cli.EnvVars("PRISM_EXTRACT_DEST"),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if _, err := os.Stat(archivePath); err != nil {
				return goerr.Wrap(err, "archive not found", goerr.V("archive", archivePath))
			}

			// A stale destination would mix old and new trees.
			if err := os.RemoveAll(destDir); err != nil {
				return goerr.Wrap(err, "failed to remove existing destination", goerr.V("dest", destDir))
			}

			n, err := extractArchive(archivePath, destDir)
			if err != nil {
				return err
			}

			logger.Info("Archive extracted",
				slog.String("archive", archivePath),
				slog.String("dest", destDir),
				slog.Int("files", n),
			)
			return nil
		},
	}
}

func extractArchive(archivePath, destDir string) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to open archive", goerr.V("archive", archivePath))
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read gzip stream", goerr.V("archive", archivePath))
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return 0, goerr.Wrap(err, "failed to create destination", goerr.V("dest", destDir))
	}

	tr := tar.NewReader(gz)
	var count int
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, goerr.Wrap(err, "failed to read archive entry", goerr.V("archive", archivePath))
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return count, err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return count, goerr.Wrap(err, "failed to create directory", goerr.V("path", target))
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return count, goerr.Wrap(err, "failed to create parent directory", goerr.V("path", target))
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode)&0777)
			if err != nil {
				return count, goerr.Wrap(err, "failed to create file", goerr.V("path", target))
			}
			if _, err := io.Copy(out, tr); err != nil {
				_ = out.Close()
				return count, goerr.Wrap(err, "failed to write file", goerr.V("path", target))
			}
			if err := out.Close(); err != nil {
				return count, goerr.Wrap(err, "failed to close file", goerr.V("path", target))
			}
			count++

		default:
			// Symlinks and special files are not expected in release archives.
			continue
		}
	}
}

// safeJoin resolves an archive entry name under destDir, rejecting entries
// that would escape it
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.Clean(name))
	base := filepath.Clean(destDir)
	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", goerr.New("archive entry escapes destination", goerr.V("entry", name))
	}
	return target, nil
}
