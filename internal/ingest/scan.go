package ingest

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile represents a PDF found during a directory scan.
type ScannedFile struct {
	RelPath string // Relative path from the scan root (e.g., "a1/ünite-3.pdf")
	AbsPath string
}

// ScanPDFs walks root and returns every PDF below it in lexical order.
// Hidden files and directories are skipped.
func ScanPDFs(ctx context.Context, root string) ([]ScannedFile, error) {
	var scanned []ScannedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsPDF(d.Name(), "") {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		scanned = append(scanned, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return scanned, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return scanned, nil
}

// LocalFile turns a path on disk into a File for Upload.
func LocalFile(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}
