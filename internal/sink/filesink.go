package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Wolfnicos/DevizElite/internal/catalog"
)

// FileSink replaces the file at Path with the encoded sequence.
//
// The content is staged in a temp file next to the resolved target and renamed
// over it, so a failed publish leaves either no file or the previous one.
// Symlinks are followed and an existing file keeps its mode. The file does not
// end with a newline.
type FileSink struct {
	Path string
	// Perm applies to newly created files only.
	Perm os.FileMode
}

// NewFileSink creates a file sink for path with 0644 permissions.
func NewFileSink(path string) *FileSink { return &FileSink{Path: path, Perm: 0o644} }

// Publish writes products to s.Path.
func (s *FileSink) Publish(ctx context.Context, products []catalog.Product) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := Encode(products)
	if err != nil {
		return err
	}
	b = bytes.TrimSuffix(b, []byte("\n"))

	target, perm, err := s.resolve()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	dir, base := filepath.Split(target)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(b); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	if err = os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	return nil
}

// resolve follows symlinks at s.Path and picks the mode for the written file.
// A missing target resolves to s.Path itself with s.Perm.
func (s *FileSink) resolve() (string, os.FileMode, error) {
	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}

	target, err := filepath.EvalSymlinks(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		// Dangling link: write where it points.
		if dest, lerr := os.Readlink(s.Path); lerr == nil {
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(filepath.Dir(s.Path), dest)
			}
			return dest, perm, nil
		}
		return s.Path, perm, nil
	}
	if err != nil {
		return "", 0, err
	}

	fi, err := os.Stat(target)
	if err != nil {
		return "", 0, err
	}
	if !fi.Mode().IsRegular() {
		return "", 0, fmt.Errorf("%s is not a regular file", target)
	}

	return target, fi.Mode().Perm(), nil
}
