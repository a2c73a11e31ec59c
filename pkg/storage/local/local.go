// File: pkg/storage/local/local.go
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"stowage/pkg/storage"

	"github.com/google/uuid"
)

const tempPrefix = ".stowage-"

// Storage keeps each object as a file below a root directory. Ids use forward slashes
// and map onto nested directories
type Storage struct {
	root   string
	logger *slog.Logger
}

var _ storage.Storage = (*Storage)(nil)

func New(root string, logger *slog.Logger) (*Storage, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, storage.IO(fmt.Errorf("creating root %s: %w", abs, err))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{root: abs, logger: logger}, nil
}

func (s *Storage) Root() string {
	return s.root
}

// Rejects ids that would escape the root
func validateID(id string) error {
	if id == "" {
		return storage.Generic("id cannot be empty")
	}
	if path.IsAbs(id) || filepath.IsAbs(id) || filepath.VolumeName(id) != "" {
		return storage.PermissionDenied(id, errors.New("absolute paths are not allowed"))
	}
	slashed := filepath.ToSlash(id)
	if path.Clean(slashed) == "." {
		return storage.PermissionDenied(id, errors.New("id resolves to the storage root"))
	}
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return storage.PermissionDenied(id, errors.New("parent dir components are not allowed"))
		}
	}
	return nil
}

func (s *Storage) pathFor(id string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(id)), nil
}

func (s *Storage) idFor(p string) (string, error) {
	rel, err := filepath.Rel(s.root, p)
	if err != nil {
		return "", storage.Generic("failed to relativize path %s: %v", p, err)
	}
	return filepath.ToSlash(rel), nil
}

func (s *Storage) Exists(ctx context.Context, id string) (bool, error) {
	p, err := s.pathFor(id)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, mapError(id, err)
	}
	return info.Mode().IsRegular(), nil
}

// A folder exists when at least one object lives below it
func (s *Storage) FolderExists(ctx context.Context, id string) (bool, error) {
	p, err := s.pathFor(strings.TrimSuffix(id, "/"))
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, mapError(id, err)
	}
	if !info.IsDir() {
		return false, nil
	}

	found := false
	err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && !isTemp(d.Name()) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, mapError(id, err)
	}
	return found, nil
}

// Put writes to a uniquely named temp file in the target directory and renames it into place
func (s *Storage) Put(ctx context.Context, id string, r io.Reader, size int64) error {
	p, err := s.pathFor(id)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return mapError(id, err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+uuid.NewString()+"-*.tmp")
	if err != nil {
		return mapError(id, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return storage.IO(fmt.Errorf("writing %s: %w", id, err))
	}
	if err := tmp.Close(); err != nil {
		return storage.IO(fmt.Errorf("closing temp file for %s: %w", id, err))
	}
	if err := os.Rename(tmpName, p); err != nil {
		return mapError(id, err)
	}
	return nil
}

func (s *Storage) GetInto(ctx context.Context, id string, w io.Writer) (int64, error) {
	p, err := s.pathFor(id)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(p)
	if err != nil {
		return 0, mapError(id, err)
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, storage.IO(fmt.Errorf("reading %s: %w", id, err))
	}
	return n, nil
}

// Delete removes the file and prunes directories left empty by it
func (s *Storage) Delete(ctx context.Context, id string) error {
	p, err := s.pathFor(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return mapError(id, err)
	}

	for dir := filepath.Dir(p); dir != s.root && strings.HasPrefix(dir, s.root); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}

// List walks the directory holding the prefix and yields ids in lexical order
func (s *Storage) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		base := s.root
		if dir := path.Dir(prefix); prefix != "" && dir != "." {
			p, err := s.pathFor(dir)
			if err != nil {
				yield("", err)
				return
			}
			base = p
		}

		err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !d.Type().IsRegular() || isTemp(d.Name()) {
				return nil
			}
			id, err := s.idFor(p)
			if err != nil {
				return err
			}
			if !strings.HasPrefix(id, prefix) {
				return nil
			}
			if !yield(id, nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("Listing stopped on error", "root", s.root, "prefix", prefix, "error", err)
			yield("", mapError(prefix, err))
		}
	}
}

func (s *Storage) Close() error {
	return nil
}

func isTemp(name string) bool {
	return strings.HasPrefix(name, tempPrefix) && strings.HasSuffix(name, ".tmp")
}

func mapError(id string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return storage.NotFound(id)
	case errors.Is(err, fs.ErrPermission):
		return storage.PermissionDenied(id, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return storage.IO(fmt.Errorf("%s: %w", id, err))
	}
}
