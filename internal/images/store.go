// Package images owns the image directory: listing it, serving files from
// it and creating the placeholder when it is missing.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"productcatalog/internal/resolver"
)

var (
	ErrImageStoreNotFound  = errors.New("image store not found")
	ErrDisallowedExtension = errors.New("disallowed image extension")
)

// AllowedExts are the extensions the image route accepts. A request with no
// extension is also accepted.
var AllowedExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".avif"}

const placeholderSVG = `<svg width="300" height="200" xmlns="http://www.w3.org/2000/svg"><rect width="100%" height="100%" fill="#f0f0f0"/><text x="50%" y="50%" font-size="16" fill="#999" text-anchor="middle" dy=".3em">No Image</text></svg>`

// Lister returns the filenames currently in the store.
type Lister interface {
	List() ([]string, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func() ([]string, error)

func (f ListerFunc) List() ([]string, error) {
	return f()
}

// ListDir returns the names of the non-directory entries of dir, sorted.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageStoreNotFound, dir)
		}
		return nil, fmt.Errorf("read image dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

type Store struct {
	Dir    string
	Lister Lister // nil means re-list the directory on every call
	Logger *zap.Logger
}

func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{Dir: dir, Logger: logger}
}

// Filenames lists the store with original case preserved.
func (s *Store) Filenames() ([]string, error) {
	if s.Lister != nil {
		return s.Lister.List()
	}
	return ListDir(s.Dir)
}

// EnsureDir creates the image directory when it does not exist.
func (s *Store) EnsureDir() (bool, error) {
	if st, err := os.Stat(s.Dir); err == nil {
		if !st.IsDir() {
			return false, fmt.Errorf("image store %s is not a directory", s.Dir)
		}
		return false, nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return false, fmt.Errorf("create image dir: %w", err)
	}
	return true, nil
}

// EnsurePlaceholder returns the placeholder path, writing the built-in
// "No Image" graphic first if the file is absent.
func (s *Store) EnsurePlaceholder() (string, error) {
	p := filepath.Join(s.Dir, resolver.Placeholder)
	if isFile(p) {
		return p, nil
	}
	if err := os.WriteFile(p, []byte(placeholderSVG), 0o644); err != nil {
		return "", fmt.Errorf("create placeholder: %w", err)
	}
	s.Logger.Info("created placeholder", zap.String("path", p))
	return p, nil
}

// Match says how a lookup was satisfied.
type Match string

const (
	MatchExact       Match = "exact"
	MatchAlternate   Match = "alternate"
	MatchPlaceholder Match = "placeholder"
)

type Result struct {
	Name        string
	Path        string
	Match       Match
	ContentType string // set when the extension would mislabel the file
}

// Lookup locates the file to serve for requested: the exact name, then a
// file sharing its base name with any extension, then the placeholder.
// Only a disallowed extension or a failure to create the placeholder is an
// error; a missing image is not.
func (s *Store) Lookup(requested string) (Result, error) {
	name := resolver.Basename(requested)

	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" && !slices.Contains(AllowedExts, ext) {
		return Result{}, fmt.Errorf("%w: %s", ErrDisallowedExtension, name)
	}

	if name != "" && name != "." && name != ".." {
		if p := filepath.Join(s.Dir, name); isFile(p) {
			return withContentType(Result{Name: name, Path: p, Match: MatchExact}), nil
		}

		names, err := s.Filenames()
		if err != nil {
			s.Logger.Warn("list images failed", zap.Error(err))
		}
		if found, ok := resolver.FindByBase(name, names); ok {
			if p := filepath.Join(s.Dir, found); isFile(p) {
				return withContentType(Result{Name: found, Path: p, Match: MatchAlternate}), nil
			}
		}
	}

	p, err := s.EnsurePlaceholder()
	if err != nil {
		return Result{}, err
	}
	return withContentType(Result{Name: resolver.Placeholder, Path: p, Match: MatchPlaceholder}), nil
}

// withContentType labels SVG content stored under another extension, such
// as the built-in placeholder.png.
func withContentType(res Result) Result {
	if strings.ToLower(filepath.Ext(res.Name)) != ".svg" && isSVG(res.Path) {
		res.ContentType = "image/svg+xml"
	}
	return res
}

func isSVG(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	head = bytes.TrimSpace(head[:n])
	if bytes.HasPrefix(head, []byte("<?xml")) {
		return bytes.Contains(head, []byte("<svg"))
	}
	return bytes.HasPrefix(head, []byte("<svg"))
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
