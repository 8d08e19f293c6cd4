// Package storage places uploaded files on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/siamt-api/internal/config"
)

// maxNameAttempts bounds the retries when a generated name is already taken
const maxNameAttempts = 5

// unsafeChars matches everything outside word characters, dot, hyphen, space
// and parentheses.
var unsafeChars = regexp.MustCompile(`[^\w.\- ()]`)

// Subdirectories of the upload directory, one per artifact variant
const (
	NewsDir       = "news"
	ConventionDir = "conventions"
)

// ErrInvalidName is returned for names that do not resolve to a plain file
// directly under the storage root.
var ErrInvalidName = errors.New("invalid file name")

// FileInfo describes a stored file
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ResolveDir returns the absolute upload directory for the configured
// environment. UPLOAD_DIR wins over the per-environment defaults.
func ResolveDir(cfg *config.Config) (string, error) {
	dir := cfg.Storage.UploadDir
	if dir == "" {
		if cfg.IsProduction() {
			dir = cfg.Storage.ProductionUploadDir
		} else {
			dir = cfg.Storage.DevelopmentDir
		}
	}
	if dir == "" {
		return "", fmt.Errorf("no upload directory configured for %s", cfg.Env)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve upload directory %q: %w", dir, err)
	}
	return abs, nil
}

// SanitizeFileName strips every character outside [\w.\- ()].
// Names made only of dots and spaces sanitize to "".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(unsafeChars.ReplaceAllString(name, ""))
	if strings.Trim(name, ". ") == "" {
		return ""
	}
	return name
}

// GenerateName builds the stored name "<unix-millis>-<original>"
func GenerateName(t time.Time, original string) string {
	base := SanitizeFileName(filepath.Base(filepath.FromSlash(original)))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%d-%s", t.UnixMilli(), base)
}

// OriginalName strips the timestamp prefix from a stored name
func OriginalName(stored string) string {
	idx := strings.IndexByte(stored, '-')
	if idx <= 0 || idx == len(stored)-1 {
		return stored
	}
	if _, err := strconv.ParseInt(stored[:idx], 10, 64); err != nil {
		return stored
	}
	return stored[idx+1:]
}

// Local stores files in a single flat directory
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at root. The directory is created
// lazily by EnsureDir.
func NewLocal(root string) (*Local, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	return &Local{root: absRoot}, nil
}

// Root returns the absolute storage directory
func (l *Local) Root() string {
	return l.root
}

// Sub returns a store rooted at the named child directory of l
func (l *Local) Sub(name string) (*Local, error) {
	p, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	return &Local{root: p}, nil
}

// Layout is the upload directory split into one store per variant
type Layout struct {
	Root       *Local
	News       *Local
	Convention *Local
}

// NewLayout resolves the variant stores under root
func NewLayout(root string) (*Layout, error) {
	base, err := NewLocal(root)
	if err != nil {
		return nil, err
	}
	news, err := base.Sub(NewsDir)
	if err != nil {
		return nil, err
	}
	convention, err := base.Sub(ConventionDir)
	if err != nil {
		return nil, err
	}
	return &Layout{Root: base, News: news, Convention: convention}, nil
}

// EnsureDirs creates every variant directory
func (l *Layout) EnsureDirs() error {
	for _, store := range []*Local{l.News, l.Convention} {
		if err := store.EnsureDir(); err != nil {
			return err
		}
	}
	return nil
}

// EnsureDir creates the storage directory if it does not exist
func (l *Local) EnsureDir() error {
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return fmt.Errorf("create storage directory %q: %w", l.root, err)
	}
	return nil
}

// Path resolves a stored name to its absolute path
func (l *Local) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	joined := filepath.Join(l.root, name)
	rel, err := filepath.Rel(l.root, joined)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q escapes storage root", ErrInvalidName, name)
	}
	return joined, nil
}

// Create writes data under a name generated from now and the client file
// name and returns the stored name. On a collision the millisecond component
// is advanced and the write retried.
func (l *Local) Create(now time.Time, original string, data []byte) (string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		name := GenerateName(now.Add(time.Duration(i)*time.Millisecond), original)
		err := l.Save(name, data)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		return name, nil
	}
	return "", fmt.Errorf("no free file name for %q after %d attempts", original, maxNameAttempts)
}

// Save writes data to name, failing with fs.ErrExist if the file is present
func (l *Local) Save(name string, data []byte) error {
	p, err := l.Path(name)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %q: %w", name, err)
	}

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		os.Remove(p) //nolint:errcheck
		return fmt.Errorf("write %q: %w", name, werr)
	}
	if cerr != nil {
		os.Remove(p) //nolint:errcheck
		return fmt.Errorf("flush %q: %w", name, cerr)
	}
	return nil
}

// Open opens a stored file for reading. Caller must close the file.
func (l *Local) Open(name string) (*os.File, os.FileInfo, error) {
	p, err := l.Path(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %q is a directory", fs.ErrNotExist, name)
	}
	return f, info, nil
}

// Remove deletes a stored file. A missing file yields an error wrapping
// fs.ErrNotExist.
func (l *Local) Remove(name string) error {
	p, err := l.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// List returns the regular files in the storage directory sorted by name.
// A missing directory yields an empty list.
func (l *Local) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(l.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list storage directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
