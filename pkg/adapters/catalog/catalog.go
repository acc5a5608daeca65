// Package catalog loads the block palette from YAML or JSON files and keeps
// it current while the files change on disk.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/schema"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Pattern selects catalog files inside a directory.
const Pattern = "**/*.{yaml,yml,json}"

// ItemSchema lists the keys every catalog entry must carry.
var ItemSchema = schema.Schema{
	"id":   schema.String(),
	"name": schema.String(),
}

// File is a ports.Catalog backed by a file or a directory of files.
type File struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	items []domain.CatalogItem
	index map[string]int
}

type Option func(*File)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *File) {
		f.logger = l
	}
}

// Open loads the catalog at path.
func Open(path string, opts ...Option) (*File, error) {
	f := &File{path: path, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the catalog location.
func (f *File) Path() string {
	return f.path
}

// Reload re-reads the files. On error the previous items stay in place.
func (f *File) Reload() error {
	items, err := Load(f.path)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.ID] = i
	}

	f.mu.Lock()
	f.items = items
	f.index = index
	f.mu.Unlock()

	f.logger.Debug("catalog loaded", "path", f.path, "items", len(items))
	return nil
}

// Items returns copies of every item in load order.
func (f *File) Items(ctx context.Context) ([]domain.CatalogItem, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]domain.CatalogItem, len(f.items))
	for i, it := range f.items {
		out[i] = it.Clone()
	}
	return out, nil
}

// Item returns one item by id.
func (f *File) Item(ctx context.Context, id string) (domain.CatalogItem, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	i, ok := f.index[id]
	if !ok {
		return domain.CatalogItem{}, fmt.Errorf("catalog item %s: %w", id, domain.ErrNotFound)
	}
	return f.items[i].Clone(), nil
}

// Load reads catalog items from a single file or from every file matching
// Pattern below a directory. Every malformed entry is reported.
func Load(path string) ([]domain.CatalogItem, error) {
	files, err := catalogFiles(path)
	if err != nil {
		return nil, err
	}

	var (
		items []domain.CatalogItem
		errs  error
		seen  = map[string]string{}
	)
	for _, file := range files {
		got, err := loadFile(file)
		errs = multierr.Append(errs, err)
		for _, it := range got {
			if prev, dup := seen[it.ID]; dup {
				errs = multierr.Append(errs, fmt.Errorf("%s: duplicate item id %q (first in %s)", file, it.ID, prev))
				continue
			}
			seen[it.ID] = file
			items = append(items, it)
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, errs)
	}
	return items, nil
}

func catalogFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(path), Pattern)
	if err != nil {
		return nil, fmt.Errorf("scan catalog dir: %w", err)
	}
	sort.Strings(matches)
	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = filepath.Join(path, filepath.FromSlash(m))
	}
	return files, nil
}

func loadFile(file string) ([]domain.CatalogItem, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	var list []any
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		list = v
	case map[string]any:
		items, ok := v["items"].([]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected a list or an items key", file)
		}
		list = items
	default:
		return nil, fmt.Errorf("%s: expected a list or an items key", file)
	}

	var (
		out  []domain.CatalogItem
		errs error
	)
	for i, entry := range list {
		path := fmt.Sprintf("%s:items[%d]", filepath.Base(file), i)
		it, err := decodeItem(path, entry)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, it)
	}
	return out, errs
}

func decodeItem(path string, entry any) (domain.CatalogItem, error) {
	m, ok := entry.(map[string]any)
	if !ok {
		return domain.CatalogItem{}, &schema.ValidationError{Key: path, Reason: "expected map", Value: entry}
	}
	if err := schema.ValidateAt(path, ItemSchema, m); err != nil {
		return domain.CatalogItem{}, err
	}

	var it domain.CatalogItem
	if err := mapstructure.Decode(m, &it); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("%s: %w", path, err)
	}
	if it.Type == "" {
		it.Type = domain.BlockType(it.ID)
	}

	if len(it.Fields) > 0 {
		fields, err := schema.ParseTypeMap(it.Fields)
		if err != nil {
			return domain.CatalogItem{}, fmt.Errorf("%s.fields: %w", path, err)
		}
		if err := schema.ValidateAt(path+".defaultContent", fields, it.DefaultContent); err != nil {
			return domain.CatalogItem{}, err
		}
	}
	return it, nil
}

// watchRoot returns the directory to watch and, for single-file catalogs, the
// file name events must match.
func (f *File) watchRoot() (string, string, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return "", "", err
	}
	if info.IsDir() {
		return f.path, "", nil
	}
	return filepath.Dir(f.path), filepath.Base(f.path), nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}
