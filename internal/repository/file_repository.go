package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	fileLockTimeout = 3 * time.Second
	fileLockRetry   = 100 * time.Millisecond
)

// FileStore keeps each collection as a JSON array in <dir>/<name>.json.
// It is the fallback backend for running without a database server.
type FileStore struct {
	dir         string
	mu          sync.Mutex
	collections map[string]*fileCollection
}

// NewFileStore creates a FileStore rooted at dir, creating the directory
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{
		dir:         dir,
		collections: make(map[string]*fileCollection),
	}, nil
}

// Collection returns the named collection; repeated calls share one instance
func (s *FileStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c
	}
	path := filepath.Join(s.dir, name+".json")
	c := &fileCollection{
		name:     name,
		path:     path,
		fileLock: flock.New(path + ".lock"),
	}
	s.collections[name] = c
	return c
}

// Close releases nothing; files are closed after every operation
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

type fileCollection struct {
	name     string
	path     string
	fileLock *flock.Flock
	mu       sync.RWMutex
}

func (c *fileCollection) Name() string {
	return c.name
}

func (c *fileCollection) Add(ctx context.Context, fields map[string]any) (string, error) {
	id := uuid.NewString()
	err := c.modify(ctx, func(docs []Document) ([]Document, error) {
		return append(docs, Document{ID: id, Fields: cloneFields(fields)}), nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *fileCollection) Get(ctx context.Context, id string) (*Document, error) {
	docs, err := c.read(ctx)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.ID == id {
			return &doc, nil
		}
	}
	return nil, ErrNotFound
}

func (c *fileCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	return c.modify(ctx, func(docs []Document) ([]Document, error) {
		for i := range docs {
			if docs[i].ID != id {
				continue
			}
			for k, v := range fields {
				docs[i].Fields[k] = v
			}
			return docs, nil
		}
		return nil, ErrNotFound
	})
}

func (c *fileCollection) Delete(ctx context.Context, id string) error {
	return c.modify(ctx, func(docs []Document) ([]Document, error) {
		for i := range docs {
			if docs[i].ID == id {
				return append(docs[:i], docs[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

func (c *fileCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}

	docs, err := c.read(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if matches(doc, q.Where) {
			matched = append(matched, doc)
		}
	}

	if q.OrderBy != nil {
		field, desc := q.OrderBy.Field, q.OrderBy.Descending
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(normalizeValue(matched[i].Fields[field]), normalizeValue(matched[j].Fields[field]))
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	return matched, nil
}

func matches(doc Document, conds []Condition) bool {
	for _, cond := range conds {
		if !valuesEqual(doc.Fields[cond.Field], cond.Value) {
			return false
		}
	}
	return true
}

func (c *fileCollection) read(ctx context.Context) ([]Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lockCtx, cancel := context.WithTimeout(ctx, fileLockTimeout)
	defer cancel()

	locked, err := c.fileLock.TryRLockContext(lockCtx, fileLockRetry)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire file lock for %s", c.name)
	}
	defer func() { _ = c.fileLock.Unlock() }()

	return c.load()
}

func (c *fileCollection) modify(ctx context.Context, fn func([]Document) ([]Document, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lockCtx, cancel := context.WithTimeout(ctx, fileLockTimeout)
	defer cancel()

	locked, err := c.fileLock.TryLockContext(lockCtx, fileLockRetry)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire file lock for %s", c.name)
	}
	defer func() { _ = c.fileLock.Unlock() }()

	docs, err := c.load()
	if err != nil {
		return err
	}
	docs, err = fn(docs)
	if err != nil {
		return err
	}
	return c.save(docs)
}

// load reads the collection file; the caller holds the locks.
// Each entry is a flat object whose "id" key carries the identifier.
func (c *fileCollection) load() ([]Document, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return []Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return []Document{}, nil
	}

	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		id, _ := entry["id"].(string)
		delete(entry, "id")
		docs = append(docs, Document{ID: id, Fields: entry})
	}
	return docs, nil
}

func (c *fileCollection) save(docs []Document) error {
	entries := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		entry := cloneFields(doc.Fields)
		entry["id"] = doc.ID
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
