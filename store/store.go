// Package store persists the site's content as JSON documents in bbolt
// buckets, one bucket per collection, with a bleve index providing full-text
// search over posts. Slug uniqueness is enforced at this layer; timestamps
// are assigned here, never taken from callers.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.etcd.io/bbolt"
)

const (
	boltFile  = "studiocms.db"
	bleveFile = "studiocms.bleve"

	bucketPosts      = "posts"
	bucketAuthors    = "authors"
	bucketCategories = "categories"
	bucketTags       = "tags"
	bucketMedia      = "media"
	bucketSettings   = "settings"

	connectAttempts = 3
	connectBaseWait = 500 * time.Millisecond
)

var buckets = []string{
	bucketPosts,
	bucketAuthors,
	bucketCategories,
	bucketTags,
	bucketMedia,
	bucketSettings,
}

// Store is the content store. It owns the bolt database and the bleve
// search index under a single data directory.
type Store struct {
	db      *bbolt.DB
	index   bleve.Index
	dataDir string
	logger  *slog.Logger
	mu      sync.Mutex
}

// Open opens (or creates) the store under dataDir. The initial connection is
// retried with exponential backoff; once open, failures propagate to callers
// and writes are never retried automatically.
func Open(dataDir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{dataDir: dataDir, logger: logger}

	var err error
	wait := connectBaseWait
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = s.connect(); err == nil {
			return s, nil
		}
		if attempt < connectAttempts {
			logger.Warn("store connect failed, retrying",
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait),
				slog.String("error", err.Error()))
			time.Sleep(wait)
			wait *= 2
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (s *Store) connect() error {
	db, err := bbolt.Open(filepath.Join(s.dataDir, boltFile), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("open bolt: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return err
	}

	index, err := s.openIndex()
	if err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.index = index
	return nil
}

// Close releases the bolt database and the search index.
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
	}
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}

// Clear wipes every collection and the search index. Used by the migration
// CLI's --clear flag before a fresh run.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Close(); err != nil {
		return fmt.Errorf("close before clear: %w", err)
	}
	if err := os.Remove(filepath.Join(s.dataDir, boltFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove bolt file: %w", err)
	}
	if err := os.RemoveAll(filepath.Join(s.dataDir, bleveFile)); err != nil {
		return fmt.Errorf("remove bleve index: %w", err)
	}
	return s.connect()
}

func (s *Store) openIndex() (bleve.Index, error) {
	path := filepath.Join(s.dataDir, bleveFile)
	index, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		index, err = bleve.New(path, postIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create bleve index: %w", err)
		}
		return index, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open bleve index: %w", err)
	}
	return index, nil
}

func postIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	docMapping.AddFieldMappingsAt("slug", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("title", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("content", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("excerpt", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("category", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("author", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("tags", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("draft", bleve.NewBooleanFieldMapping())
	docMapping.AddFieldMappingsAt("featured", bleve.NewBooleanFieldMapping())
	docMapping.AddFieldMappingsAt("publishedAt", bleve.NewDateTimeFieldMapping())

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// putDoc stores doc under key in the named bucket. When overwrite is false,
// an existing key is rejected with ErrDuplicateKey and the stored document
// is left untouched.
func (s *Store) putDoc(bucket, key string, doc any, overwrite bool) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucket)
		}
		if !overwrite && b.Get([]byte(key)) != nil {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateKey, bucket, key)
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// getDoc loads the document stored under key into out.
func (s *Store) getDoc(bucket, key string, out any) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucket)
		}
		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
		}
		return json.Unmarshal(data, out)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// deleteDoc removes the document stored under key. Deleting an unknown key
// reports ErrNotFound.
func (s *Store) deleteDoc(bucket, key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucket)
		}
		if b.Get([]byte(key)) == nil {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// forEachDoc iterates raw documents in the named bucket in key order.
func (s *Store) forEachDoc(bucket string, fn func(key string, data []byte) error) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucket)
		}
		return b.ForEach(func(k, v []byte) error {
			return fn(string(k), v)
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// mergeDoc implements partial-update semantics: the stored JSON document is
// merged with the supplied fields, so omitted fields keep their prior
// values. Protected keys (slug, timestamps) are never overwritten by the
// caller.
func mergeDoc(stored []byte, fields map[string]any) ([]byte, error) {
	merged := map[string]any{}
	if err := json.Unmarshal(stored, &merged); err != nil {
		return nil, fmt.Errorf("unmarshal stored document: %w", err)
	}
	for k, v := range fields {
		switch k {
		case "slug", "createdAt", "updatedAt":
			continue
		}
		merged[k] = v
	}
	merged["updatedAt"] = time.Now().UTC()
	return json.Marshal(merged)
}
