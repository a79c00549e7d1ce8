// Package bbolt implements the ports.UploadStore interface using bbolt
// (embedded B+ tree). Upload metadata and bodies live in separate buckets.
// Writes are transactional: a crash mid-write cannot corrupt previously
// committed data.
package bbolt

import (
	"fmt"
	"sort"
	"time"

	"github.com/corey/bbfs/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketUploads = []byte("uploads")
	bucketContent = []byte("content")
)

// Store implements ports.UploadStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.UploadStore = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketUploads, bucketContent} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveUpload persists an upload, replacing any previous one with the same ID.
func (s *Store) SaveUpload(u *ports.Upload) error {
	if u == nil {
		return fmt.Errorf("nil upload")
	}
	if u.ID == "" {
		return fmt.Errorf("upload id required")
	}

	meta, err := encodeUploadMeta(u)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketUploads).Put([]byte(u.ID), meta); err != nil {
			return err
		}
		body := u.Content
		if body == nil {
			body = []byte{}
		}
		return tx.Bucket(bucketContent).Put([]byte(u.ID), body)
	})
}

// LoadUpload retrieves an upload with its body.
// Returns nil, nil if the upload does not exist.
func (s *Store) LoadUpload(id string) (*ports.Upload, error) {
	var u *ports.Upload
	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketUploads).Get([]byte(id))
		if meta == nil {
			return nil
		}
		body := tx.Bucket(bucketContent).Get([]byte(id))
		if body == nil {
			body = []byte{}
		}
		var err error
		u, err = decodeUploadMeta(meta, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUpload removes an upload. Idempotent.
func (s *Store) DeleteUpload(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketUploads).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketContent).Delete([]byte(id))
	})
}

// ListUploads returns a chat's uploads (metadata only), oldest first.
func (s *Store) ListUploads(chatID int64) ([]*ports.Upload, error) {
	var uploads []*ports.Upload
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUploads).ForEach(func(k, v []byte) error {
			u, err := decodeUploadMeta(v, nil)
			if err != nil {
				return err
			}
			if u.ChatID == chatID {
				uploads = append(uploads, u)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(uploads, func(i, j int) bool {
		if uploads[i].CreatedAt != uploads[j].CreatedAt {
			return uploads[i].CreatedAt < uploads[j].CreatedAt
		}
		return uploads[i].ID < uploads[j].ID
	})
	return uploads, nil
}

// PruneUploads deletes uploads created before the cutoff.
func (s *Store) PruneUploads(before time.Time) (int, error) {
	cutoff := before.Unix()
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		ub := tx.Bucket(bucketUploads)
		cb := tx.Bucket(bucketContent)

		// Collect first: bbolt forbids mutating a bucket during ForEach.
		var stale [][]byte
		err := ub.ForEach(func(k, v []byte) error {
			u, err := decodeUploadMeta(v, nil)
			if err != nil {
				return err
			}
			if u.CreatedAt < cutoff {
				key := make([]byte, len(k))
				copy(key, k)
				stale = append(stale, key)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := ub.Delete(k); err != nil {
				return err
			}
			if err := cb.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
