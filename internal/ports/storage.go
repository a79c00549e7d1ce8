// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import "time"

// UploadStore holds documents between the moment a user uploads them and the
// single analysis call that consumes them. It is transient storage owned by
// the chat layer, not a history archive: uploads are deleted once analyzed
// and pruned when abandoned.
//
// Crash safety: SaveUpload must be transactional. A crash mid-write must not
// corrupt previously committed uploads.
type UploadStore interface {
	// SaveUpload persists an upload. Overwrites any upload with the same ID.
	SaveUpload(u *Upload) error

	// LoadUpload retrieves an upload by ID.
	// Returns nil, nil if no such upload exists.
	LoadUpload(id string) (*Upload, error)

	// DeleteUpload removes an upload.
	// Idempotent: deleting a nonexistent upload is not an error.
	DeleteUpload(id string) error

	// ListUploads returns the uploads of one chat, oldest first.
	ListUploads(chatID int64) ([]*Upload, error)

	// PruneUploads deletes every upload created before the cutoff and
	// returns how many were removed.
	PruneUploads(before time.Time) (int, error)
}

// Upload is a document sent by a user, waiting to be analyzed.
type Upload struct {
	ID        string `json:"id"`
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	Content   []byte `json:"content"`
	CreatedAt int64  `json:"created_at"` // unix seconds
}

// Created returns the creation time.
func (u *Upload) Created() time.Time {
	return time.Unix(u.CreatedAt, 0)
}
