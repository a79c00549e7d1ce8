// Upload encoding.
//
// An upload is split across two buckets so listing and pruning never touch
// document bodies:
//
//	uploads/<id>  -> JSON uploadMeta (everything except Content)
//	content/<id>  -> raw document bytes
package bbolt

import (
	"encoding/json"
	"fmt"

	"github.com/corey/bbfs/internal/ports"
)

// uploadMeta is the JSON form of an upload without its body.
type uploadMeta struct {
	ID        string `json:"id"`
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	Size      int    `json:"size"`
	CreatedAt int64  `json:"created_at"`
}

// encodeUploadMeta serializes everything but the body.
func encodeUploadMeta(u *ports.Upload) ([]byte, error) {
	data, err := json.Marshal(uploadMeta{
		ID:        u.ID,
		ChatID:    u.ChatID,
		UserID:    u.UserID,
		Name:      u.Name,
		MimeType:  u.MimeType,
		Size:      len(u.Content),
		CreatedAt: u.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal upload meta: %w", err)
	}
	return data, nil
}

// decodeUploadMeta rebuilds an upload from its meta blob and body.
// body may be nil when only metadata is needed.
func decodeUploadMeta(data, body []byte) (*ports.Upload, error) {
	var m uploadMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal upload meta: %w", err)
	}
	u := &ports.Upload{
		ID:        m.ID,
		ChatID:    m.ChatID,
		UserID:    m.UserID,
		Name:      m.Name,
		MimeType:  m.MimeType,
		CreatedAt: m.CreatedAt,
	}
	if body != nil {
		// Copy out of the transaction (bbolt slices are only valid within tx)
		u.Content = make([]byte, len(body))
		copy(u.Content, body)
	}
	return u, nil
}
