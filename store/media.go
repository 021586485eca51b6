package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// MediaVariant is a named resized rendition of an uploaded image.
type MediaVariant struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Media describes an uploaded file. Backend records which storage holds the
// bytes ("local" or "remote"); UsedBy lists slugs of posts referencing it.
type Media struct {
	Filename     string                  `json:"filename"`
	OriginalName string                  `json:"originalName"`
	URL          string                  `json:"url"`
	MimeType     string                  `json:"mimeType"`
	Size         int64                   `json:"size"`
	Width        int                     `json:"width"`
	Height       int                     `json:"height"`
	Alt          string                  `json:"alt"`
	Caption      string                  `json:"caption"`
	Backend      string                  `json:"backend"`
	Metadata     map[string]string       `json:"metadata"`
	UsedBy       []string                `json:"usedBy"`
	UploadedBy   string                  `json:"uploadedBy"`
	Variants     map[string]MediaVariant `json:"variants"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// CreateMedia stores a new media document keyed by filename.
func (s *Store) CreateMedia(m *Media) (*Media, error) {
	if strings.TrimSpace(m.Filename) == "" {
		return nil, fmt.Errorf("%w: filename", ErrValidation)
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := s.putDoc(bucketMedia, m.Filename, m, false); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMedia returns the media document stored under filename.
func (s *Store) GetMedia(filename string) (*Media, error) {
	var m Media
	if err := s.getDoc(bucketMedia, filename, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMedia returns all media documents, newest first.
func (s *Store) ListMedia() ([]*Media, error) {
	var media []*Media
	err := s.forEachDoc(bucketMedia, func(key string, data []byte) error {
		var m Media
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("unmarshal media %s: %w", key, err)
		}
		media = append(media, &m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(media, func(i, j int) bool { return media[i].CreatedAt.After(media[j].CreatedAt) })
	return media, nil
}

// UpdateMedia merges the supplied fields (alt text, caption, metadata) into
// the stored media document.
func (s *Store) UpdateMedia(filename string, fields map[string]any) (*Media, error) {
	var m Media
	if err := s.getDoc(bucketMedia, filename, &m); err != nil {
		return nil, err
	}
	stored, err := json.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("marshal media %s: %w", filename, err)
	}
	// Filename is the document key, as slug is for the other collections.
	delete(fields, "filename")
	merged, err := mergeDoc(stored, fields)
	if err != nil {
		return nil, err
	}
	var out Media
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("unmarshal merged media %s: %w", filename, err)
	}
	out.Filename = filename
	if err := s.putDoc(bucketMedia, filename, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMedia removes the media document.
func (s *Store) DeleteMedia(filename string) error {
	return s.deleteDoc(bucketMedia, filename)
}
