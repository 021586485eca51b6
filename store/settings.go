package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const settingsKey = "site"

// Settings is the single site-wide settings document.
type Settings struct {
	SiteName        string    `json:"siteName"`
	SiteDescription string    `json:"siteDescription"`
	SiteURL         string    `json:"siteURL"`
	ContactEmail    string    `json:"contactEmail"`
	Twitter         string    `json:"twitter"`
	LinkedIn        string    `json:"linkedin"`
	GitHub          string    `json:"github"`
	PostsPerPage    int       `json:"postsPerPage"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func defaultSettings() *Settings {
	return &Settings{
		SiteName:     "Northbeam Studio",
		PostsPerPage: 10,
	}
}

// GetSettings returns the stored settings, or defaults when none have been
// saved yet.
func (s *Store) GetSettings() (*Settings, error) {
	var st Settings
	err := s.getDoc(bucketSettings, settingsKey, &st)
	if errors.Is(err, ErrNotFound) {
		return defaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateSettings merges the supplied fields into the settings document.
func (s *Store) UpdateSettings(fields map[string]any) (*Settings, error) {
	current, err := s.GetSettings()
	if err != nil {
		return nil, err
	}
	stored, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	merged, err := mergeDoc(stored, fields)
	if err != nil {
		return nil, err
	}
	var out Settings
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("unmarshal merged settings: %w", err)
	}
	if err := s.putDoc(bucketSettings, settingsKey, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}
