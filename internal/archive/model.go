package archive

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when an archive payload is not valid JSON.
var ErrMalformed = errors.New("malformed archive document")

// Story is a single article inside a section.
type Story struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Author   string `json:"author,omitempty"`
	Section  string `json:"section,omitempty"`
	Date     string `json:"date,omitempty"`
}

// HasImage reports whether the story carries an image URL at all.
func (s Story) HasImage() bool {
	return s.ImageURL != ""
}

// Document is one day's archive: every section keyed by category.
type Document struct {
	Date       string             `json:"date"`
	Sections   map[string][]Story `json:"sections"`
	IsFallback bool               `json:"isFallback"`
	CachedAt   string             `json:"cached_at,omitempty"`
}

// Section returns the raw stories stored under key, or nil.
func (d *Document) Section(key string) []Story {
	if d == nil || d.Sections == nil {
		return nil
	}
	return d.Sections[key]
}

// Decode parses an archive payload.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Sections == nil {
		doc.Sections = map[string][]Story{}
	}
	return &doc, nil
}

// Encode serialises a document the way the archive endpoint serves it.
func Encode(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
