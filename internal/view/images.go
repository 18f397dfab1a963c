package view

import "github.com/matheuskafuri/epaper/internal/archive"

// ImageFailures remembers which stories' images failed to load for the
// lifetime of one rendered list. Keyed by story title; never retried.
type ImageFailures struct {
	failed map[string]struct{}
}

func NewImageFailures() *ImageFailures {
	return &ImageFailures{failed: make(map[string]struct{})}
}

// Fail records that title's image could not be loaded.
func (f *ImageFailures) Fail(title string) {
	f.failed[title] = struct{}{}
}

func (f *ImageFailures) Failed(title string) bool {
	_, ok := f.failed[title]
	return ok
}

// ShouldRender reports whether an image element should be attempted.
func (f *ImageFailures) ShouldRender(s archive.Story) bool {
	return s.HasImage() && !f.Failed(s.Title)
}

// Len is the number of suppressed titles.
func (f *ImageFailures) Len() int {
	return len(f.failed)
}
