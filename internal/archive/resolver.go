package archive

// Resolver answers per-category story queries against a loaded document.
// A nil document is valid and resolves every category to an empty list.
type Resolver struct {
	doc *Document
}

// Lead splits the front-page section into its hero and related stories.
// Hero is nil when the section is empty.
type Lead struct {
	Hero    *Story
	Related []Story
}

// NewResolver wraps doc, which may be nil.
func NewResolver(doc *Document) *Resolver {
	return &Resolver{doc: doc}
}

// Date is the archive's date label, or "" when nothing is loaded.
func (r *Resolver) Date() string {
	if r == nil || r.doc == nil {
		return ""
	}
	return r.doc.Date
}

// IsFallback reports whether the document came from the static fallback.
func (r *Resolver) IsFallback() bool {
	return r != nil && r.doc != nil && r.doc.IsFallback
}

// Stories returns the category's stories truncated to its limit.
func (r *Resolver) Stories(c Category) []Story {
	return r.slice(c, false)
}

// Featured returns the category's stories truncated to the featured limit.
func (r *Resolver) Featured(c Category) []Story {
	return r.slice(c, true)
}

// StoriesFor resolves a raw section key. Unknown keys return an empty list.
func (r *Resolver) StoriesFor(key string) []Story {
	c, ok := ParseCategory(key)
	if !ok {
		return []Story{}
	}
	return r.Stories(c)
}

// FrontPage returns the hero (element 0) and up to three related stories.
func (r *Resolver) FrontPage() Lead {
	stories := r.Stories(FrontPage)
	if len(stories) == 0 {
		return Lead{Related: []Story{}}
	}
	hero := stories[0]
	return Lead{Hero: &hero, Related: stories[1:]}
}

func (r *Resolver) raw(c Category) []Story {
	if r == nil || r.doc == nil {
		return nil
	}
	for _, key := range c.keys() {
		if stories, ok := r.doc.Sections[key]; ok {
			return stories
		}
	}
	return nil
}

func (r *Resolver) slice(c Category, featured bool) []Story {
	stories := r.raw(c)
	n := c.Limit(featured)
	if len(stories) < n {
		n = len(stories)
	}
	out := make([]Story, n)
	copy(out, stories[:n])
	return out
}
