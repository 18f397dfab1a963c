package archive

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func makeStories(prefix string, n int) []Story {
	out := make([]Story, n)
	for i := range out {
		out[i] = Story{Title: fmt.Sprintf("%s %d", prefix, i), URL: fmt.Sprintf("https://example.com/%s/%d", prefix, i)}
	}
	return out
}

func TestMissingCategoryIsEmpty(t *testing.T) {
	r := NewResolver(&Document{Date: "2025-09-09", Sections: map[string][]Story{}})
	for _, c := range AllCategories() {
		got := r.Stories(c)
		if got == nil || len(got) != 0 {
			t.Errorf("Stories(%s) = %v, want empty non-nil list", c, got)
		}
	}
}

func TestNilDocument(t *testing.T) {
	r := NewResolver(nil)
	if got := r.Stories(Business); len(got) != 0 {
		t.Errorf("expected empty list for nil document, got %d", len(got))
	}
	fp := r.FrontPage()
	if fp.Hero != nil {
		t.Error("expected no hero for nil document")
	}
	if len(fp.Related) != 0 {
		t.Errorf("expected no related stories, got %d", len(fp.Related))
	}
	if r.Date() != "" || r.IsFallback() {
		t.Error("nil document should have no date and not be a fallback")
	}
}

func TestNilResolver(t *testing.T) {
	var r *Resolver
	if got := r.Stories(FrontPage); len(got) != 0 {
		t.Errorf("nil resolver returned %d stories", len(got))
	}
}

func TestFrontPageHeroAndRelated(t *testing.T) {
	for _, n := range []int{4, 5, 12} {
		stories := makeStories("fp", n)
		r := NewResolver(&Document{Sections: map[string][]Story{"front-page": stories}})
		fp := r.FrontPage()
		if fp.Hero == nil {
			t.Fatalf("n=%d: expected hero", n)
		}
		if diff := cmp.Diff(stories[0], *fp.Hero); diff != "" {
			t.Errorf("n=%d: hero mismatch (-want +got):\n%s", n, diff)
		}
		if diff := cmp.Diff(stories[1:4], fp.Related); diff != "" {
			t.Errorf("n=%d: related mismatch (-want +got):\n%s", n, diff)
		}
	}
}

func TestLeadMatchesFrontPageCategory(t *testing.T) {
	stories := makeStories("fp", 3)
	r := NewResolver(&Document{Sections: map[string][]Story{"front-page": stories}})

	var lead Lead = r.FrontPage()
	got := append([]Story{*lead.Hero}, lead.Related...)
	if diff := cmp.Diff(r.Stories(FrontPage), got); diff != "" {
		t.Errorf("lead should split the front-page category (-want +got):\n%s", diff)
	}
}

func TestFrontPageShortList(t *testing.T) {
	r := NewResolver(&Document{Sections: map[string][]Story{"front-page": makeStories("fp", 2)}})
	fp := r.FrontPage()
	if fp.Hero == nil || fp.Hero.Title != "fp 0" {
		t.Fatalf("unexpected hero: %+v", fp.Hero)
	}
	if len(fp.Related) != 1 {
		t.Errorf("expected 1 related, got %d", len(fp.Related))
	}
}

func TestFrontPageEmpty(t *testing.T) {
	r := NewResolver(&Document{Sections: map[string][]Story{"front-page": {}}})
	fp := r.FrontPage()
	if fp.Hero != nil {
		t.Error("expected no hero")
	}
	if len(fp.Related) != 0 {
		t.Errorf("expected no related, got %d", len(fp.Related))
	}
}

func TestBusinessKeepsEightInOrder(t *testing.T) {
	stories := makeStories("biz", 10)
	r := NewResolver(&Document{Sections: map[string][]Story{"business": stories}})
	got := r.Stories(Business)
	if diff := cmp.Diff(stories[:8], got); diff != "" {
		t.Errorf("business mismatch (-want +got):\n%s", diff)
	}
}

func TestLimits(t *testing.T) {
	tests := []struct {
		cat      Category
		want     int
		featured int
	}{
		{FrontPage, 4, 3},
		{National, 3, 3},
		{Business, 8, 3},
		{BackPage, 5, 3},
		{Editorial, 5, 3},
		{Sport, 5, 3},
		{Letters, 5, 3},
		{Icon, 5, 3},
		{YoungWorld, 5, 3},
		{Category("weather"), 0, 0},
	}
	for _, tt := range tests {
		if got := tt.cat.Limit(false); got != tt.want {
			t.Errorf("%s.Limit(false) = %d, want %d", tt.cat, got, tt.want)
		}
		if got := tt.cat.Limit(true); got != tt.featured {
			t.Errorf("%s.Limit(true) = %d, want %d", tt.cat, got, tt.featured)
		}
	}
}

func TestFeaturedTruncates(t *testing.T) {
	r := NewResolver(&Document{Sections: map[string][]Story{"sport": makeStories("sport", 9)}})
	if got := len(r.Stories(Sport)); got != 5 {
		t.Errorf("expected 5 sport stories, got %d", got)
	}
	if got := len(r.Featured(Sport)); got != 3 {
		t.Errorf("expected 3 featured sport stories, got %d", got)
	}
}

func TestStoriesForUnknownKey(t *testing.T) {
	r := NewResolver(&Document{Sections: map[string][]Story{"weather": makeStories("w", 3)}})
	if got := r.StoriesFor("weather"); len(got) != 0 {
		t.Errorf("unknown key should resolve to nothing, got %d", len(got))
	}
	if got := r.StoriesFor("national"); len(got) != 0 {
		t.Errorf("absent key should resolve to nothing, got %d", len(got))
	}
}

func TestSundayMagazineLegacyKey(t *testing.T) {
	r := NewResolver(&Document{Sections: map[string][]Story{"sunday-magzine": makeStories("mag", 2)}})
	if got := len(r.Stories(SundayMagazine)); got != 2 {
		t.Errorf("expected legacy key to resolve, got %d stories", got)
	}
	if got := len(r.StoriesFor("sunday-magzine")); got != 2 {
		t.Errorf("expected legacy key via StoriesFor, got %d stories", got)
	}
}

func TestResultDoesNotAliasDocument(t *testing.T) {
	stories := makeStories("n", 3)
	r := NewResolver(&Document{Sections: map[string][]Story{"national": stories}})
	got := r.Stories(National)
	got[0].Title = "changed"
	if stories[0].Title != "n 0" {
		t.Error("mutating a resolved list changed the document")
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range AllCategories() {
		got, ok := ParseCategory(string(c))
		if !ok || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, ok)
		}
		if c.Label() == "" {
			t.Errorf("%s has no label", c)
		}
	}
	if _, ok := ParseCategory("all"); ok {
		t.Error("expected unknown key to be rejected")
	}
}

func TestDecode(t *testing.T) {
	data := []byte(`{"date":"2025-09-09","isFallback":true,"sections":{"front-page":[{"title":"A","url":"https://a"}]}}`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Date != "2025-09-09" || !doc.IsFallback {
		t.Errorf("unexpected document header: %+v", doc)
	}
	if len(doc.Section("front-page")) != 1 {
		t.Errorf("expected 1 front-page story")
	}
}

func TestDecodeNoSections(t *testing.T) {
	doc, err := Decode([]byte(`{"date":"2025-09-09"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Sections == nil {
		t.Error("expected sections map to be initialised")
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"date":`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}
