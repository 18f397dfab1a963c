package view

import (
	"time"

	"github.com/matheuskafuri/epaper/internal/archive"
	"github.com/matheuskafuri/epaper/internal/loader"
)

// Layout is everything a page renders: an optional hero block, the main
// cards in display order, and a strip of featured cards for the remaining
// sections.
type Layout struct {
	FrontPage *FrontPageCard
	Cards     []*Card
	Strip     []*Card
}

var homeCategories = []archive.Category{
	archive.National, archive.Sport, archive.BusinessFinance, archive.BackPage,
}

// HomeLayout is the newspaper home page: the front-page hero block, the
// fixed home cards, then every other non-empty section in featured mode.
func HomeLayout(res *archive.Resolver) *Layout {
	l := &Layout{FrontPage: NewFrontPageCard(res)}
	onHome := map[archive.Category]bool{archive.FrontPage: true}
	for _, cat := range homeCategories {
		label := ""
		if cat == archive.BusinessFinance {
			label = "PRISM"
		}
		l.Cards = append(l.Cards, NewCard(res, cat, label, false))
		onHome[cat] = true
	}
	for _, cat := range archive.AllCategories() {
		if onHome[cat] {
			continue
		}
		if c := NewCard(res, cat, "", true); !c.Empty() {
			l.Strip = append(l.Strip, c)
		}
	}
	return l
}

// SectionLayout renders a single category. Unknown keys render nothing.
func SectionLayout(res *archive.Resolver, key string) (*Layout, bool) {
	cat, ok := archive.ParseCategory(key)
	if !ok {
		return &Layout{}, false
	}
	if cat == archive.FrontPage {
		return HomeLayout(res), true
	}
	return &Layout{Cards: []*Card{NewCard(res, cat, "", false)}}, true
}

const longDate = "January 02, 2006"

// FormatDate renders an ISO date label as "September 09, 2025".
// Anything unparsable is returned unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format(longDate)
}

const (
	loadingText  = "Loading archive…"
	fallbackText = "Live collection is disabled; showing the fallback edition."
)

// Banner is the status line above the page.
type Banner struct {
	Text     string
	Error    bool
	Fallback string
}

// NewBanner derives the status line from a loader snapshot.
func NewBanner(st loader.Status) Banner {
	switch st.State {
	case loader.Loading:
		return Banner{Text: loadingText}
	case loader.Failed:
		return Banner{Text: st.Message, Error: true}
	}
	b := Banner{Text: "Showing archive for " + FormatDate(st.Date)}
	if st.IsFallback {
		b.Fallback = fallbackText
	}
	return b
}
