package view

import (
	"fmt"

	"github.com/matheuskafuri/epaper/internal/archive"
)

// Card is one rendered list of stories with its own transient state.
type Card struct {
	Category archive.Category
	Label    string
	Featured bool
	Stories  []archive.Story
	Images   *ImageFailures
}

// NewCard resolves cat into a card. label overrides the category's own
// heading when non-empty.
func NewCard(res *archive.Resolver, cat archive.Category, label string, featured bool) *Card {
	if label == "" {
		label = cat.Label()
	}
	stories := res.Stories(cat)
	if featured {
		stories = res.Featured(cat)
	}
	return &Card{
		Category: cat,
		Label:    label,
		Featured: featured,
		Stories:  stories,
		Images:   NewImageFailures(),
	}
}

// Empty reports whether the card has nothing to show.
func (c *Card) Empty() bool {
	return len(c.Stories) == 0
}

// EmptyMessage is shown in place of an empty list.
func (c *Card) EmptyMessage() string {
	return fmt.Sprintf("No %s stories right now.", c.Label)
}

// Key is a stable list key for the story at i. Titles alone may collide.
func (c *Card) Key(i int) string {
	return fmt.Sprintf("%s#%d", c.Stories[i].Title, i)
}

// Lead reports whether the story at i gets the featured lead treatment.
func (c *Card) Lead(i int) bool {
	return c.Featured && i == 0
}

// FrontPageCard is the hero block: the lead story, its related stories and
// the hero's collapsible summary.
type FrontPageCard struct {
	Hero    *archive.Story
	Related []archive.Story
	Summary *Summary
	Images  *ImageFailures
}

const noFrontPage = "No front-page articles available."

func NewFrontPageCard(res *archive.Resolver) *FrontPageCard {
	fp := res.FrontPage()
	c := &FrontPageCard{Hero: fp.Hero, Related: fp.Related, Images: NewImageFailures()}
	if fp.Hero != nil && fp.Hero.Summary != "" {
		c.Summary = NewSummary(fp.Hero.Summary)
	}
	return c
}

// HasHero is false when the front page is empty.
func (c *FrontPageCard) HasHero() bool {
	return c.Hero != nil
}

func (c *FrontPageCard) EmptyMessage() string {
	return noFrontPage
}
