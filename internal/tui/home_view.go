package tui

import (
	"strings"

	"github.com/matheuskafuri/epaper/internal/view"
)

// renderHome draws the front-page hero block followed by the home cards.
// Selectable stories are numbered in the same order as App.entries.
func (a *App) renderHome(width, height int) string {
	var lines []string
	cursorLine := 0
	idx := 0

	item := func(title string, extra ...string) {
		if idx == a.cursor {
			cursorLine = len(lines)
			lines = append(lines, itemSelectedStyle.Render("> "+truncateStr(title, width-4)))
		} else {
			lines = append(lines, itemTitleStyle.Render("  "+truncateStr(title, width-4)))
		}
		lines = append(lines, extra...)
		idx++
	}

	fp := a.home.FrontPage
	lines = append(lines, sectionHeadStyle.Render("Front Page"))
	if fp.HasHero() {
		var extra []string
		if a.showImage(fp.Images, *fp.Hero) {
			extra = append(extra, "  "+itemTimeStyle.Render(imageLine(fp.Hero.ImageURL)))
		}
		if fp.Summary != nil {
			for _, l := range strings.Split(wrapText(fp.Summary.Text(), width-4), "\n") {
				extra = append(extra, "  "+previewBodyStyle.Render(l))
			}
			if fp.Summary.Truncated() {
				extra = append(extra, "  "+toggleStyle.Render("[m] "+fp.Summary.ToggleLabel()))
			}
		}
		item(fp.Hero.Title, extra...)

		if len(fp.Related) > 0 {
			lines = append(lines, "", "  "+itemTimeStyle.Render("More from the front page"))
			for _, s := range fp.Related {
				item(s.Title)
			}
		}
	} else {
		lines = append(lines, "  "+emptyStyle.Render(fp.EmptyMessage()))
	}

	cards := append(append([]*view.Card{}, a.home.Cards...), a.home.Strip...)
	for _, c := range cards {
		lines = append(lines, "", sectionHeadStyle.Render(c.Label))
		if c.Empty() {
			lines = append(lines, "  "+emptyStyle.Render(c.EmptyMessage()))
			continue
		}
		for i, s := range c.Stories {
			var extra []string
			if a.showImage(c.Images, s) {
				extra = append(extra, "  "+itemTimeStyle.Render(imageLine(s.ImageURL)))
			}
			if c.Lead(i) && s.Summary != "" {
				extra = append(extra, "  "+previewBodyStyle.Render(truncateStr(s.Summary, width-4)))
			}
			item(s.Title, extra...)
		}
	}

	// Keep the selected story on screen.
	start := 0
	if cursorLine >= height-2 {
		start = cursorLine - height/2
	}
	if start > len(lines) {
		start = len(lines)
	}
	lines = lines[start:]
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
