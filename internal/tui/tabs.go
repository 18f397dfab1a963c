package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/epaper/internal/archive"
)

const homeTab = "home"

type tab struct {
	key   string
	label string
}

type tabBar struct {
	tabs   []tab
	cursor int
}

// newTabBar lists Home followed by every category except the front page,
// which Home already shows.
func newTabBar() tabBar {
	tabs := []tab{{key: homeTab, label: "Home"}}
	for _, c := range archive.AllCategories() {
		if c == archive.FrontPage {
			continue
		}
		tabs = append(tabs, tab{key: string(c), label: c.Label()})
	}
	return tabBar{tabs: tabs}
}

func (t *tabBar) current() tab {
	return t.tabs[t.cursor]
}

func (t *tabBar) next() {
	t.cursor = (t.cursor + 1) % len(t.tabs)
}

func (t *tabBar) prev() {
	t.cursor = (t.cursor - 1 + len(t.tabs)) % len(t.tabs)
}

func (t *tabBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	// Scroll the row so the active tab stays visible.
	start := 0
	for start < t.cursor && lipgloss.Width(t.row(start, t.cursor+1, sep)) > width-1 {
		start++
	}

	var row string
	for i := start; i < len(t.tabs); i++ {
		candidate := row
		if i > start {
			candidate += sep
		}
		candidate += t.label(i)
		if lipgloss.Width(candidate) > width-1 && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorTabBg).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}

func (t *tabBar) row(from, to int, sep string) string {
	var row string
	for i := from; i < to; i++ {
		if i > from {
			row += sep
		}
		row += t.label(i)
	}
	return row
}

func (t *tabBar) label(i int) string {
	if i == t.cursor {
		return tabActiveStyle.Render(t.tabs[i].label)
	}
	return tabInactiveStyle.Render(t.tabs[i].label)
}
