package tui

import (
	"strings"

	"github.com/matheuskafuri/epaper/internal/archive"
)

func renderListItem(s archive.Story, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(s.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(s.Title, width-4))
	}

	meta := "  " + itemSourceStyle.Render(storyMeta(s))
	return title + "\n" + meta
}

// storyMeta is the byline shown under a title: author, falling back to the
// section heading.
func storyMeta(s archive.Story) string {
	if s.Author != "" {
		return s.Author
	}
	if c, ok := archive.ParseCategory(s.Section); ok {
		return c.Label()
	}
	return ""
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(stories []archive.Story, cursor int, height int, width int, empty string) string {
	if len(stories) == 0 {
		return lipglossCenter(emptyStyle.Render(empty), width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start, end := window(cursor, visible, len(stories))

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(stories[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

// window returns the [start, end) range of n items that keeps cursor
// visible in a view of the given size.
func window(cursor, size, n int) (int, int) {
	start := 0
	if cursor >= size {
		start = cursor - size + 1
	}
	end := start + size
	if end > n {
		end = n
		start = end - size
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
