package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/epaper/internal/archive"
	"github.com/matheuskafuri/epaper/internal/view"
)

func renderPreview(story *archive.Story, showImage bool, width, height, scroll int) string {
	if story == nil {
		return lipglossCenter("Select a story", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(story.Title)

	var meta []string
	if story.Author != "" {
		meta = append(meta, story.Author)
	}
	if c, ok := archive.ParseCategory(story.Section); ok {
		meta = append(meta, c.Label())
	}
	if story.Date != "" {
		meta = append(meta, view.FormatDate(story.Date))
	}
	source := previewSourceStyle.Render(strings.Join(meta, " · "))

	summary := story.Summary
	if summary == "" {
		summary = "(No summary available)"
	}
	body := previewBodyStyle.Width(contentWidth).Render(wrapText(summary, contentWidth))

	parts := []string{title, source, "", body}
	if showImage {
		parts = append(parts, "", itemTimeStyle.Render(imageLine(story.ImageURL)))
	}
	parts = append(parts, "", previewLinkStyle.Width(contentWidth).Render("Read more: "+story.URL))
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	// Apply scroll offset
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func imageLine(url string) string {
	return "[image] " + url
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
