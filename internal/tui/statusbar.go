package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(storyCount int, tabLabel string, width int, hints string) string {
	left := fmt.Sprintf(" %d stories · %s", storyCount, tabLabel)
	return renderBottomBar(left, hints, width)
}

func renderBottomBar(left, hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
