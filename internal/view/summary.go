package view

// SummaryThreshold is the number of characters shown before a summary
// collapses behind "read more". Counted in runes, not words.
const SummaryThreshold = 160

// Summary is the collapsible summary text of one rendered story.
type Summary struct {
	full     string
	expanded bool
}

// NewSummary starts collapsed.
func NewSummary(text string) *Summary {
	return &Summary{full: text}
}

// Truncated reports whether the text is long enough to need a toggle.
func (s *Summary) Truncated() bool {
	return len([]rune(s.full)) > SummaryThreshold
}

// Expanded reports the toggle state.
func (s *Summary) Expanded() bool {
	return s.expanded
}

// Text is the text to display for the current toggle state.
func (s *Summary) Text() string {
	if s.expanded || !s.Truncated() {
		return s.full
	}
	return string([]rune(s.full)[:SummaryThreshold]) + "..."
}

// Full is the untruncated text.
func (s *Summary) Full() string {
	return s.full
}

// Toggle flips between collapsed and expanded. No-op for short text.
func (s *Summary) Toggle() {
	if !s.Truncated() {
		return
	}
	s.expanded = !s.expanded
}

// ToggleLabel is the caption of the toggle control.
func (s *Summary) ToggleLabel() string {
	if s.expanded {
		return "read less"
	}
	return "read more"
}
