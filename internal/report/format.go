package report

import (
	"strings"
	"unicode"
)

const summaryLimit = 200

// Section is one heading-delimited block of a formatted report.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Content is the structured view of a raw model response. Details always
// holds the untouched raw text so no formatting quirk loses information.
type Content struct {
	Summary  string    `json:"summary"`
	Details  string    `json:"details"`
	Sections []Section `json:"sections"`
}

// FormatContent splits a raw model response into heading-delimited sections.
// Separator lines are skipped, headings with no usable title do not open a
// section, and text before the first heading stays only in Details. When
// sections exist the summary is drawn from the first section's body. The raw
// input is preserved verbatim in Details.
func FormatContent(raw string) Content {
	out := Content{Details: raw}
	var current *Section
	var body []string
	flush := func() {
		if current != nil {
			current.Content = strings.Join(body, "\n")
			out.Sections = append(out.Sections, *current)
		}
		body = nil
	}
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if isSeparator(trimmed) {
			continue
		}
		if isHeading(trimmed) {
			title := headingTitle(trimmed)
			if title == "" || isSeparator(title) {
				continue
			}
			flush()
			current = &Section{Title: title}
			continue
		}
		if current != nil && trimmed != "" {
			body = append(body, trimmed)
		}
	}
	flush()
	if len(out.Sections) > 0 {
		out.Summary = summarize(out.Sections[0].Content)
	} else {
		out.Summary = summarize(raw)
	}
	return out
}

// isSeparator matches horizontal-rule lines of three or more dashes.
func isSeparator(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		if r != '-' {
			return false
		}
	}
	return true
}

func summarize(raw string) string {
	text := strings.TrimSpace(raw)
	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}
	return string(runes[:summaryLimit]) + "..."
}

// isHeading recognizes the three heading styles models produce: bold lines,
// markdown headings, and short all-caps lines.
func isHeading(line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4 {
		return true
	}
	if strings.HasPrefix(line, "#") {
		return true
	}
	if len(line) < 50 && line == strings.ToUpper(line) {
		for _, r := range line {
			if unicode.IsLetter(r) {
				return true
			}
		}
	}
	return false
}

func headingTitle(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#")
	line = strings.Trim(line, "*")
	line = strings.TrimSuffix(strings.TrimSpace(line), ":")
	return strings.TrimSpace(line)
}
