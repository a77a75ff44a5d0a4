package docmirror

import (
	"regexp"
	"strings"
)

// Section is a heading in a markdown document.
type Section struct {
	Level int
	Title string
}

var (
	headingPattern   = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	codeBlockPattern = regexp.MustCompile("(?s)```.*?```")
)

// ExtractSections returns the headings of a markdown document in order.
// Fenced code blocks are stripped first so a "# comment" inside a code
// sample is not mistaken for a heading.
func ExtractSections(markdown string) []Section {
	if markdown == "" {
		return nil
	}

	cleaned := codeBlockPattern.ReplaceAllString(markdown, "")

	matches := headingPattern.FindAllStringSubmatch(cleaned, -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make([]Section, 0, len(matches))
	for _, m := range matches {
		sections = append(sections, Section{
			Level: len(m[1]),
			Title: strings.TrimSpace(m[2]),
		})
	}
	return sections
}
