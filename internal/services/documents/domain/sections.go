package domain

import "strings"

const maxHeaderLevel = 6

// Section is one markdown header found in a document body.
type Section struct {
	Level int
	Title string
}

// ExtractSections finds markdown headers by line prefix, `#` through
// `######`. A header needs a space after the marker and a non-empty title.
func ExtractSections(body string) []Section {
	var sections []Section
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		level := 0
		for level < len(line) && line[level] == '#' {
			level++
		}
		if level > maxHeaderLevel || level >= len(line) || line[level] != ' ' {
			continue
		}
		title := strings.TrimSpace(line[level+1:])
		if title == "" {
			continue
		}
		sections = append(sections, Section{Level: level, Title: title})
	}
	return sections
}
