// Package extract finds method definitions in comment-stripped source text.
package extract

import (
	"regexp"
	"strings"

	"github.com/panbanda/deadmethods/pkg/models"
)

// defPattern matches the def keyword and the defined identifier. A
// "self." receiver is skipped so singleton methods report their own name.
var defPattern = regexp.MustCompile(`(?m)(?:^|[^\w.:])def\s+(?:self\s*\.\s*)?(\w+)`)

// Definitions returns every method name defined in already-stripped content,
// in source order. File is left empty; callers attach it.
func Definitions(content string) []models.MethodDefinition {
	matches := defPattern.FindAllStringSubmatchIndex(content, -1)
	defs := make([]models.MethodDefinition, 0, len(matches))

	line, pos := 1, 0
	for i, m := range matches {
		nameStart, nameEnd := m[2], m[3]
		line += strings.Count(content[pos:nameStart], "\n")
		pos = nameStart
		defs = append(defs, models.MethodDefinition{
			Name:    content[nameStart:nameEnd],
			Line:    line,
			Ordinal: i,
		})
	}
	return defs
}

// FromStripped extracts from content that has already been stripped.
func FromStripped(path, stripped string) []models.MethodDefinition {
	defs := Definitions(stripped)
	for i := range defs {
		defs[i].File = path
	}
	return defs
}
