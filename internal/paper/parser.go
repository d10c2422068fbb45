// Package paper reads research papers in Markdown or plain text and splits
// them into named sections with character offsets into the full text.
package paper

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
	numberPrefix   = regexp.MustCompile(`^\d+(\.\d+)*\.?\s*`)
	nonWord        = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// Aliases collapsing common section titles onto canonical names.
var sectionAliases = map[string]string{
	"methods":              "method",
	"methodology":          "method",
	"approach":             "method",
	"experiments":          "experiments",
	"experimental setup":   "experiments",
	"evaluation":           "results",
	"results":              "results",
	"related work":         "related_work",
	"background":           "background",
	"conclusion":           "conclusion",
	"conclusions":          "conclusion",
	"discussion":           "discussion",
	"introduction":         "introduction",
	"abstract":             "abstract",
	"limitations":          "limitations",
	"broader impact":       "broader_impact",
	"acknowledgements":     "acknowledgements",
	"acknowledgments":      "acknowledgements",
	"references":           "references",
	"appendix":             "appendix",
	"supplementary material": "appendix",
}

// Load reads and parses the paper at path
func Load(path string) (*types.PaperContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read paper %s: %w", path, err)
	}
	content := Parse(string(data))
	content.SourcePath = path
	return content, nil
}

// Parse splits full text into sections keyed by canonical section name.
// Markdown headings delimit sections; text before the first heading (or the
// whole document when no headings exist) becomes the "body" section. Offsets
// index into FullText so source spans stay resolvable.
func Parse(fullText string) *types.PaperContent {
	content := &types.PaperContent{
		FullText: fullText,
		Sections: make(map[string]types.PaperSection),
	}

	type boundary struct {
		name  string
		start int
	}
	var boundaries []boundary

	offset := 0
	for _, line := range strings.SplitAfter(fullText, "\n") {
		if m := headingPattern.FindStringSubmatch(strings.TrimRight(line, "\n")); m != nil {
			boundaries = append(boundaries, boundary{name: CanonicalName(m[2]), start: offset})
		}
		offset += len(line)
	}

	if len(boundaries) == 0 {
		if strings.TrimSpace(fullText) != "" {
			content.Sections["body"] = types.PaperSection{
				Name:  "body",
				Text:  fullText,
				Start: 0,
				End:   len(fullText),
			}
		}
		return content
	}

	if boundaries[0].start > 0 {
		preamble := fullText[:boundaries[0].start]
		if strings.TrimSpace(preamble) != "" {
			content.Sections["body"] = types.PaperSection{
				Name:  "body",
				Text:  preamble,
				Start: 0,
				End:   boundaries[0].start,
			}
		}
	}

	for i, b := range boundaries {
		end := len(fullText)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].start
		}
		// Later sections of the same name win; papers occasionally repeat
		// heading titles in appendices.
		content.Sections[b.name] = types.PaperSection{
			Name:  b.name,
			Text:  fullText[b.start:end],
			Start: b.start,
			End:   end,
		}
	}
	return content
}

// CanonicalName normalizes a heading title to a canonical section name
func CanonicalName(title string) string {
	name := strings.ToLower(strings.TrimSpace(title))
	name = numberPrefix.ReplaceAllString(name, "")
	name = nonWord.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if alias, ok := sectionAliases[name]; ok {
		return alias
	}
	return strings.ReplaceAll(name, " ", "_")
}

// Resolve returns the section text covered by a source span, or an empty
// string when the span does not resolve against this paper.
func Resolve(content *types.PaperContent, span types.SourceSpan) string {
	section, ok := content.Sections[span.Section]
	if !ok {
		return ""
	}
	start := span.Start
	end := span.End
	if start < section.Start || end > section.End || start >= end {
		return ""
	}
	return content.FullText[start:end]
}
