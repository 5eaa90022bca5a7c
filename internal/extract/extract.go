// Package extract turns local files into pages of plain text ready for
// chunking. Markdown is simplified to plain text; everything else is
// treated as plain text. A form feed in the input starts a new page, so
// pre-paginated exports keep their page numbers.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

// Result is the extracted text of one file.
type Result struct {
	// Title is the best title guess: the first markdown H1 when
	// present, otherwise the cleaned filename.
	Title string

	// Pages is the page-split text, 1-based.
	Pages []domain.Page
}

// File reads and extracts one local file.
func File(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	content := string(raw)
	title := ""

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		title = markdownTitle(content)
		content = stripMarkdown(content)
	}

	if title == "" {
		title = titleFromFilename(path)
	}

	pages := splitPages(content)
	if len(pages) == 0 {
		return nil, fmt.Errorf("extracting %s: %w", path, domain.ErrNoText)
	}

	return &Result{Title: title, Pages: pages}, nil
}

// splitPages splits on form feeds, keeping original page numbers for
// blank pages so citations point at the right place.
func splitPages(content string) []domain.Page {
	var pages []domain.Page
	for i, text := range strings.Split(content, "\f") {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: i + 1, Text: strings.TrimSpace(text)})
	}
	return pages
}

// markdownTitle returns the first H1 heading, if any.
func markdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

// titleFromFilename cleans the base name into a readable title.
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

var (
	codeBlockRe    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCodeRe   = regexp.MustCompile("`[^`]+`")
	imageRe        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkRe         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingRe      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquoteRe   = regexp.MustCompile(`(?m)^>\s*`)
	hrRe           = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkerRe   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedListRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown simplifies common markdown formatting to plain text.
func stripMarkdown(content string) string {
	content = codeBlockRe.ReplaceAllString(content, "")
	content = inlineCodeRe.ReplaceAllString(content, "")
	content = imageRe.ReplaceAllString(content, "")
	content = linkRe.ReplaceAllString(content, "$1")
	content = headingRe.ReplaceAllString(content, "")
	content = blockquoteRe.ReplaceAllString(content, "")
	content = hrRe.ReplaceAllString(content, "")
	content = listMarkerRe.ReplaceAllString(content, "")
	content = numberedListRe.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")

	content = multiNewlineRe.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
