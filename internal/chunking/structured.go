package chunking

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// section is a header plus the body lines up to the next header.
type section struct {
	// header is the heading text without the # marker.
	header string

	// level is the heading depth (1-6), 0 for preamble.
	level int

	// path is the heading-stack path, e.g. "Install > Linux".
	path string

	// headerLine is the original markdown line.
	headerLine string

	// body is the section text after the header line.
	body string
}

// structuredPieces splits a document at markdown header boundaries.
// Sections that fit within oversizeFactor of the chunk size become one
// chunk each with the header embedded; larger sections are recursively
// split with the text strategy and numbered "(Part i/n)".
func (e *Engine) structuredPieces(content string) []piece {
	sections := splitSections(content)
	if len(sections) == 0 {
		return e.textPieces(content)
	}

	limit := int(float64(e.chunkSize) * oversizeFactor)
	var pieces []piece

	for _, sec := range sections {
		full := sec.body
		if sec.headerLine != "" {
			full = sec.headerLine + "\n\n" + sec.body
		}
		full = strings.TrimSpace(full)
		if full == "" {
			continue
		}

		if len(full) <= limit {
			pieces = append(pieces, piece{
				content:      full,
				sectionPath:  sec.path,
				headingLevel: sec.level,
				typ:          domain.ChunkTypeStructured,
			})
			continue
		}

		sub := e.textPieces(sec.body)
		for i, sp := range sub {
			content := sp.content
			if sec.header != "" {
				content = fmt.Sprintf("%s (Part %d/%d)\n\n%s", sec.header, i+1, len(sub), sp.content)
			}
			pieces = append(pieces, piece{
				content:      content,
				sectionPath:  sec.path,
				headingLevel: sec.level,
				typ:          domain.ChunkTypeStructured,
			})
		}
	}

	if len(pieces) == 0 {
		return e.textPieces(content)
	}
	return pieces
}

// splitSections cuts the document at header lines, tracking the heading
// stack so each section knows its full path. Text before the first
// header becomes a level-0 preamble section. Returns nil when the
// document has no headers at all.
func splitSections(content string) []section {
	lines := strings.Split(content, "\n")

	var sections []section
	var stack [6]string
	current := section{}
	var body []string
	sawHeader := false

	closeCurrent := func() {
		current.body = strings.TrimSpace(strings.Join(body, "\n"))
		if current.headerLine != "" || current.body != "" {
			sections = append(sections, current)
		}
		body = nil
	}

	for _, line := range lines {
		level, title := parseHeader(line)
		if level == 0 {
			body = append(body, line)
			continue
		}
		sawHeader = true
		closeCurrent()

		stack[level-1] = title
		for i := level; i < len(stack); i++ {
			stack[i] = ""
		}

		current = section{
			header:     title,
			level:      level,
			path:       joinStack(stack),
			headerLine: strings.TrimSpace(line),
		}
	}
	closeCurrent()

	if !sawHeader {
		return nil
	}
	return sections
}

// parseHeader returns the heading level and title of a markdown header
// line, or (0, "") for any other line.
func parseHeader(line string) (int, string) {
	trimmed := strings.TrimSpace(line)
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(trimmed) {
		return 0, ""
	}
	if trimmed[level] != ' ' && trimmed[level] != '\t' {
		return 0, ""
	}
	title := strings.TrimSpace(trimmed[level:])
	if title == "" {
		return 0, ""
	}
	return level, title
}

// joinStack joins the non-empty heading-stack entries into a path.
func joinStack(stack [6]string) string {
	var parts []string
	for _, h := range stack {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " > ")
}
