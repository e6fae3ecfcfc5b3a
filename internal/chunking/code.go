package chunking

import (
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// codePieces extracts fenced code blocks and brace-scoped definitions
// as candidate chunks, chunking the prose between them with the text
// strategy. Oversized candidates are split at line boundaries, never
// mid-line and never with overlap, so code syntax survives intact.
func (e *Engine) codePieces(content string) []piece {
	lines := strings.Split(content, "\n")

	var pieces []piece
	var prose []string
	foundCode := false

	flushProse := func() {
		text := strings.TrimSpace(strings.Join(prose, "\n"))
		prose = nil
		if text != "" {
			pieces = append(pieces, e.textPieces(text)...)
		}
	}

	i := 0
	for i < len(lines) {
		switch {
		case strings.HasPrefix(strings.TrimSpace(lines[i]), "```"):
			end := findFenceEnd(lines, i+1)
			foundCode = true
			flushProse()
			pieces = append(pieces, e.codeBlock(strings.Join(lines[i:end+1], "\n"))...)
			i = end + 1

		case definitionRe.MatchString(lines[i]):
			end := findBraceEnd(lines, i)
			foundCode = true
			flushProse()
			pieces = append(pieces, e.codeBlock(strings.Join(lines[i:end+1], "\n"))...)
			i = end + 1

		default:
			prose = append(prose, lines[i])
			i++
		}
	}
	flushProse()

	if !foundCode {
		return e.textPieces(content)
	}
	return pieces
}

// codeBlock turns one candidate block into pieces, splitting by line
// when the block exceeds the oversize limit.
func (e *Engine) codeBlock(block string) []piece {
	block = strings.TrimRight(block, "\n")
	if strings.TrimSpace(block) == "" {
		return nil
	}

	limit := int(float64(e.chunkSize) * oversizeFactor)
	if len(block) <= limit {
		return []piece{{content: block, typ: domain.ChunkTypeCode}}
	}

	var pieces []piece
	var buf []string
	size := 0

	flush := func() {
		text := strings.TrimRight(strings.Join(buf, "\n"), "\n")
		buf = nil
		size = 0
		if strings.TrimSpace(text) != "" {
			pieces = append(pieces, piece{content: text, typ: domain.ChunkTypeCode})
		}
	}

	for _, line := range strings.Split(block, "\n") {
		if size > 0 && size+len(line)+1 > e.chunkSize {
			flush()
		}
		buf = append(buf, line)
		size += len(line) + 1
	}
	flush()

	return pieces
}

// findFenceEnd returns the index of the closing fence line, or the last
// line for an unterminated block.
func findFenceEnd(lines []string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			return i
		}
	}
	return len(lines) - 1
}

// findBraceEnd tracks brace depth from the opening line and returns the
// index of the line on which the scope closes, or the last line for an
// unbalanced scope.
func findBraceEnd(lines []string, from int) int {
	depth := 0
	opened := false
	for i := from; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i
		}
	}
	return len(lines) - 1
}
