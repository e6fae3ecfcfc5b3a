package chunking

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// paragraphRe splits content on blank lines.
var paragraphRe = regexp.MustCompile(`\n[ \t]*\n+`)

// textPieces accumulates blank-line-delimited paragraphs into chunks of
// roughly chunkSize characters. When a paragraph would overflow a
// non-empty buffer, the buffer is closed and the next chunk is seeded
// with the tail of the closed one for continuity.
func (e *Engine) textPieces(content string) []piece {
	var pieces []piece
	var buf strings.Builder

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			pieces = append(pieces, piece{content: text, typ: domain.ChunkTypeText})
		}
		buf.Reset()
	}

	for _, para := range splitParagraphs(content) {
		if buf.Len() > 0 && buf.Len()+len(para)+2 > e.chunkSize {
			closed := strings.TrimSpace(buf.String())
			flush()
			buf.WriteString(overlapTail(closed, e.overlap))
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
	}
	flush()

	return pieces
}

// splitParagraphs returns the non-blank paragraphs of content.
func splitParagraphs(content string) []string {
	raw := paragraphRe.Split(content, -1)
	paras := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}
