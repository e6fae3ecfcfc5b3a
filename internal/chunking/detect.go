package chunking

import "regexp"

// Strategy identifies the splitter selected for a document.
type Strategy string

// Available strategies, in sniffing priority order.
const (
	// StrategyCode splits on fenced code blocks and brace-scoped
	// definitions.
	StrategyCode Strategy = "code"

	// StrategyStructured splits at markdown header boundaries.
	StrategyStructured Strategy = "structured"

	// StrategyText splits on blank-line-delimited paragraphs.
	StrategyText Strategy = "text"
)

// String returns the string representation.
func (s Strategy) String() string {
	return string(s)
}

var (
	// fencedRe matches the opening of a fenced code block.
	fencedRe = regexp.MustCompile("(?m)^```")

	// definitionRe matches class/function-like declarations that open
	// a brace scope on the same line.
	definitionRe = regexp.MustCompile(`(?m)^[ \t]*(?:func|function|fn|def|class|struct|interface|impl|enum|trait|public|private|protected|static)\b[^\n{]*\{`)

	// headerRe matches markdown-style header lines.
	headerRe = regexp.MustCompile(`(?m)^#{1,6}[ \t]+.+$`)
)

// Classify inspects the whole document once and selects a strategy.
// Code markers win over headers, headers over plain text.
func Classify(content string) Strategy {
	if fencedRe.MatchString(content) || definitionRe.MatchString(content) {
		return StrategyCode
	}
	if headerRe.MatchString(content) {
		return StrategyStructured
	}
	return StrategyText
}
