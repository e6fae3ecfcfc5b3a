package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// groundingInstruction directs the model to stay within the supplied
// context rather than free-associating.
const groundingInstruction = `You are a helpful assistant. Answer the question using only the provided context. If the context does not contain enough information to answer, say so plainly instead of guessing.`

// plainInstruction is used when no retrieved context is available.
const plainInstruction = `You are a helpful assistant. Answer the question concisely.`

// PromptComposer assembles augmented prompts from retrieved chunks and
// chat history. It is pure: no I/O, deterministic output for the same
// inputs.
type PromptComposer struct{}

// NewPromptComposer creates a prompt composer.
func NewPromptComposer() *PromptComposer {
	return &PromptComposer{}
}

// Compose builds the prompt: grounding instruction, one labelled block
// per chunk, the recent history as User/Assistant lines, and the
// literal query last. With no chunks it degrades to a plain
// question-with-history prompt.
func (c *PromptComposer) Compose(query string, chunks []domain.ScoredChunk, history []domain.ChatTurn) string {
	var b strings.Builder

	if len(chunks) == 0 {
		b.WriteString(plainInstruction)
		b.WriteString("\n\n")
	} else {
		b.WriteString(groundingInstruction)
		b.WriteString("\n\nContext:\n")
		for _, sc := range chunks {
			fmt.Fprintf(&b, "\n--- Source: %s", sc.Chunk.Source)
			if sc.Chunk.SectionPath != "" {
				fmt.Fprintf(&b, " | Section: %s", sc.Chunk.SectionPath)
			}
			fmt.Fprintf(&b, " ---\n%s\n", sc.Chunk.Content)
		}
		b.WriteString("\n")
	}

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", turn.Query, turn.Response)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s", query)
	return b.String()
}
