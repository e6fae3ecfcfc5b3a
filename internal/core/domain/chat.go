package domain

// DefaultHistoryCap bounds the number of retained chat turns.
const DefaultHistoryCap = 50

// ChatTurn records one completed exchange with the model.
type ChatTurn struct {
	// Query is the user's question.
	Query string

	// Response is the model's answer.
	Response string

	// UsedRAG is true when retrieved context augmented the prompt.
	UsedRAG bool

	// SourceChunkIDs lists the chunk IDs cited, in rank order.
	SourceChunkIDs []string
}

// History is a bounded ring of chat turns. The oldest turn is evicted
// once the cap is reached. The zero value is not usable; construct with
// NewHistory.
type History struct {
	turns []ChatTurn
	cap   int
}

// NewHistory creates a history bounded to the given number of turns.
// A non-positive cap falls back to DefaultHistoryCap.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{cap: capacity}
}

// Add appends a turn, evicting the oldest past the cap.
func (h *History) Add(turn ChatTurn) {
	h.turns = append(h.turns, turn)
	if len(h.turns) > h.cap {
		h.turns = h.turns[len(h.turns)-h.cap:]
	}
}

// Recent returns up to n most recent turns, oldest first.
func (h *History) Recent(n int) []ChatTurn {
	if n <= 0 || len(h.turns) == 0 {
		return nil
	}
	if n > len(h.turns) {
		n = len(h.turns)
	}
	out := make([]ChatTurn, n)
	copy(out, h.turns[len(h.turns)-n:])
	return out
}

// Len returns the number of retained turns.
func (h *History) Len() int {
	return len(h.turns)
}
