package bot

import (
	"sync"

	"github.com/plexcord/plexcord/model"
)

// maxHistoryTurns bounds how much context one user can accumulate. Older
// turns slide off the front; the system prompt is re-applied on each ask.
const maxHistoryTurns = 20

// history keeps per-user conversation context between asks.
type history struct {
	mu    sync.Mutex
	turns map[string][]model.Turn
}

func newHistory() *history {
	return &history{turns: map[string][]model.Turn{}}
}

// conversation returns the system prompt, the user's recorded turns and the
// new question as one conversation.
func (h *history) conversation(userID, systemPrompt, question string) model.Conversation {
	h.mu.Lock()
	defer h.mu.Unlock()

	prior := h.turns[userID]
	conv := make(model.Conversation, 0, len(prior)+2)
	if systemPrompt != "" {
		conv = append(conv, model.Turn{Role: model.RoleSystem, Content: systemPrompt})
	}
	conv = append(conv, prior...)
	conv = append(conv, model.Turn{Role: model.RoleUser, Content: question})
	return conv
}

// record appends a question/answer pair, trimming to the bound.
func (h *history) record(userID, question, answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := append(h.turns[userID],
		model.Turn{Role: model.RoleUser, Content: question},
		model.Turn{Role: model.RoleAssistant, Content: answer},
	)
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	h.turns[userID] = turns
}

func (h *history) reset(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, userID)
}
