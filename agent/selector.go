package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/model"
)

const selectorSystemPrompt = `You are routing a traveler's conversation to one of several specialist assistants.
Read the candidates and the recent conversation, then answer with exactly one candidate name and nothing else.`

// NewModelSelector builds a SelectionFunc that asks a language model to pick
// the next conversation owner among the eligible candidates. The returned
// name is validated by the orchestrator; anything outside the candidate set
// falls back to the first-registered candidate.
func NewModelSelector(llm model.Model) core.SelectionFunc {
	return func(ctx context.Context, candidates []core.AgentDescriptor, state core.Snapshot, history []core.Message) (string, error) {
		resp, err := llm.Complete(ctx, model.Request{
			System:   selectorSystemPrompt,
			Messages: []model.Message{{Role: model.RoleUser, Text: selectorPrompt(candidates, state, history)}},
		})
		if err != nil {
			return "", fmt.Errorf("selection completion: %w", err)
		}
		choice := strings.TrimSpace(resp.Text)
		for _, c := range candidates {
			if strings.EqualFold(choice, c.Name) {
				return c.Name, nil
			}
		}
		return choice, nil
	}
}

func selectorPrompt(candidates []core.AgentDescriptor, state core.Snapshot, history []core.Message) string {
	var b strings.Builder
	b.WriteString("Candidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
	}
	if keys := state.Keys(); len(keys) > 0 {
		b.WriteString("\nKnown trip facts:\n")
		for _, key := range keys {
			if v, ok := state.Get(key); ok {
				fmt.Fprintf(&b, "- %s: %v\n", key, v.Data)
			}
		}
	}
	b.WriteString("\nRecent conversation:\n")
	start := 0
	if len(history) > 6 {
		start = len(history) - 6
	}
	for _, m := range history[start:] {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	b.WriteString("\nReply with exactly one candidate name.")
	return b.String()
}
