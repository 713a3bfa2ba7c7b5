package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/model"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/tool"
)

// TerminateSuffix ends a reply when the agent considers its task complete.
// It is stripped from the user-visible text and mapped to a relinquish
// transition.
const TerminateSuffix = "TERMINATE"

const defaultMaxToolRounds = 8

// Options configures a model-backed agent.
type Options struct {
	// Instruction is the system prompt, rendered against the state snapshot.
	Instruction Instruction
	// Tools are exposed to the model as callable functions. They must also
	// be registered with the invoker serving the session.
	Tools []tool.Tool
	// Eligible gates this agent's candidacy per turn. Defaults to always.
	Eligible func(core.Snapshot) bool
	// MaxToolRounds bounds the reason/act loop within a single turn.
	MaxToolRounds int
	// MaxHistoryMessages caps conversation history sent to the model.
	MaxHistoryMessages int
}

// NewModelAgent builds an AgentDescriptor whose decision function drives a
// language model through a bounded reason/act loop: the model replies with
// text, tool uses, or both; tool uses within one round run concurrently and
// their results are fed back until the model produces a plain reply. A reply
// ending in TerminateSuffix relinquishes the conversation.
func NewModelAgent(name, description string, llm model.Model, optFns ...func(o *Options)) core.AgentDescriptor {
	opts := Options{
		Instruction:        NewInstructionFromText(fmt.Sprintf("You are %s, a helpful assistant.", name)),
		Eligible:           func(core.Snapshot) bool { return true },
		MaxToolRounds:      defaultMaxToolRounds,
		MaxHistoryMessages: 20,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	defs := make([]model.ToolDefinition, len(opts.Tools))
	for i, t := range opts.Tools {
		defs[i] = model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}

	return core.AgentDescriptor{
		Name:        name,
		Description: description,
		Eligible:    opts.Eligible,
		Decide: func(ctx context.Context, turn *core.Turn) (*core.Decision, error) {
			return decide(ctx, llm, defs, &opts, turn)
		},
	}
}

func decide(ctx context.Context, llm model.Model, defs []model.ToolDefinition, opts *Options, turn *core.Turn) (*core.Decision, error) {
	system, err := opts.Instruction.Resolve(turn.State)
	if err != nil {
		return nil, fmt.Errorf("resolve instruction: %w", err)
	}

	msgs := historyToMessages(turn.History, opts.MaxHistoryMessages)
	issued := 0

	for round := 0; round < opts.MaxToolRounds; round++ {
		resp, err := llm.Complete(ctx, model.Request{System: system, Messages: msgs, Tools: defs})
		if err != nil {
			return nil, fmt.Errorf("model completion: %w", err)
		}
		if len(resp.ToolUses) == 0 {
			reply, relinquish := splitTerminate(resp.Text)
			return &core.Decision{Reply: reply, Relinquish: relinquish, ToolCallsIssued: issued}, nil
		}

		results := runToolUses(ctx, turn, resp.ToolUses)
		issued += len(resp.ToolUses)
		msgs = append(msgs,
			model.Message{Role: model.RoleAssistant, Text: resp.Text, ToolUses: resp.ToolUses},
			model.Message{Role: model.RoleUser, ToolResults: results},
		)
	}

	// Round budget exhausted; force a plain reply from what was gathered.
	resp, err := llm.Complete(ctx, model.Request{System: system, Messages: msgs})
	if err != nil {
		return nil, fmt.Errorf("model completion: %w", err)
	}
	reply, relinquish := splitTerminate(resp.Text)
	return &core.Decision{Reply: reply, Relinquish: relinquish, ToolCallsIssued: issued}, nil
}

// runToolUses dispatches the model's tool uses concurrently. The shared
// state's serialized mutation path keeps parallel writes consistent, and the
// runner records every call in the session audit log.
func runToolUses(ctx context.Context, turn *core.Turn, uses []model.ToolUse) []model.ToolResult {
	results := make([]model.ToolResult, len(uses))
	var wg sync.WaitGroup
	for i, use := range uses {
		wg.Add(1)
		go func(i int, use model.ToolUse) {
			defer wg.Done()
			record := turn.Tools.Invoke(ctx, use.Name, use.Args)
			results[i] = toResult(use.ID, record)
		}(i, use)
	}
	wg.Wait()
	return results
}

func toResult(id string, record core.ToolCall) model.ToolResult {
	if record.Failed() {
		return model.ToolResult{
			ID:      id,
			Content: fmt.Sprintf("%s: %s", record.Failure.Code, record.Failure.Message),
			IsError: true,
		}
	}
	content, err := json.Marshal(record.Value)
	if err != nil {
		content = []byte(fmt.Sprintf("%v", record.Value))
	}
	return model.ToolResult{ID: id, Content: string(content)}
}

func historyToMessages(history []core.Message, limit int) []model.Message {
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	msgs := make([]model.Message, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case core.RoleUser:
			msgs = append(msgs, model.Message{Role: model.RoleUser, Text: m.Content})
		case core.RoleAgent:
			msgs = append(msgs, model.Message{Role: model.RoleAssistant, Text: m.Content})
		}
	}
	return msgs
}

// splitTerminate strips a trailing TerminateSuffix from the reply and
// reports whether it was present.
func splitTerminate(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasSuffix(trimmed, TerminateSuffix) {
		return trimmed, false
	}
	reply := strings.TrimSpace(strings.TrimSuffix(trimmed, TerminateSuffix))
	return reply, true
}
