package agent

import (
	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from the state snapshot.
type Provider interface {
	Instruction(core.Snapshot) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(core.Snapshot) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(snap core.Snapshot) (string, error) { return f(snap) }

// Instruction represents either a static instruction string or a dynamic
// provider. Static text is treated as a template rendered against the state
// snapshot: {{.state.<key>}} expands to that key's data map.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(core.Snapshot) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text for the given snapshot.
func (i Instruction) Resolve(snap core.Snapshot) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(snap)
	}
	return util.RenderTemplate(i.text, templateData(snap))
}

func templateData(snap core.Snapshot) map[string]any {
	state := make(map[string]any)
	for _, key := range snap.Keys() {
		if v, ok := snap.Get(key); ok {
			state[key] = v.Data
		}
	}
	return map[string]any{
		"state":   state,
		"version": snap.Version(),
	}
}
