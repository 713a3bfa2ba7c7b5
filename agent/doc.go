// Package agent adapts language models into the orchestrator's agent
// contract. NewModelAgent wraps a model.Model in a decision function running
// a bounded reason/act tool loop; NewModelSelector wraps one in a selection
// function for multi-candidate routing. The orchestrator core never sees a
// vendor SDK, only the resulting descriptors.
package agent
