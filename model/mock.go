package model

import (
	"context"
	"fmt"
	"sync"
)

// MockModel is a lightweight in-memory Model useful for tests and examples.
// Responses are consumed in the order they were scripted; once exhausted it
// echoes the last user message.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	scripted  []Response
	requests  []Request
	completed int
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{Name: name, Provider: "mock", SupportsTools: true},
	}
}

// Script queues a canned response to return on a future Complete call.
func (m *MockModel) Script(resp Response) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = append(m.scripted, resp)
	return m
}

// Requests returns the requests observed so far, in order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.completed < len(m.scripted) {
		resp := m.scripted[m.completed]
		m.completed++
		return &resp, nil
	}
	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser && req.Messages[i].Text != "" {
			last = req.Messages[i].Text
			break
		}
	}
	return &Response{Text: fmt.Sprintf("Mock response to: %s", last), StopReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
