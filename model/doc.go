// Package model defines the provider-agnostic abstractions for the language
// models that back agent decision functions.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Normalize tool use representation (ToolDefinition, ToolUse, ToolResult)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package in sub-packages so higher layers remain decoupled from vendor SDKs.
package model
