//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// They are installed with `go install` or run through `go run` and are not tracked in go.mod.
package tools

// Development tools:
//
// mockgen - regenerates internal/mocks from the ports in internal/core
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock/mockgen@v0.6.0
//
// Air - live reload for cmd/enrichd
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
