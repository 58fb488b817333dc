//go:build tools

// Package tools pins the mockery binary used to regenerate
// pkg/topology/mocks so `go mod tidy` doesn't drop it as unused. Run:
// mockery (from the repo root) to regenerate.
package tools

import (
	_ "github.com/vektra/mockery/v2"
)
