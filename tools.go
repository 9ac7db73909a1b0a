//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// mockgen is invoked through the go:generate directives of the repository
// and service interfaces. Importing it here keeps it pinned in go.mod.
package chat_room

import (
	_ "go.uber.org/mock/mockgen"
)
