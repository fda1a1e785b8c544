// Package service defines the domain types and the interfaces the
// presentation layers use for task operations.
package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task represents a single persisted to-do item.
type Task struct {
	ID          uuid.UUID
	Title       *string // nil when absent
	Description *string // nil when absent, "" when present but empty
	IsCompleted bool
	CreatedAt   time.Time
}

// TitleText returns the title, or "" when absent.
func (t Task) TitleText() string {
	if t.Title == nil {
		return ""
	}
	return *t.Title
}

// DescriptionText returns the description, or "" when absent.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// HasTitle reports whether the title is present and not blank.
func (t Task) HasTitle() bool {
	return t.Title != nil && strings.TrimSpace(*t.Title) != ""
}

// SeedRecord is a remote task payload used for the one-time initial import.
type SeedRecord struct {
	ID        int64
	Body      string
	Completed bool
	OwnerID   int64
}

// Status is the reconciler's bootstrap state.
type Status int

const (
	StatusUnknown Status = iota
	StatusCheckingLocal
	StatusImportingRemote
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusCheckingLocal:
		return "checking-local"
	case StatusImportingRemote:
		return "importing-remote"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
