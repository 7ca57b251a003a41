package versiontree

import (
	"errors"
	"fmt"
)

// Kind classifies why a record could not be placed.
type Kind string

const (
	// KindMalformedPath means the record's ancestry path could not be
	// resolved against the records in the tree. Ancestors that belong to a
	// different tree are reported this way too.
	KindMalformedPath Kind = "malformed_path"
	// KindDuplicateRecord means the record's id was already registered.
	KindDuplicateRecord Kind = "duplicate_record"
)

var (
	// ErrMalformedPath is wrapped by diagnostics of kind KindMalformedPath.
	ErrMalformedPath = errors.New("malformed path")
	// ErrDuplicateRecord is wrapped by diagnostics of kind KindDuplicateRecord.
	ErrDuplicateRecord = errors.New("duplicate record")
)

// Diagnostic describes a record that was skipped during a build.
type Diagnostic struct {
	RecordID string `json:"record_id" yaml:"record_id"`
	Position int    `json:"position" yaml:"position"` // index of the record in the build input
	Kind     Kind   `json:"kind" yaml:"kind"`
	Reason   string `json:"reason" yaml:"reason"`
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s (record %s at position %d)", d.Kind, d.Reason, d.RecordID, d.Position)
}

// Unwrap lets callers match diagnostics with errors.Is.
func (d Diagnostic) Unwrap() error {
	switch d.Kind {
	case KindDuplicateRecord:
		return ErrDuplicateRecord
	default:
		return ErrMalformedPath
	}
}
