// Package models defines the domain types for Ansuz.
package models

import "time"

// DocRef is a handle to one Markdown document in the vault. The engine holds
// references to it in tree nodes and descriptors; content stays in the vault.
type DocRef struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Title    string    `json:"title,omitempty"`
	Checksum string    `json:"checksum,omitempty"`
	ModTime  time.Time `json:"mod_time"`
}

// Cycle statuses recorded in the journal.
const (
	CycleSuccess = "success"
	CycleSkipped = "skipped"
	CyclePartial = "partial"
	CycleFailed  = "failed"
)

// CycleRecord is the journal entry for one update cycle.
type CycleRecord struct {
	ID          int64     `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Fingerprint int32     `json:"fingerprint"`
	DocsWritten int       `json:"docs_written"`
	DocsFailed  int       `json:"docs_failed"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}
