package api

import (
	"time"

	"github.com/starford/ansuz/internal/models"
)

// StatusResponse reports the engine's current health.
type StatusResponse struct {
	Running          bool      `json:"running"`
	LastSuccess      time.Time `json:"last_success"`
	ConsecutiveFails int       `json:"consecutive_failures"`
	Fingerprint      int32     `json:"fingerprint"`
	LastCycle        *models.CycleRecord `json:"last_cycle,omitempty"`
}

// CyclesResponse wraps the cycle journal, newest first.
type CyclesResponse struct {
	Cycles []models.CycleRecord `json:"cycles"`
}

// TreeNode is one node of the tag hierarchy in the tree response.
type TreeNode struct {
	Path          string          `json:"path"`
	Heading       string          `json:"heading"`
	Header        *models.DocRef  `json:"header,omitempty"`
	Priority      []models.DocRef `json:"priority,omitempty"`
	Regular       []models.DocRef `json:"regular,omitempty"`
	Index         []models.DocRef `json:"index,omitempty"`
	IndexPriority []models.DocRef `json:"index_priority,omitempty"`
	Children      []TreeNode      `json:"children,omitempty"`
}

// TreeResponse wraps the tag hierarchy of the last scan.
type TreeResponse struct {
	Root        TreeNode `json:"root"`
	Descriptors int      `json:"descriptors"`
}

// UpdateResponse acknowledges a triggered update or reports a dry run.
type UpdateResponse struct {
	Triggered bool `json:"triggered"`
	DryRun    bool `json:"dry_run"`
	Changed   int  `json:"changed,omitempty"`
	Total     int  `json:"total,omitempty"`
}

// DocumentsResponse lists the vault documents visible to the engine.
type DocumentsResponse struct {
	Documents []models.DocRef `json:"documents"`
	Total     int             `json:"total"`
}
