package api

import (
	"net/http"
	"strconv"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/hierarchy"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/orchestrator"
	"github.com/starford/ansuz/internal/state"
	"github.com/starford/ansuz/internal/vault"
)

// Handler serves the engine observation endpoints.
type Handler struct {
	orch  *orchestrator.Orchestrator
	store state.Store
	vault vault.Provider
	// excluded mirrors the engine's excluded folder prefixes so the
	// documents listing matches what the engine actually sees.
	excluded []string
}

// NewHandler creates a Handler.
func NewHandler(orch *orchestrator.Orchestrator, store state.Store, v vault.Provider, excluded []string) *Handler {
	return &Handler{orch: orch, store: store, vault: v, excluded: excluded}
}

// Status returns engine health and the most recent cycle.
// GET /status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.orch.Status()
	resp := StatusResponse{
		Running:          st.Running,
		LastSuccess:      st.LastSuccess,
		ConsecutiveFails: st.ConsecutiveFails,
		Fingerprint:      st.Fingerprint,
	}
	if h.store != nil {
		if cycles, err := h.store.RecentCycles(1); err == nil && len(cycles) > 0 {
			resp.LastCycle = &cycles[0]
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cycles returns the cycle journal, newest first.
// GET /cycles?limit=N
func (h *Handler) Cycles(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be between 1 and 500"))
			return
		}
		limit = n
	}
	cycles, err := h.store.RecentCycles(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	if cycles == nil {
		cycles = []models.CycleRecord{}
	}
	writeJSON(w, http.StatusOK, CyclesResponse{Cycles: cycles})
}

// Tree returns the tag hierarchy from the most recent scan.
// GET /tree
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	schema := h.orch.Snapshot()
	if schema == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no scan completed yet"))
		return
	}
	writeJSON(w, http.StatusOK, TreeResponse{
		Root:        buildTreeNode(schema.Root),
		Descriptors: len(schema.Descriptors),
	})
}

// Update triggers an update cycle, or reports a dry run with ?dry_run=true.
// POST /update
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("dry_run") == "true" {
		changed, total, err := h.orch.Preview(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, UpdateResponse{DryRun: true, Changed: changed, Total: total})
		return
	}
	h.orch.TriggerUpdate()
	writeJSON(w, http.StatusAccepted, UpdateResponse{Triggered: true})
}

// Documents lists the vault documents the engine scans, each annotated with
// its content checksum. A document that vanishes mid-listing keeps an empty
// checksum rather than failing the response.
// GET /documents
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	docs, err := h.vault.List(h.excluded)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	if docs == nil {
		docs = []models.DocRef{}
	}
	for i := range docs {
		if raw, err := h.vault.Read(docs[i].Path); err == nil {
			docs[i].Checksum = checksum.Sum([]byte(raw))
		}
	}
	writeJSON(w, http.StatusOK, DocumentsResponse{Documents: docs, Total: len(docs)})
}

func buildTreeNode(n *hierarchy.Node) TreeNode {
	out := TreeNode{
		Path:          n.Path,
		Heading:       n.Heading(),
		Header:        n.Header,
		Priority:      n.Priority,
		Regular:       n.Regular,
		Index:         n.Index,
		IndexPriority: n.IndexPriority,
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, buildTreeNode(c))
	}
	return out
}
