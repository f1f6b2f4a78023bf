package handler

import (
	"net/http"
	"time"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/service"
)

// SessionHandler exposes the cash-session lifecycle and reconciliation reads.
type SessionHandler struct {
	sessions *service.SessionsService
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions *service.SessionsService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type openSessionRequest struct {
	Name             string               `json:"name"`
	Responsible      string               `json:"responsible"`
	Date             *time.Time           `json:"date,omitempty"`
	InitialInventory domain.ChipInventory `json:"initial_inventory,omitempty"`
}

// OpenSession handles POST /sessions.
func (h *SessionHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	params := domain.OpenSessionParams{
		Name:             req.Name,
		Responsible:      req.Responsible,
		InitialInventory: req.InitialInventory,
	}
	if req.Date != nil {
		params.Date = *req.Date
	}

	result, err := h.sessions.OpenSession(r.Context(), params)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

type closeSessionRequest struct {
	FinalInventory domain.ChipInventory `json:"final_inventory,omitempty"`
	Notes          string               `json:"notes"`
}

// CloseSession handles POST /sessions/{id}/close.
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req closeSessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, summary, err := h.sessions.CloseSession(r.Context(), domain.CloseSessionParams{
		SessionID:      sessionID,
		FinalInventory: req.FinalInventory,
		Notes:          req.Notes,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"session": result.Session,
		"summary": summary,
	})
}

// ReopenSession handles POST /sessions/{id}/reopen.
func (h *SessionHandler) ReopenSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.sessions.ReopenSession(r.Context(), sessionID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// DeleteSession handles DELETE /sessions/{id}.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.sessions.DeleteSession(r.Context(), domain.DeleteRecordParams{
		ID:       sessionID,
		Operator: operator(r),
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// GetSession handles GET /sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, session)
}

// ListSessions handles GET /sessions.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListSessions(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sessions)
}

// Summary handles GET /sessions/{id}/summary.
func (h *SessionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sessionID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	summary, err := h.sessions.Summary(r.Context(), sessionID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, summary)
}

// RangeSummary handles GET /reports/summary?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *SessionHandler) RangeSummary(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid from date, expected YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid to date, expected YYYY-MM-DD"))
		return
	}
	if to.Before(from) {
		RespondError(w, domain.ErrValidation("to date precedes from date"))
		return
	}

	summary, err := h.sessions.RangeSummary(r.Context(), from, to)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, summary)
}

type createTableRequest struct {
	Name string `json:"name"`
}

// CreateTable handles POST /sessions/{id}/tables.
func (h *SessionHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	sessionID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req createTableRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	table, err := h.sessions.CreateTable(r.Context(), sessionID, req.Name)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, table)
}

// ListTables handles GET /sessions/{id}/tables.
func (h *SessionHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	sessionID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	tables, err := h.sessions.ListTables(r.Context(), sessionID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, tables)
}

// DeleteTable handles DELETE /tables/{id}.
func (h *SessionHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	tableID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.sessions.DeleteTable(r.Context(), domain.DeleteRecordParams{
		ID:       tableID,
		Operator: operator(r),
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

type inventoryRequest struct {
	Inventory domain.ChipInventory `json:"inventory"`
}

// InventoryValue handles POST /chip-inventory/value.
func (h *SessionHandler) InventoryValue(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	value, err := h.sessions.InventoryValue(r.Context(), req.Inventory)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]domain.Cents{"value": value})
}
