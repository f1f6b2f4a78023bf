package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/service"
)

// CashierHandler exposes the table-side money flows.
type CashierHandler struct {
	cashier *service.CashierService
}

// NewCashierHandler creates a CashierHandler.
func NewCashierHandler(cashier *service.CashierService) *CashierHandler {
	return &CashierHandler{cashier: cashier}
}

// urlID parses a UUID path parameter.
func urlID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid " + name)
	}
	return id, nil
}

// operator reads the operator name recorded in the audit trail.
func operator(r *http.Request) string {
	return r.Header.Get("X-Operator")
}

type buyInRequest struct {
	SessionID  uuid.UUID    `json:"session_id"`
	TableID    uuid.UUID    `json:"table_id"`
	PlayerID   uuid.UUID    `json:"player_id"`
	PlayerName string       `json:"player_name"`
	Amount     domain.Cents `json:"amount"`
	Method     string       `json:"method"`
	IsBonus    bool         `json:"is_bonus"`
}

// RecordBuyIn handles POST /buy-ins.
func (h *CashierHandler) RecordBuyIn(w http.ResponseWriter, r *http.Request) {
	var req buyInRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.cashier.RecordBuyIn(r.Context(), domain.BuyInParams{
		SessionID:  req.SessionID,
		TableID:    req.TableID,
		PlayerID:   req.PlayerID,
		PlayerName: req.PlayerName,
		Amount:     req.Amount,
		Method:     domain.PaymentMethod(req.Method),
		IsBonus:    req.IsBonus,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

type cashOutRequest struct {
	SessionID   uuid.UUID    `json:"session_id"`
	TableID     uuid.UUID    `json:"table_id"`
	PlayerID    uuid.UUID    `json:"player_id"`
	ChipValue   domain.Cents `json:"chip_value"`
	Method      string       `json:"method"`
	DebtPayment domain.Cents `json:"debt_payment"`
}

// RecordCashOut handles POST /cash-outs.
func (h *CashierHandler) RecordCashOut(w http.ResponseWriter, r *http.Request) {
	var req cashOutRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.cashier.RecordCashOut(r.Context(), domain.CashOutParams{
		SessionID:   req.SessionID,
		TableID:     req.TableID,
		PlayerID:    req.PlayerID,
		ChipValue:   req.ChipValue,
		Method:      domain.PaymentMethod(req.Method),
		DebtPayment: req.DebtPayment,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

type rakeRequest struct {
	SessionID uuid.UUID    `json:"session_id"`
	TableID   uuid.UUID    `json:"table_id"`
	Amount    domain.Cents `json:"amount"`
	Notes     string       `json:"notes"`
}

// RecordRake handles POST /rake.
func (h *CashierHandler) RecordRake(w http.ResponseWriter, r *http.Request) {
	var req rakeRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	rake, err := h.cashier.RecordRake(r.Context(), domain.RecordRakeParams{
		SessionID: req.SessionID,
		TableID:   req.TableID,
		Amount:    req.Amount,
		Notes:     req.Notes,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, rake)
}

type tipRequest struct {
	SessionID uuid.UUID    `json:"session_id"`
	DealerID  uuid.UUID    `json:"dealer_id"`
	Amount    domain.Cents `json:"amount"`
}

// RecordDealerTip handles POST /dealer-tips.
func (h *CashierHandler) RecordDealerTip(w http.ResponseWriter, r *http.Request) {
	var req tipRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	tip, dealer, err := h.cashier.RecordDealerTip(r.Context(), domain.RecordTipParams{
		SessionID: req.SessionID,
		DealerID:  req.DealerID,
		Amount:    req.Amount,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"tip":    tip,
		"dealer": dealer,
	})
}

// RecordDealerPayout handles POST /dealer-payouts.
func (h *CashierHandler) RecordDealerPayout(w http.ResponseWriter, r *http.Request) {
	var req tipRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	payout, err := h.cashier.RecordDealerPayout(r.Context(), domain.RecordPayoutParams{
		SessionID: req.SessionID,
		DealerID:  req.DealerID,
		Amount:    req.Amount,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, payout)
}

// DealerOwed handles GET /dealers/{dealerID}/owed.
func (h *CashierHandler) DealerOwed(w http.ResponseWriter, r *http.Request) {
	dealerID, err := urlID(r, "dealerID")
	if err != nil {
		RespondError(w, err)
		return
	}

	owed, err := h.cashier.DealerOwed(r.Context(), dealerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]domain.Cents{"owed": owed})
}

// ActiveSessions handles GET /tables/{tableID}/active.
func (h *CashierHandler) ActiveSessions(w http.ResponseWriter, r *http.Request) {
	tableID, err := urlID(r, "tableID")
	if err != nil {
		RespondError(w, err)
		return
	}

	sessions, err := h.cashier.ActiveSessions(r.Context(), tableID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sessions)
}

// DeleteBuyIn handles DELETE /buy-ins/{id}.
func (h *CashierHandler) DeleteBuyIn(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, h.cashier.DeleteBuyIn)
}

// DeleteCashOut handles DELETE /cash-outs/{id}.
func (h *CashierHandler) DeleteCashOut(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, h.cashier.DeleteCashOut)
}

// DeleteDealerTip handles DELETE /dealer-tips/{id}.
func (h *CashierHandler) DeleteDealerTip(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, h.cashier.DeleteDealerTip)
}

// DeleteRakeEntry handles DELETE /rake/{id}.
func (h *CashierHandler) DeleteRakeEntry(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, h.cashier.DeleteRakeEntry)
}

func (h *CashierHandler) deleteRecord(w http.ResponseWriter, r *http.Request,
	del func(ctx context.Context, params domain.DeleteRecordParams) (*domain.ReversalResult, error),
) {
	id, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := del(r.Context(), domain.DeleteRecordParams{ID: id, Operator: operator(r)})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// Undo handles POST /audit/{id}/undo.
func (h *CashierHandler) Undo(w http.ResponseWriter, r *http.Request) {
	auditID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.cashier.Undo(r.Context(), auditID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// AuditLog handles GET /audit.
func (h *CashierHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.cashier.AuditLog(r.Context(), limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, entries)
}
