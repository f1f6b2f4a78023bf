package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/service"
)

// CreditHandler exposes the fiado ledger.
type CreditHandler struct {
	credit *service.CreditService
}

// NewCreditHandler creates a CreditHandler.
func NewCreditHandler(credit *service.CreditService) *CreditHandler {
	return &CreditHandler{credit: credit}
}

type grantCreditRequest struct {
	PlayerID uuid.UUID    `json:"player_id"`
	Amount   domain.Cents `json:"amount"`
}

// GrantCredit handles POST /credits.
func (h *CreditHandler) GrantCredit(w http.ResponseWriter, r *http.Request) {
	var req grantCreditRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	record, player, err := h.credit.GrantCredit(r.Context(), domain.GrantCreditParams{
		PlayerID: req.PlayerID,
		Amount:   req.Amount,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"record": record,
		"player": player,
	})
}

type paymentRequest struct {
	Amount    domain.Cents `json:"amount"`
	Method    string       `json:"method"`
	SessionID *uuid.UUID   `json:"session_id,omitempty"`
}

// ReceivePayment handles POST /credits/{id}/payments.
func (h *CreditHandler) ReceivePayment(w http.ResponseWriter, r *http.Request) {
	recordID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req paymentRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.credit.ReceivePayment(r.Context(), domain.ReceivePaymentParams{
		CreditRecordID: recordID,
		Amount:         req.Amount,
		Method:         domain.PaymentMethod(req.Method),
		SessionID:      req.SessionID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

// PayAcrossRecords handles POST /players/{playerID}/payments.
func (h *CreditHandler) PayAcrossRecords(w http.ResponseWriter, r *http.Request) {
	playerID, err := urlID(r, "playerID")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req paymentRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.credit.PayAcrossRecords(r.Context(), domain.PayAcrossRecordsParams{
		PlayerID:  playerID,
		Amount:    req.Amount,
		Method:    domain.PaymentMethod(req.Method),
		SessionID: req.SessionID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

// ListDebts handles GET /players/{playerID}/debts.
func (h *CreditHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	playerID, err := urlID(r, "playerID")
	if err != nil {
		RespondError(w, err)
		return
	}

	debts, err := h.credit.ListDebts(r.Context(), playerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, debts)
}

// ListReceipts handles GET /credits/{id}/receipts.
func (h *CreditHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	recordID, err := urlID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	receipts, err := h.credit.ListReceipts(r.Context(), recordID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, receipts)
}

// RecomputeBalance handles POST /players/{playerID}/recompute-balance.
func (h *CreditHandler) RecomputeBalance(w http.ResponseWriter, r *http.Request) {
	playerID, err := urlID(r, "playerID")
	if err != nil {
		RespondError(w, err)
		return
	}

	player, err := h.credit.RecomputeBalance(r.Context(), playerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, player)
}
