package handler

import (
	"net/http"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/service"
)

// DirectoryHandler exposes the club roster.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler creates a DirectoryHandler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

type createPlayerRequest struct {
	Name        string       `json:"name"`
	CreditLimit domain.Cents `json:"credit_limit"`
}

// CreatePlayer handles POST /players.
func (h *DirectoryHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	player, err := h.directory.CreatePlayer(r.Context(), req.Name, req.CreditLimit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, player)
}

// GetPlayer handles GET /players/{playerID}.
func (h *DirectoryHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := urlID(r, "playerID")
	if err != nil {
		RespondError(w, err)
		return
	}

	player, err := h.directory.GetPlayer(r.Context(), playerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, player)
}

// ListPlayers handles GET /players.
func (h *DirectoryHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.directory.ListPlayers(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, players)
}

// DeactivatePlayer handles DELETE /players/{playerID}.
func (h *DirectoryHandler) DeactivatePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := urlID(r, "playerID")
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.directory.DeactivatePlayer(r.Context(), playerID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

type createDealerRequest struct {
	Name string `json:"name"`
}

// CreateDealer handles POST /dealers.
func (h *DirectoryHandler) CreateDealer(w http.ResponseWriter, r *http.Request) {
	var req createDealerRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	dealer, err := h.directory.CreateDealer(r.Context(), req.Name)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, dealer)
}

// ListDealers handles GET /dealers.
func (h *DirectoryHandler) ListDealers(w http.ResponseWriter, r *http.Request) {
	dealers, err := h.directory.ListDealers(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, dealers)
}

type createChipTypeRequest struct {
	Name  string       `json:"name"`
	Value domain.Cents `json:"value"`
}

// CreateChipType handles POST /chip-types.
func (h *DirectoryHandler) CreateChipType(w http.ResponseWriter, r *http.Request) {
	var req createChipTypeRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	chipType, err := h.directory.CreateChipType(r.Context(), req.Name, req.Value)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, chipType)
}

// ListChipTypes handles GET /chip-types.
func (h *DirectoryHandler) ListChipTypes(w http.ResponseWriter, r *http.Request) {
	chipTypes, err := h.directory.ListChipTypes(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, chipTypes)
}
