package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/ledger"
	"github.com/greenfelt/cardroom/internal/projection"
	"github.com/greenfelt/cardroom/internal/repository"
	"github.com/greenfelt/cardroom/internal/repository/memory"
	"github.com/greenfelt/cardroom/internal/service"
)

// --- RespondJSON Tests ---

func TestRespondJSON(t *testing.T) {
	t.Run("200 with body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("204 with nil body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusNoContent, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

// --- RespondError Tests ---

func TestRespondError(t *testing.T) {
	t.Run("AppError maps to correct status", func(t *testing.T) {
		tests := []struct {
			err        *domain.AppError
			wantStatus int
			wantCode   string
		}{
			{domain.ErrNotFound("player", "123"), 404, "NOT_FOUND"},
			{domain.ErrValidation("bad input"), 400, "VALIDATION_ERROR"},
			{domain.ErrConflict("duplicate"), 409, "CONFLICT"},
			{domain.ErrSessionClosed("s1"), 409, "SESSION_CLOSED"},
			{domain.ErrLimitExceeded(0, 100, 200), 422, "LIMIT_EXCEEDED"},
			{domain.ErrOverpaymentRejected(200, 100), 422, "OVERPAYMENT_REJECTED"},
			{domain.ErrExcessPayment(200, 100), 422, "EXCESS_PAYMENT"},
			{domain.ErrNotUndoable("session_deleted"), 422, "NOT_UNDOABLE"},
			{domain.ErrIncompleteSnapshot("amount"), 422, "INCOMPLETE_SNAPSHOT"},
			{domain.ErrInternal("oops", nil), 500, "INTERNAL_ERROR"},
		}

		for _, tt := range tests {
			t.Run(tt.wantCode, func(t *testing.T) {
				w := httptest.NewRecorder()
				RespondError(w, tt.err)
				assert.Equal(t, tt.wantStatus, w.Code)

				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.wantCode, body["code"])
			})
		}
	})

	t.Run("generic error returns 500 without leaking details", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondError(w, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	})
}

// --- DecodeJSON Tests ---

func TestDecodeJSON(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"joao"}`))
		var dst struct {
			Name string `json:"name"`
		}
		require.NoError(t, DecodeJSON(r, &dst))
		assert.Equal(t, "joao", dst.Name)
	})

	t.Run("invalid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
		var dst map[string]string
		assert.Error(t, DecodeJSON(r, &dst))
	})
}

// --- Route Tests (chi + in-memory store) ---

type testEnv struct {
	t      *testing.T
	store  *memory.Store
	router chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	store := memory.New()
	engine := ledger.NewEngine()
	cache := projection.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cashier := service.NewCashierService(store, engine, cache, logger, time.Second)
	h := NewCashierHandler(cashier)

	r := chi.NewRouter()
	r.Post("/buy-ins", h.RecordBuyIn)
	r.Delete("/buy-ins/{id}", h.DeleteBuyIn)
	r.Post("/audit/{id}/undo", h.Undo)
	r.Get("/tables/{tableID}/active", h.ActiveSessions)

	return &testEnv{t: t, store: store, router: r}
}

func (e *testEnv) seed() (session *domain.CashSession, table *domain.PokerTable, player *domain.Player) {
	e.t.Helper()
	ctx := context.Background()
	session = &domain.CashSession{ID: uuid.New(), Name: "caixa 1", SessionDate: time.Now().UTC(), IsOpen: true}
	table = &domain.PokerTable{ID: uuid.New(), SessionID: session.ID, Name: "mesa 1", IsActive: true}
	player = &domain.Player{ID: uuid.New(), Name: "joao", CreditLimit: 50000, IsActive: true}
	require.NoError(e.t, e.store.WithinTx(ctx, func(tx repository.Tx) error {
		if err := tx.Sessions().Create(ctx, session); err != nil {
			return err
		}
		if err := tx.Tables().Create(ctx, table); err != nil {
			return err
		}
		return tx.Players().Create(ctx, player)
	}))
	return session, table, player
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("X-Operator", "maria")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRecordBuyInRoute(t *testing.T) {
	env := newTestEnv(t)
	session, table, player := env.seed()

	w := env.do(http.MethodPost, "/buy-ins", map[string]interface{}{
		"session_id": session.ID,
		"table_id":   table.ID,
		"player_id":  player.ID,
		"amount":     10000,
		"method":     "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var result domain.BuyInResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, domain.Cents(10000), result.BuyIn.Amount)

	// And the player now shows up as seated.
	w = env.do(http.MethodGet, "/tables/"+table.ID.String()+"/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active []map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&active))
	require.Len(t, active, 1)
	assert.Equal(t, player.ID.String(), active[0]["player_id"])
}

func TestRecordBuyInRoute_Rejections(t *testing.T) {
	env := newTestEnv(t)
	session, table, player := env.seed()

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/buy-ins", strings.NewReader("{"))
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		w := env.do(http.MethodPost, "/buy-ins", map[string]interface{}{
			"session_id": uuid.New(),
			"table_id":   table.ID,
			"player_id":  player.ID,
			"amount":     10000,
			"method":     "cash",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("fiado over the limit", func(t *testing.T) {
		w := env.do(http.MethodPost, "/buy-ins", map[string]interface{}{
			"session_id": session.ID,
			"table_id":   table.ID,
			"player_id":  player.ID,
			"amount":     60000,
			"method":     "credit_fiado",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "LIMIT_EXCEEDED", body["code"])
	})
}

func TestDeleteAndUndoRoute(t *testing.T) {
	env := newTestEnv(t)
	session, table, player := env.seed()

	w := env.do(http.MethodPost, "/buy-ins", map[string]interface{}{
		"session_id": session.ID,
		"table_id":   table.ID,
		"player_id":  player.ID,
		"amount":     10000,
		"method":     "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.BuyInResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	w = env.do(http.MethodDelete, "/buy-ins/"+created.BuyIn.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rev domain.ReversalResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rev))
	assert.Equal(t, "maria", rev.AuditEntry.Operator)

	w = env.do(http.MethodPost, "/audit/"+rev.AuditEntry.ID.String()+"/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Single use: the second undo finds nothing.
	w = env.do(http.MethodPost, "/audit/"+rev.AuditEntry.ID.String()+"/undo", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("bad uuid in path", func(t *testing.T) {
		w := env.do(http.MethodDelete, "/buy-ins/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
