package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/algobros/terminal-backend/api/middleware"
	"github.com/algobros/terminal-backend/internal/trades"
	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
)

type stubTradeService struct {
	created    *trades.CreateTradeDTO
	createErr  error
	rows       []models.Trade
	listErr    error
	resolved   *models.Trade
	resolveErr error

	resolveProfile uuid.UUID
	resolveTrade   uuid.UUID
	resolveStatus  enums.TradeStatus
}

func (s *stubTradeService) Create(_ context.Context, dto trades.CreateTradeDTO) (*models.Trade, error) {
	s.created = &dto
	if s.createErr != nil {
		return nil, s.createErr
	}
	return dto.ToModel(), nil
}

func (s *stubTradeService) List(_ context.Context, _ uuid.UUID) ([]models.Trade, error) {
	return s.rows, s.listErr
}

func (s *stubTradeService) Resolve(_ context.Context, profileID, tradeID uuid.UUID, status enums.TradeStatus) (*models.Trade, error) {
	s.resolveProfile = profileID
	s.resolveTrade = tradeID
	s.resolveStatus = status
	return s.resolved, s.resolveErr
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestTradeCreateSuccess(t *testing.T) {
	svc := &stubTradeService{}
	handler := TradeCreate(svc, nil)

	body := `{"pair":"eurusd","direction":"LONG","entry":1.0842,"stop_loss":1.08,"notes":" scalp ","concept_tags":["FVG"]}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/v1/trades", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.created == nil {
		t.Fatal("expected service call")
	}
	if svc.created.Pair != "EURUSD" {
		t.Fatalf("expected pair uppercased, got %q", svc.created.Pair)
	}
	if svc.created.Direction != enums.DirectionLong {
		t.Fatalf("unexpected direction %q", svc.created.Direction)
	}
	if !svc.created.Entry.Equal(decimal.RequireFromString("1.0842")) {
		t.Fatalf("unexpected entry %s", svc.created.Entry)
	}
	if svc.created.Notes != "scalp" {
		t.Fatalf("expected trimmed notes, got %q", svc.created.Notes)
	}
}

func TestTradeCreateRejectsBadDirection(t *testing.T) {
	handler := TradeCreate(&stubTradeService{}, nil)

	body := `{"pair":"EURUSD","direction":"SIDEWAYS","entry":1.1}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/v1/trades", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestTradeCreateRequiresEntry(t *testing.T) {
	handler := TradeCreate(&stubTradeService{}, nil)

	body := `{"pair":"EURUSD","direction":"SHORT"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/v1/trades", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestTradeCreateRequiresAuthContext(t *testing.T) {
	handler := TradeCreate(&stubTradeService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/trades", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestTradeListSuccess(t *testing.T) {
	svc := &stubTradeService{rows: []models.Trade{
		{ID: uuid.New(), Pair: "EURUSD", Status: enums.TradePending},
		{ID: uuid.New(), Pair: "XAUUSD", Status: enums.TradeWin},
	}}
	handler := TradeList(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/v1/trades", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []trades.TradeDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(envelope.Data))
	}
}

func TestTradeResolveSuccess(t *testing.T) {
	tradeID := uuid.New()
	svc := &stubTradeService{resolved: &models.Trade{ID: tradeID, Pair: "EURUSD", Status: enums.TradeWin}}

	router := chi.NewRouter()
	router.Patch("/v1/trades/{tradeID}/status", TradeResolve(svc, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(http.MethodPatch, "/v1/trades/"+tradeID.String()+"/status", `{"status":"WIN"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.resolveTrade != tradeID {
		t.Fatalf("unexpected trade id %s", svc.resolveTrade)
	}
	if svc.resolveStatus != enums.TradeWin {
		t.Fatalf("unexpected status %q", svc.resolveStatus)
	}
}

func TestTradeResolveRejectsUnknownStatus(t *testing.T) {
	router := chi.NewRouter()
	router.Patch("/v1/trades/{tradeID}/status", TradeResolve(&stubTradeService{}, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(http.MethodPatch, "/v1/trades/"+uuid.NewString()+"/status", `{"status":"MAYBE"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestTradeResolveConflictPassthrough(t *testing.T) {
	svc := &stubTradeService{resolveErr: pkgerrors.New(pkgerrors.CodeStateConflict, "trade is not pending")}

	router := chi.NewRouter()
	router.Patch("/v1/trades/{tradeID}/status", TradeResolve(svc, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(http.MethodPatch, "/v1/trades/"+uuid.NewString()+"/status", `{"status":"LOSS"}`))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
