package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/algobros/terminal-backend/api/responses"
	"github.com/algobros/terminal-backend/api/validators"
	"github.com/algobros/terminal-backend/internal/trades"
	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
)

type tradeService interface {
	Create(ctx context.Context, dto trades.CreateTradeDTO) (*models.Trade, error)
	List(ctx context.Context, profileID uuid.UUID) ([]models.Trade, error)
	Resolve(ctx context.Context, profileID, tradeID uuid.UUID, status enums.TradeStatus) (*models.Trade, error)
}

type createTradeRequest struct {
	Pair        string           `json:"pair" validate:"required"`
	Direction   string           `json:"direction" validate:"required"`
	Entry       decimal.Decimal  `json:"entry"`
	StopLoss    *decimal.Decimal `json:"stop_loss"`
	TakeProfit  *decimal.Decimal `json:"take_profit"`
	RiskReward  *decimal.Decimal `json:"risk_reward"`
	Notes       string           `json:"notes"`
	ConceptTags []string         `json:"concept_tags"`
}

func (r createTradeRequest) toInput(profileID uuid.UUID) (trades.CreateTradeDTO, error) {
	direction, err := enums.ParseTradeDirection(strings.TrimSpace(r.Direction))
	if err != nil {
		return trades.CreateTradeDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "direction must be LONG or SHORT")
	}
	if r.Entry.IsZero() {
		return trades.CreateTradeDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "entry is required")
	}

	return trades.CreateTradeDTO{
		ProfileID:   profileID,
		Pair:        strings.ToUpper(strings.TrimSpace(r.Pair)),
		Direction:   direction,
		Entry:       r.Entry,
		StopLoss:    r.StopLoss,
		TakeProfit:  r.TakeProfit,
		RiskReward:  r.RiskReward,
		Notes:       strings.TrimSpace(r.Notes),
		ConceptTags: r.ConceptTags,
	}, nil
}

// TradeCreate records a new journal entry for the caller.
func TradeCreate(svc tradeService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trade service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createTradeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, trades.FromModel(created))
	}
}

// TradeList returns the caller's journal, newest first.
func TradeList(svc tradeService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trade service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, trades.FromModels(rows))
	}
}

type resolveTradeRequest struct {
	Status string `json:"status" validate:"required"`
}

// TradeResolve closes a pending trade with its outcome.
func TradeResolve(svc tradeService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trade service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tradeID, err := uuid.Parse(chi.URLParam(r, "tradeID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trade id"))
			return
		}

		var payload resolveTradeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseTradeStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "status must be WIN, LOSS or BE"))
			return
		}

		resolved, err := svc.Resolve(r.Context(), userID, tradeID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, trades.FromModel(resolved))
	}
}
