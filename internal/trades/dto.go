package trades

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
)

// CreateTradeDTO captures a new journal entry. Trades are immutable after
// insert except for the one-shot status transition.
type CreateTradeDTO struct {
	ProfileID   uuid.UUID
	Pair        string
	Direction   enums.TradeDirection
	Entry       decimal.Decimal
	StopLoss    *decimal.Decimal
	TakeProfit  *decimal.Decimal
	RiskReward  *decimal.Decimal
	Notes       string
	ConceptTags []string
}

// TradeDTO is the wire shape of a journal entry.
type TradeDTO struct {
	ID          uuid.UUID            `json:"id"`
	Pair        string               `json:"pair"`
	Direction   enums.TradeDirection `json:"direction"`
	Entry       decimal.Decimal      `json:"entry"`
	StopLoss    *decimal.Decimal     `json:"stop_loss,omitempty"`
	TakeProfit  *decimal.Decimal     `json:"take_profit,omitempty"`
	RiskReward  *decimal.Decimal     `json:"risk_reward,omitempty"`
	Notes       string               `json:"notes,omitempty"`
	ConceptTags []string             `json:"concept_tags"`
	Status      enums.TradeStatus    `json:"status"`
	ResolvedAt  *time.Time           `json:"resolved_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// FromModel maps a persisted trade onto its wire shape.
func FromModel(m *models.Trade) TradeDTO {
	tags := []string(m.ConceptTags)
	if tags == nil {
		tags = []string{}
	}
	return TradeDTO{
		ID:          m.ID,
		Pair:        m.Pair,
		Direction:   m.Direction,
		Entry:       m.Entry,
		StopLoss:    m.StopLoss,
		TakeProfit:  m.TakeProfit,
		RiskReward:  m.RiskReward,
		Notes:       m.Notes,
		ConceptTags: tags,
		Status:      m.Status,
		ResolvedAt:  m.ResolvedAt,
		CreatedAt:   m.CreatedAt,
	}
}

// FromModels maps a slice, returning an empty slice rather than nil so the
// field serializes as [].
func FromModels(rows []models.Trade) []TradeDTO {
	out := make([]TradeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// ToModel builds the persisted row. Status always starts at PENDING.
func (d CreateTradeDTO) ToModel() *models.Trade {
	tags := d.ConceptTags
	if tags == nil {
		tags = []string{}
	}
	return &models.Trade{
		ProfileID:   d.ProfileID,
		Pair:        d.Pair,
		Direction:   d.Direction,
		Entry:       d.Entry,
		StopLoss:    d.StopLoss,
		TakeProfit:  d.TakeProfit,
		RiskReward:  d.RiskReward,
		Notes:       d.Notes,
		ConceptTags: tags,
		Status:      enums.TradePending,
	}
}
