package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/algobros/terminal-backend/pkg/enums"
)

// Trade is an immutable journal entry. Only Status may change after insert,
// and only once, from PENDING to an outcome.
type Trade struct {
	ID          uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID   uuid.UUID            `gorm:"column:profile_id;type:uuid;not null;index:idx_trades_profile_id"`
	Pair        string               `gorm:"column:pair;not null"`
	Direction   enums.TradeDirection `gorm:"column:direction;type:text;not null"`
	Entry       decimal.Decimal      `gorm:"column:entry;type:numeric(20,8);not null"`
	StopLoss    *decimal.Decimal     `gorm:"column:stop_loss;type:numeric(20,8)"`
	TakeProfit  *decimal.Decimal     `gorm:"column:take_profit;type:numeric(20,8)"`
	RiskReward  *decimal.Decimal     `gorm:"column:risk_reward;type:numeric(10,4)"`
	Notes       string               `gorm:"column:notes;not null;default:''"`
	ConceptTags pq.StringArray       `gorm:"column:concept_tags;type:text[];default:ARRAY[]::text[]"`
	Status      enums.TradeStatus    `gorm:"column:status;type:text;not null;default:'PENDING'"`
	ResolvedAt  *time.Time           `gorm:"column:resolved_at"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
