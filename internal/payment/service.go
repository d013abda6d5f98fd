package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/algobros/terminal-backend/internal/profile"
	"github.com/algobros/terminal-backend/pkg/config"
	dbpkg "github.com/algobros/terminal-backend/pkg/db"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
	"github.com/algobros/terminal-backend/pkg/metrics"
	"github.com/algobros/terminal-backend/pkg/outbox"
	"github.com/algobros/terminal-backend/pkg/outbox/payloads"
	"github.com/algobros/terminal-backend/pkg/tronscan"
)

const (
	adminExpiryYears = 50
	gift24hDuration  = 24 * time.Hour
	monthlyDays      = 30
	yearlyDays       = 365
)

// TronLookup is the ledger explorer surface the verifier depends on.
type TronLookup interface {
	GetTransaction(ctx context.Context, hash string) (*tronscan.TransactionInfo, error)
}

// VerifyInput is the user-entered activation request.
type VerifyInput struct {
	Code   string
	Intent enums.Plan
}

// Verification is a successful classification of an activation input.
type Verification struct {
	Plan          enums.Plan
	ExpiresAt     time.Time
	IsAdmin       bool
	TransactionID string
	Amount        decimal.Decimal
}

// Service classifies activation codes and applies verified payments.
type Service struct {
	cfg        config.PaymentConfig
	db         *dbpkg.Client
	repo       *profile.Repository
	normalizer *profile.Normalizer
	tron       TronLookup
	events     *outbox.Service
	stats      *metrics.PaymentMetrics
	logg       *logger.Logger

	adminCodes   map[string]struct{}
	minAmount    decimal.Decimal
	yearlyAmount decimal.Decimal
	now          func() time.Time
}

// NewService wires the payment verifier.
func NewService(
	cfg config.PaymentConfig,
	db *dbpkg.Client,
	repo *profile.Repository,
	normalizer *profile.Normalizer,
	tron TronLookup,
	events *outbox.Service,
	stats *metrics.PaymentMetrics,
	logg *logger.Logger,
) (*Service, error) {
	minAmount, err := decimal.NewFromString(cfg.MinAmount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing minimum payment amount")
	}
	yearlyAmount, err := decimal.NewFromString(cfg.YearlyAmount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing yearly payment amount")
	}

	codes := make(map[string]struct{}, len(cfg.AdminCodes))
	for _, code := range cfg.AdminCodes {
		codes[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
	}

	return &Service{
		cfg:          cfg,
		db:           db,
		repo:         repo,
		normalizer:   normalizer,
		tron:         tron,
		events:       events,
		stats:        stats,
		logg:         logg,
		adminCodes:   codes,
		minAmount:    minAmount,
		yearlyAmount: yearlyAmount,
		now:          time.Now,
	}, nil
}

// WithClock overrides the time source; tests use this.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Verify classifies the input against the override codes, gift prefixes and
// the on-chain ledger. First match wins; every failure is typed and leaves
// the profile untouched.
func (s *Service) Verify(ctx context.Context, user *profile.Canonical, input VerifyInput) (*Verification, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "a signed-in user is required")
	}

	trimmed := strings.TrimSpace(input.Code)
	normalized := strings.ToUpper(trimmed)
	now := s.now().UTC()

	if _, ok := s.adminCodes[normalized]; ok || s.isOperator(user.Email) {
		s.record("admin")
		return &Verification{
			Plan:          enums.PlanAdmin,
			ExpiresAt:     now.AddDate(adminExpiryYears, 0, 0),
			IsAdmin:       true,
			TransactionID: normalized,
		}, nil
	}

	if prefix := strings.ToUpper(s.cfg.Gift24hPrefix); prefix != "" && strings.HasPrefix(normalized, prefix) {
		s.record("gift_24h")
		return &Verification{
			Plan:          enums.PlanGift24h,
			ExpiresAt:     now.Add(gift24hDuration),
			TransactionID: normalized,
		}, nil
	}

	if prefix := strings.ToUpper(s.cfg.GiftPrefix); prefix != "" && strings.HasPrefix(normalized, prefix) {
		s.record("gift")
		return &Verification{
			Plan:          enums.PlanGift,
			ExpiresAt:     now.AddDate(0, 0, monthlyDays),
			TransactionID: normalized,
		}, nil
	}

	if len(normalized) < s.cfg.MinCodeLength {
		s.record("invalid_format")
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCodeFormat, "that doesn't look like a valid code or transaction id")
	}

	return s.verifyOnChain(ctx, trimmed)
}

// verifyOnChain resolves the input as a transaction hash. The plan follows
// the transferred amount, not the selected intent, and the ledger timestamp
// becomes the subscription reference date.
func (s *Service) verifyOnChain(ctx context.Context, hash string) (*Verification, error) {
	tx, err := s.tron.GetTransaction(ctx, hash)
	if err != nil {
		if errors.Is(err, tronscan.ErrTransactionNotFound) {
			s.record("not_found")
			return nil, pkgerrors.New(pkgerrors.CodeTransactionNotFound, "transaction not found; it may still be confirming")
		}
		s.record("lookup_error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up transaction")
	}

	transfer, ok := s.matchTransfer(tx)
	if !ok {
		s.record("not_found")
		return nil, pkgerrors.New(pkgerrors.CodeTransactionNotFound, "no matching transfer to the receiving address")
	}

	if transfer.Amount.LessThan(s.minAmount) {
		s.record("insufficient")
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientAmount, "transferred amount is below the subscription price")
	}

	reference := tx.Timestamp
	verification := &Verification{
		TransactionID: tx.Hash,
		Amount:        transfer.Amount,
	}
	if transfer.Amount.GreaterThanOrEqual(s.yearlyAmount) {
		verification.Plan = enums.PlanYearly
		verification.ExpiresAt = reference.AddDate(0, 0, yearlyDays)
	} else {
		verification.Plan = enums.PlanMonthly
		verification.ExpiresAt = reference.AddDate(0, 0, monthlyDays)
	}

	s.record("paid")
	return verification, nil
}

func (s *Service) matchTransfer(tx *tronscan.TransactionInfo) (tronscan.Transfer, bool) {
	for _, transfer := range tx.Transfers {
		if transfer.ToAddress != s.cfg.ReceivingAddress {
			continue
		}
		if !strings.EqualFold(transfer.Symbol, s.cfg.TokenSymbol) {
			continue
		}
		return transfer, true
	}
	return tronscan.Transfer{}, false
}

// Activate applies a verification to the user's profile in one transaction
// and queues the payment.activated event with it. Nothing mutates if the
// transaction fails.
func (s *Service) Activate(ctx context.Context, user *profile.Canonical, v *Verification) error {
	if user == nil || v == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "activation requires a user and a verification")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.ApplyActivationTx(tx, user.ID, profile.ActivationDTO{
			Plan:        v.Plan,
			ExpiresAt:   v.ExpiresAt,
			PaymentTxID: v.TransactionID,
		}); err != nil {
			return err
		}

		amount := ""
		if !v.Amount.IsZero() {
			amount = v.Amount.String()
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentActivated,
			AggregateType: enums.AggregateProfile,
			AggregateID:   user.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID},
			Version:       1,
			Data: payloads.PaymentActivatedEvent{
				ProfileID:        user.ID,
				Email:            user.Email,
				FirstName:        user.FirstName,
				Plan:             v.Plan,
				ExpiresAt:        v.ExpiresAt,
				TransactionID:    v.TransactionID,
				Amount:           amount,
				WelcomeEmailSent: user.WelcomeEmailSent,
				IsOperator:       s.isOperator(user.Email),
			},
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "applying activation")
	}

	s.stats.IncActivation(v.Plan.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"profile_id": user.ID.String(),
		"plan":       v.Plan.String(),
	}), "subscription activated")
	return nil
}

// VerifyAndActivate runs the full flow for the API handler.
func (s *Service) VerifyAndActivate(ctx context.Context, user *profile.Canonical, input VerifyInput) (*Verification, error) {
	verification, err := s.Verify(ctx, user, input)
	if err != nil {
		return nil, err
	}
	// The ledger amount decides the plan; the selected intent only informs
	// the UI. A mismatch usually means the user picked yearly but paid the
	// monthly price, so keep a trace of it.
	if input.Intent.IsValid() && input.Intent != verification.Plan && !verification.Amount.IsZero() {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"intent":  input.Intent.String(),
			"granted": verification.Plan.String(),
		}), "plan intent differs from granted plan")
	}
	if err := s.Activate(ctx, user, verification); err != nil {
		return nil, err
	}
	return verification, nil
}

// ReloadCanonical refetches the canonical profile after activation.
func (s *Service) ReloadCanonical(ctx context.Context, userID uuid.UUID) (*profile.Canonical, error) {
	row, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading profile")
	}
	return s.normalizer.FromModel(row), nil
}

func (s *Service) isOperator(email string) bool {
	// Exact match on purpose; existing operator records depend on it.
	return s.cfg.OperatorEmail != "" && email == s.cfg.OperatorEmail
}

func (s *Service) record(outcome string) {
	s.stats.IncVerification(outcome)
}
