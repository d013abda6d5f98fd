package notifications

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/algobros/terminal-backend/pkg/config"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
	"github.com/algobros/terminal-backend/pkg/mailer"
	"github.com/algobros/terminal-backend/pkg/outbox/payloads"
)

type welcomeFlagStore interface {
	MarkWelcomeEmailSent(ctx context.Context, id uuid.UUID) error
}

// Service sends the activation emails. Both templates are fire-and-forget
// from the payment flow's perspective; they only ever run on the worker.
type Service struct {
	mail     mailer.Sender
	profiles welcomeFlagStore
	cfg      config.PaymentConfig
	logg     *logger.Logger
}

// NewService wires the notification service.
func NewService(mail mailer.Sender, profiles welcomeFlagStore, cfg config.PaymentConfig, logg *logger.Logger) (*Service, error) {
	if mail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mailer required")
	}
	if profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile store required")
	}
	return &Service{
		mail:     mail,
		profiles: profiles,
		cfg:      cfg,
		logg:     logg,
	}, nil
}

// HandlePaymentActivated sends the welcome strategy email at most once per
// profile and alerts the operator of the sale. Each mail failure is
// collected; a partial failure still attempts the rest.
func (s *Service) HandlePaymentActivated(ctx context.Context, event payloads.PaymentActivatedEvent) error {
	var errs error

	if !event.WelcomeEmailSent {
		msg := welcomeEmail(event.Email, event.FirstName, event.Plan, event.ExpiresAt)
		if err := s.mail.Send(ctx, msg); err != nil {
			errs = multierr.Append(errs, err)
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"profile_id": event.ProfileID.String(),
				"error":      err.Error(),
			}), "welcome email failed")
		} else {
			if err := s.profiles.MarkWelcomeEmailSent(ctx, event.ProfileID); err != nil {
				errs = multierr.Append(errs, err)
			}
			s.logg.Info(s.logg.WithField(ctx, "profile_id", event.ProfileID.String()), "welcome email sent")
		}
	}

	// The operator buying through an override code is not a sale.
	if !event.IsOperator && s.cfg.OperatorEmail != "" {
		msg := saleAlertEmail(s.cfg.OperatorEmail, event.Email, event.Plan, event.Amount, event.TransactionID)
		if err := s.mail.Send(ctx, msg); err != nil {
			// Best effort only; never retried through the event.
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"profile_id": event.ProfileID.String(),
				"error":      err.Error(),
			}), "sale alert failed")
		}
	}

	return errs
}
