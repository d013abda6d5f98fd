package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/algobros/terminal-backend/internal/access"
	"github.com/algobros/terminal-backend/internal/knowledge"
	"github.com/algobros/terminal-backend/internal/profile"
	"github.com/algobros/terminal-backend/internal/trades"
	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
)

// View is the screen the client should render for a session snapshot.
type View string

const (
	ViewLanding View = "LANDING"
	ViewAuth    View = "AUTH"
	ViewPayment View = "PAYMENT"
	ViewMainApp View = "MAIN_APP"
)

// Snapshot is the fully resolved session state handed to the client.
type Snapshot struct {
	View      View                     `json:"view"`
	Access    enums.AccessState        `json:"access"`
	User      *profile.ProfileDTO      `json:"user"`
	Trades    []trades.TradeDTO        `json:"trades,omitempty"`
	Knowledge []knowledge.KnowledgeDTO `json:"knowledge,omitempty"`
}

type profileResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*profile.Canonical, error)
}

type tradeLister interface {
	List(ctx context.Context, profileID uuid.UUID) ([]models.Trade, error)
}

type knowledgeLister interface {
	List(ctx context.Context, profileID uuid.UUID) ([]models.KnowledgeItem, error)
}

// Controller resolves per-user session snapshots. A boolean per user guards
// reentrancy: a natural refresh that lands while one is already in flight is
// answered from the cached snapshot instead of starting a second evaluation.
// A forced refresh bypasses the guard, so overlapping evaluations are
// possible there; the later result simply overwrites the earlier one.
type Controller struct {
	profiles  profileResolver
	trades    tradeLister
	knowledge knowledgeLister
	grace     time.Duration
	logg      *logger.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]bool
	cache    map[uuid.UUID]*Snapshot

	now func() time.Time
}

// NewController wires the session controller.
func NewController(profiles profileResolver, trades tradeLister, knowledge knowledgeLister, grace time.Duration, logg *logger.Logger) *Controller {
	return &Controller{
		profiles:  profiles,
		trades:    trades,
		knowledge: knowledge,
		grace:     grace,
		logg:      logg,
		inFlight:  make(map[uuid.UUID]bool),
		cache:     make(map[uuid.UUID]*Snapshot),
		now:       time.Now,
	}
}

// WithClock overrides the time source; tests use this.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Refresh resolves the current snapshot for the user. With force unset, a
// refresh that collides with an in-flight one returns the last cached
// snapshot rather than evaluating twice.
func (c *Controller) Refresh(ctx context.Context, userID uuid.UUID, force bool) (*Snapshot, error) {
	c.mu.Lock()
	if c.inFlight[userID] && !force {
		cached := c.cache[userID]
		c.mu.Unlock()
		if cached != nil {
			return cached, nil
		}
		return &Snapshot{View: ViewLanding, Access: enums.AccessNone}, nil
	}
	c.inFlight[userID] = true
	c.mu.Unlock()

	snapshot, err := c.evaluate(ctx, userID)

	c.mu.Lock()
	c.inFlight[userID] = false
	if err == nil {
		// Last write wins when forced refreshes overlap.
		c.cache[userID] = snapshot
	}
	c.mu.Unlock()

	return snapshot, err
}

func (c *Controller) evaluate(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	canonical, err := c.profiles.Resolve(ctx, userID)
	if err != nil {
		// A missing profile routes to the payment view, it is not an error.
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return &Snapshot{View: ViewPayment, Access: enums.AccessPendingPayment}, nil
		}
		return nil, err
	}

	state := access.Evaluate(canonical, c.now().UTC(), c.grace)
	snapshot := &Snapshot{
		Access: state,
		User:   profile.FromCanonical(canonical),
	}

	if !state.HasAccess() {
		snapshot.View = ViewPayment
		return snapshot, nil
	}
	snapshot.View = ViewMainApp

	var (
		tradeRows     []models.Trade
		knowledgeRows []models.KnowledgeItem
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		tradeRows, err = c.trades.List(groupCtx, userID)
		return err
	})
	group.Go(func() error {
		var err error
		knowledgeRows, err = c.knowledge.List(groupCtx, userID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	snapshot.Trades = trades.FromModels(tradeRows)
	snapshot.Knowledge = knowledge.FromModels(knowledgeRows)
	return snapshot, nil
}

// SignedOut resets the user's session state unconditionally, even while an
// evaluation is in flight. The next refresh starts from a cold cache.
func (c *Controller) SignedOut(ctx context.Context, userID uuid.UUID) *Snapshot {
	c.mu.Lock()
	delete(c.cache, userID)
	delete(c.inFlight, userID)
	c.mu.Unlock()

	c.logg.Debug(c.logg.WithField(ctx, "profile_id", userID.String()), "session reset")
	return &Snapshot{View: ViewLanding, Access: enums.AccessNone}
}

// ApplyPaymentSuccess moves the cached snapshot to the granted state
// immediately and refreshes from storage in the background. The optimistic
// transition is never reverted; a failed background refresh only logs.
func (c *Controller) ApplyPaymentSuccess(ctx context.Context, userID uuid.UUID, user *profile.Canonical) *Snapshot {
	state := access.Evaluate(user, c.now().UTC(), c.grace)

	snapshot := &Snapshot{
		View:   ViewMainApp,
		Access: state,
		User:   profile.FromCanonical(user),
	}
	c.mu.Lock()
	c.cache[userID] = snapshot
	c.mu.Unlock()

	go func() {
		// Detach from the request; the caller's context ends with the
		// response while this refresh is still running.
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if _, err := c.Refresh(bgCtx, userID, true); err != nil && !errors.Is(err, context.Canceled) {
			c.logg.Warn(c.logg.WithFields(bgCtx, map[string]any{
				"profile_id": userID.String(),
				"error":      err.Error(),
			}), "post-payment refresh failed")
		}
	}()

	return snapshot
}
