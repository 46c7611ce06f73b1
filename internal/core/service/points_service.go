package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

// PointsLedger is the client-facing view over user balances. All mutations
// go through the repository's atomic updates; nothing is considered final
// until the store has acknowledged it.
type PointsLedger struct {
	repo     ports.UserRepository
	activity ports.ActivitySink
	log      zerolog.Logger
}

func NewPointsLedger(repo ports.UserRepository, activity ports.ActivitySink, log zerolog.Logger) *PointsLedger {
	return &PointsLedger{repo: repo, activity: activity, log: log}
}

// Debit removes amount from a non-admin balance as a single
// decrement-if-sufficient operation; a balance that would go negative is
// left untouched. The policy layer never debits admins, and this service
// refuses to as well.
func (s *PointsLedger) Debit(ctx context.Context, userID string, amount domain.Points) (*domain.User, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	updated, err := s.repo.DebitPoints(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("user_id", userID).Float64("amount", amount.Float()).Float64("balance", updated.Points.Float()).Msg("points debited")
	return updated, nil
}

// Credit adds a positive amount to a balance.
func (s *PointsLedger) Credit(ctx context.Context, userID string, amount domain.Points) (*domain.User, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	updated, err := s.repo.CreditPoints(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("user_id", userID).Float64("amount", amount.Float()).Float64("balance", updated.Points.Float()).Msg("points credited")
	return updated, nil
}

// Recharge validates and applies an operator-entered grant. The amount is
// free text from the admin console; anything non-parseable or negative is
// rejected before any mutation.
func (s *PointsLedger) Recharge(ctx context.Context, admin *domain.User, userID, amount string) (*domain.User, error) {
	if !CanModerate(admin) {
		return nil, domain.ErrForbidden
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, amount)
	}
	points, err := domain.PointsFromFloat(f)
	if err != nil {
		return nil, err
	}

	updated, err := s.Credit(ctx, userID, points)
	if err != nil {
		return nil, err
	}

	s.activity.Enqueue(domain.ActivityEvent{
		Actor:     admin.ID,
		Action:    domain.ActionGrantPoints,
		Subject:   userID,
		Detail:    amount,
		Timestamp: time.Now().UTC(),
	})
	s.log.Info().Str("admin_id", admin.ID).Str("user_id", userID).Str("amount", amount).Msg("manual recharge applied")
	return updated, nil
}
