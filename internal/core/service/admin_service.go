package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

// AdminConsole exposes the user directory and ban switch to the admin panel.
// Bans are the deactivation mechanism: profiles are never hard-deleted.
type AdminConsole struct {
	repo     ports.UserRepository
	activity ports.ActivitySink
	log      zerolog.Logger
}

func NewAdminConsole(repo ports.UserRepository, activity ports.ActivitySink, log zerolog.Logger) *AdminConsole {
	return &AdminConsole{repo: repo, activity: activity, log: log}
}

func (s *AdminConsole) Users(ctx context.Context, admin *domain.User) ([]*domain.User, error) {
	if !CanModerate(admin) {
		return nil, domain.ErrForbidden
	}
	return s.repo.List(ctx)
}

func (s *AdminConsole) SetBanned(ctx context.Context, admin *domain.User, userID string, banned bool) error {
	if !CanModerate(admin) {
		return domain.ErrForbidden
	}
	if userID == admin.ID {
		return domain.ErrForbidden
	}

	if err := s.repo.SetBanned(ctx, userID, banned); err != nil {
		return err
	}

	s.activity.Enqueue(domain.ActivityEvent{
		Actor:     admin.ID,
		Action:    domain.ActionBanToggle,
		Subject:   userID,
		Detail:    strconv.FormatBool(banned),
		Timestamp: time.Now().UTC(),
	})
	s.log.Info().Str("admin_id", admin.ID).Str("user_id", userID).Bool("banned", banned).Msg("ban flag updated")
	return nil
}
