package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

// Downloads is the effectful wrapper around the download policy. The debit
// and the link reveal form a single user-visible transaction: the balance is
// decremented first through an atomic decrement-if-sufficient update, and
// the link is revealed only when that succeeds.
type Downloads struct {
	designs  ports.DesignRepository
	points   ports.PointsService
	locks    ports.DownloadLocker
	sessions *SessionManager
	activity ports.ActivitySink
	log      zerolog.Logger
}

func NewDownloads(
	designs ports.DesignRepository,
	points ports.PointsService,
	locks ports.DownloadLocker,
	sessions *SessionManager,
	activity ports.ActivitySink,
	log zerolog.Logger,
) *Downloads {
	return &Downloads{
		designs:  designs,
		points:   points,
		locks:    locks,
		sessions: sessions,
		activity: activity,
		log:      log,
	}
}

// Download evaluates the policy and, when allowed, debits one point and
// reveals the source link. Repeated attempts while one is in flight for the
// same (user, design) pair are rejected instead of double-debited.
func (s *Downloads) Download(ctx context.Context, user *domain.User, designID string) (*ports.DownloadResult, error) {
	switch CanDownload(user) {
	case DownloadRequireLogin:
		return nil, domain.ErrLoginRequired
	case DownloadInsufficientPoints:
		return nil, domain.ErrInsufficientPoints
	}

	design, err := s.designs.FindByID(ctx, designID)
	if err != nil {
		return nil, err
	}
	if !design.Visible() && !user.IsAdmin() {
		return nil, domain.ErrDesignNotFound
	}

	acquired, err := s.locks.Acquire(ctx, user.ID, designID)
	if err != nil {
		// lock store unavailable: log and proceed, the debit itself is atomic
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("download lock unavailable, proceeding")
	} else if !acquired {
		return nil, domain.ErrDownloadInFlight
	} else {
		defer s.locks.Release(ctx, user.ID, designID)
	}

	remaining := user.Points
	if !user.IsAdmin() {
		updated, err := s.points.Debit(ctx, user.ID, domain.DownloadCost)
		if err != nil {
			return nil, err
		}
		remaining = updated.Points
	}

	s.activity.Enqueue(domain.ActivityEvent{
		Actor:     user.ID,
		Action:    domain.ActionDownload,
		Subject:   design.ID,
		Detail:    design.Title,
		Timestamp: time.Now().UTC(),
	})
	s.log.Info().Str("user_id", user.ID).Str("design_id", design.ID).Msg("source link revealed")

	return &ports.DownloadResult{
		DesignID:   design.ID,
		SourceLink: domain.NormalizeLink(design.SourceLink),
		Remaining:  remaining,
	}, nil
}

// Defer captures a guest's download attempt for replay after login.
// The caller still receives the login-required error to redirect with.
func (s *Downloads) Defer(guestSession, designID string) error {
	if guestSession != "" {
		s.sessions.Capture(guestSession, domain.DeferredCommand{
			Kind:     domain.CommandDownload,
			DesignID: designID,
		})
	}
	return domain.ErrLoginRequired
}
