package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

// Moderation drains the two admin review queues: pending designs and delete
// requests. Multi-document actions are issued as sequential store calls; a
// partial outcome is surfaced as domain.ErrPartialModeration rather than
// silently retried, since a retry could double-delete or double-credit.
type Moderation struct {
	designs  ports.DesignRepository
	requests ports.DeleteRequestRepository
	points   ports.PointsService
	activity ports.ActivitySink
	log      zerolog.Logger
}

func NewModeration(
	designs ports.DesignRepository,
	requests ports.DeleteRequestRepository,
	points ports.PointsService,
	activity ports.ActivitySink,
	log zerolog.Logger,
) *Moderation {
	return &Moderation{
		designs:  designs,
		requests: requests,
		points:   points,
		activity: activity,
		log:      log,
	}
}

// PendingDesigns returns the review queue, newest first.
func (s *Moderation) PendingDesigns(ctx context.Context, admin *domain.User) ([]domain.Design, error) {
	if !CanModerate(admin) {
		return nil, domain.ErrForbidden
	}
	return s.designs.ListPending(ctx)
}

// ApproveDesign publishes a pending design and credits the uploader the
// fixed half-point bonus. A design without an uploader reference is
// published without crediting; a failed credit after the status flip is a
// partial outcome.
func (s *Moderation) ApproveDesign(ctx context.Context, admin *domain.User, designID string) error {
	if !CanModerate(admin) {
		return domain.ErrForbidden
	}

	design, err := s.designs.FindByID(ctx, designID)
	if err != nil {
		return err
	}
	if !design.Status.CanTransitionTo(domain.StatusApproved) {
		return fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, design.Status, domain.StatusApproved)
	}

	if err := s.designs.SetStatus(ctx, designID, domain.StatusPending, domain.StatusApproved); err != nil {
		return err
	}

	if design.UploadedBy != "" {
		if _, err := s.points.Credit(ctx, design.UploadedBy, domain.HalfPoint); err != nil {
			// the item is live but the bonus was not paid
			s.log.Error().Err(err).Str("design_id", designID).Str("uploader", design.UploadedBy).Msg("approval bonus credit failed")
			return fmt.Errorf("%w: design approved, bonus credit failed: %v", domain.ErrPartialModeration, err)
		}
	}

	s.record(admin.ID, domain.ActionApproveDesign, designID, design.Title)
	s.log.Info().Str("design_id", designID).Str("admin_id", admin.ID).Msg("design approved")
	return nil
}

// RejectDesign removes a pending design. No credit is paid.
func (s *Moderation) RejectDesign(ctx context.Context, admin *domain.User, designID string) error {
	if !CanModerate(admin) {
		return domain.ErrForbidden
	}

	design, err := s.designs.FindByID(ctx, designID)
	if err != nil {
		return err
	}
	if design.Status != domain.StatusPending {
		return fmt.Errorf("%w (cannot reject %s design)", domain.ErrInvalidTransition, design.Status)
	}

	if err := s.designs.Delete(ctx, designID); err != nil {
		return err
	}

	s.record(admin.ID, domain.ActionRejectDesign, designID, design.Title)
	s.log.Info().Str("design_id", designID).Str("admin_id", admin.ID).Msg("design rejected")
	return nil
}

// PendingRequests returns the delete-request queue, newest first.
func (s *Moderation) PendingRequests(ctx context.Context, admin *domain.User) ([]domain.DeleteRequest, error) {
	if !CanModerate(admin) {
		return nil, domain.ErrForbidden
	}
	return s.requests.List(ctx)
}

// ApproveDeleteRequest removes the referenced design and then the request.
// A design that is already gone does not block the request cleanup; a
// failure between the two deletes leaves an orphan and is surfaced as a
// partial outcome for the admin to resolve.
func (s *Moderation) ApproveDeleteRequest(ctx context.Context, admin *domain.User, requestID string) error {
	if !CanModerate(admin) {
		return domain.ErrForbidden
	}

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}

	designDeleted := false
	if err := s.designs.Delete(ctx, request.DesignID); err != nil {
		if !errors.Is(err, domain.ErrDesignNotFound) {
			return err
		}
	} else {
		designDeleted = true
	}

	if err := s.requests.Delete(ctx, requestID); err != nil {
		if designDeleted {
			s.log.Error().Err(err).Str("request_id", requestID).Str("design_id", request.DesignID).Msg("design deleted but request cleanup failed")
			return fmt.Errorf("%w: design %s deleted, request %s remains: %v", domain.ErrPartialModeration, request.DesignID, requestID, err)
		}
		return err
	}

	s.record(admin.ID, domain.ActionApproveRequest, request.DesignID, request.DesignTitle)
	s.log.Info().Str("request_id", requestID).Str("design_id", request.DesignID).Msg("delete request approved")
	return nil
}

// RejectDeleteRequest removes only the request; the design is untouched.
func (s *Moderation) RejectDeleteRequest(ctx context.Context, admin *domain.User, requestID string) error {
	if !CanModerate(admin) {
		return domain.ErrForbidden
	}

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, requestID); err != nil {
		return err
	}

	s.record(admin.ID, domain.ActionRejectRequest, request.DesignID, request.DesignTitle)
	s.log.Info().Str("request_id", requestID).Msg("delete request rejected")
	return nil
}

func (s *Moderation) record(actor, action, subject, detail string) {
	s.activity.Enqueue(domain.ActivityEvent{
		Actor:     actor,
		Action:    action,
		Subject:   subject,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}
