package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

const (
	defaultMaxImageWidth = 800
	defaultJPEGQuality   = 70
)

// Catalog serves the published catalog from the snapshot cache and owns the
// upload and delete-request paths.
type Catalog struct {
	cache      *CatalogCache
	designs    ports.DesignRepository
	requests   ports.DeleteRequestRepository
	transcoder ports.ImageTranscoder
	activity   ports.ActivitySink
	maxWidth   int
	quality    int
	log        zerolog.Logger
}

func NewCatalog(
	cache *CatalogCache,
	designs ports.DesignRepository,
	requests ports.DeleteRequestRepository,
	transcoder ports.ImageTranscoder,
	activity ports.ActivitySink,
	maxWidth, quality int,
	log zerolog.Logger,
) *Catalog {
	if maxWidth <= 0 {
		maxWidth = defaultMaxImageWidth
	}
	if quality <= 0 {
		quality = defaultJPEGQuality
	}
	return &Catalog{
		cache:      cache,
		designs:    designs,
		requests:   requests,
		transcoder: transcoder,
		activity:   activity,
		maxWidth:   maxWidth,
		quality:    quality,
		log:        log,
	}
}

// Visible returns the published catalog filtered by search query and tag.
func (s *Catalog) Visible(query, tag string) []domain.Design {
	return s.cache.VisibleItems(query, tag)
}

// TotalVisible counts published items independent of search and tag.
func (s *Catalog) TotalVisible() int {
	return s.cache.TotalVisibleCount()
}

// Upload validates and persists a new submission. The image is transcoded
// before the write, and the entry always lands pending review regardless of
// the submitter's role.
func (s *Catalog) Upload(ctx context.Context, user *domain.User, input ports.UploadDesignInput) (*domain.Design, error) {
	if CanUploadDesign(user) == ActionRequireLogin {
		return nil, domain.ErrLoginRequired
	}
	if input.Title == "" || !domain.ValidTag(input.Tag) || len(input.RawImage) == 0 {
		return nil, domain.ErrInvalidDesign
	}

	encoded, err := s.transcoder.Transcode(input.RawImage, s.maxWidth, s.quality)
	if err != nil {
		return nil, fmt.Errorf("transcode image: %w", err)
	}

	design := &domain.Design{
		Title:      input.Title,
		Tag:        input.Tag,
		ImageData:  encoded,
		SourceLink: domain.NormalizeLink(input.SourceLink),
		UploadedBy: user.ID,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.designs.Create(ctx, design)
	if err != nil {
		s.log.Error().Err(err).Str("title", input.Title).Msg("failed to store design")
		return nil, err
	}

	s.activity.Enqueue(domain.ActivityEvent{
		Actor:     user.ID,
		Action:    domain.ActionUpload,
		Subject:   created.ID,
		Detail:    created.Title,
		Timestamp: time.Now().UTC(),
	})
	s.log.Info().Str("design_id", created.ID).Str("tag", created.Tag).Msg("design submitted for review")
	return created, nil
}

// RequestDelete files a moderation ticket for a published design. The
// design's title is denormalized onto the ticket so the review queue stays
// readable even while items churn.
func (s *Catalog) RequestDelete(ctx context.Context, user *domain.User, designID, reason string) (*domain.DeleteRequest, error) {
	if CanRequestDelete(user) == ActionRequireLogin {
		return nil, domain.ErrLoginRequired
	}

	design, err := s.designs.FindByID(ctx, designID)
	if err != nil {
		return nil, err
	}

	request := &domain.DeleteRequest{
		DesignID:    design.ID,
		DesignTitle: design.Title,
		RequestedBy: user.ID,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.requests.Create(ctx, request)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("design_id", designID).Str("requested_by", user.ID).Msg("delete request filed")
	return created, nil
}
