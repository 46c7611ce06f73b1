package ports

import (
	"context"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// UploadDesignInput carries a new submission. RawImage holds the original
// encoded image bytes; the service transcodes them before persisting.
type UploadDesignInput struct {
	Title      string
	Tag        string
	SourceLink string
	RawImage   []byte
}

// CatalogService exposes the public catalog and the upload path.
type CatalogService interface {
	// Visible returns the published catalog filtered by a case-insensitive
	// search query and an exact tag ("All" disables the tag filter).
	Visible(query, tag string) []domain.Design
	// TotalVisible counts published items independent of search and tag.
	TotalVisible() int
	Upload(ctx context.Context, user *domain.User, input UploadDesignInput) (*domain.Design, error)
	RequestDelete(ctx context.Context, user *domain.User, designID, reason string) (*domain.DeleteRequest, error)
}

// ImageTranscoder converts an uploaded image to the stored preview encoding,
// scaling so the wider dimension equals maxWidth while preserving aspect
// ratio.
type ImageTranscoder interface {
	Transcode(raw []byte, maxWidth, quality int) (string, error)
}
