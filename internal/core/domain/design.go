package domain

import (
	"errors"
	"strings"
	"time"
)

// DesignStatus represents the moderation state of a catalog entry.
type DesignStatus string

const (
	StatusPending  DesignStatus = "pending"
	StatusApproved DesignStatus = "approved"
)

// validTransitions defines the allowed moderation state machine transitions.
// Deletion is terminal and represented by document absence.
var validTransitions = map[DesignStatus][]DesignStatus{
	StatusPending: {StatusApproved},
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrInvalidDesign = errors.New("invalid design submission")
var ErrDesignNotFound = errors.New("design not found")
var ErrRequestNotFound = errors.New("delete request not found")
var ErrForbidden = errors.New("access forbidden")
var ErrPartialModeration = errors.New("moderation action partially applied")
var ErrDownloadInFlight = errors.New("download already in flight")
var ErrLoginRequired = errors.New("login required")

// CanTransitionTo reports whether a transition from the current status to
// next is valid.
func (s DesignStatus) CanTransitionTo(next DesignStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Design tags form a closed set; TagAll is a filter-only pseudo-tag that is
// never stored on a design.
const (
	TagSublimation = "Sublimation"
	TagFullSleeve  = "Full Sleeve"
	TagCollar      = "Collar"
	TagAll         = "All"
)

// ValidTag reports whether t may be stored on a design.
func ValidTag(t string) bool {
	switch t {
	case TagSublimation, TagFullSleeve, TagCollar:
		return true
	}
	return false
}

// Design is one catalog entry: a transcoded preview image plus metadata and
// the points-gated external source link.
type Design struct {
	ID         string       `json:"id" bson:"_id,omitempty"`
	Title      string       `json:"title" bson:"title"`
	Tag        string       `json:"tag" bson:"tag"`
	ImageData  string       `json:"image_data" bson:"image_data"`
	SourceLink string       `json:"source_link" bson:"source_link"`
	UploadedBy string       `json:"uploaded_by,omitempty" bson:"uploaded_by,omitempty"`
	Status     DesignStatus `json:"status" bson:"status"`
	CreatedAt  time.Time    `json:"created_at" bson:"created_at"`
}

// Visible reports whether the design belongs in the public catalog.
// Repositories normalize an absent status to approved at the read boundary,
// so only an explicit pending status hides an item.
func (d *Design) Visible() bool {
	return d.Status != StatusPending
}

// NormalizeLink resolves a stored source link to a secure scheme when the
// uploader omitted one.
func NormalizeLink(link string) string {
	if link == "" {
		return ""
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return "https://" + link
}
