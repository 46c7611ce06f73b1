package service

import "github.com/jerseyhub/gallery-system/internal/core/domain"

// Access policy evaluation. These are pure functions over the resolved
// identity; every permission question in the system is answered here rather
// than by ad hoc role comparisons at call sites. A nil user is a guest.

// DownloadDecision is the outcome of evaluating a download attempt.
type DownloadDecision int

const (
	DownloadAllow DownloadDecision = iota
	DownloadRequireLogin
	DownloadInsufficientPoints
)

// Decision is the outcome of evaluating a non-download protected action.
type Decision int

const (
	ActionAllow Decision = iota
	ActionRequireLogin
)

// CanDownload decides whether a source link may be revealed.
// Admins are allowed unconditionally, regardless of balance or ban flag.
// For everyone else the balance must cover one whole point; the caller must
// debit before revealing and treat debit-plus-reveal as a single
// user-visible transaction.
func CanDownload(u *domain.User) DownloadDecision {
	if u == nil {
		return DownloadRequireLogin
	}
	if u.IsAdmin() {
		return DownloadAllow
	}
	if u.Points < domain.DownloadCost {
		return DownloadInsufficientPoints
	}
	return DownloadAllow
}

// CanRequestDelete allows any resolved identity to file a delete request;
// guests are redirected to login.
func CanRequestDelete(u *domain.User) Decision {
	if u == nil {
		return ActionRequireLogin
	}
	return ActionAllow
}

// CanModerate reports whether the identity may drain the review queues.
func CanModerate(u *domain.User) bool {
	return u.IsAdmin()
}

// CanUploadDesign allows any resolved identity to submit a design.
// Submissions always land pending regardless of role.
func CanUploadDesign(u *domain.User) Decision {
	if u == nil {
		return ActionRequireLogin
	}
	return ActionAllow
}
