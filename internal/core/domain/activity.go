package domain

import "time"

// Activity actions recorded in the audit trail.
const (
	ActionDownload       = "download"
	ActionUpload         = "upload"
	ActionApproveDesign  = "approve_design"
	ActionRejectDesign   = "reject_design"
	ActionApproveRequest = "approve_delete_request"
	ActionRejectRequest  = "reject_delete_request"
	ActionGrantPoints    = "grant_points"
	ActionBanToggle      = "ban_toggle"
)

// ActivityEvent is one audit record describing an actor performing an action
// on a subject. Events are persisted and fanned out to the message broker.
type ActivityEvent struct {
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
