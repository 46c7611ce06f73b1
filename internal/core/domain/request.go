package domain

import "time"

// DeleteRequest is a pending moderation ticket asking an admin to remove a
// published design. It exists only while pending: approval deletes the
// request together with the referenced design, rejection deletes only the
// request.
type DeleteRequest struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	DesignID    string    `json:"design_id" bson:"design_id"`
	DesignTitle string    `json:"design_title" bson:"design_title"`
	RequestedBy string    `json:"requested_by" bson:"requested_by"`
	Reason      string    `json:"reason" bson:"reason"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
