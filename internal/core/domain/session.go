package domain

// CommandKind enumerates the deferred actions a guest may have attempted
// before authenticating.
type CommandKind string

const (
	CommandDownload CommandKind = "download"
)

// DeferredCommand captures "the thing the user tried to do" while
// unauthenticated, as an explicit command value instead of free-floating UI
// state. It is replayed at most once, immediately after login succeeds.
type DeferredCommand struct {
	Kind     CommandKind `json:"kind"`
	DesignID string      `json:"design_id"`
}
