package ports

import (
	"context"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// LoginInput carries credentials for either login mode: the fixed admin
// username/password pair, or a member's numeric access code.
type LoginInput struct {
	Username   string
	Password   string
	AccessCode string
	// GuestSession identifies the pre-login browsing session so that a
	// deferred action captured for it can be replayed after login.
	GuestSession string
}

// SignupInput provisions a new member profile.
type SignupInput struct {
	Name         string
	AccessCode   string
	GuestSession string
}

// ReplayOutcome reports the result of replaying a deferred command right
// after authentication. A failed replay never fails the login itself.
type ReplayOutcome struct {
	Command  domain.DeferredCommand
	Download *DownloadResult
	Err      error
}

// AuthResult is returned on successful login or signup.
type AuthResult struct {
	Token  string
	User   *domain.User
	Replay *ReplayOutcome
}

// AuthService implements signup and both login modes.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	// Logout discards any deferred command captured for the guest session.
	// Idempotent.
	Logout(guestSession string)
	// Resolve loads the identity for an authenticated subject and enforces
	// ban state: a banned non-admin yields domain.ErrBanned.
	Resolve(ctx context.Context, userID string) (*domain.User, error)
}
