package domain

import (
	"errors"
	"math"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrBanned = errors.New("account is banned")
var ErrInsufficientPoints = errors.New("insufficient points")
var ErrInvalidAmount = errors.New("invalid point amount")

// Points is a balance expressed in half-point units: 1 point = 2 units.
// Integer units keep repeated 0.5 credits exact where float64 would drift.
type Points int64

const (
	// HalfPoint is the bonus credited to an uploader when an admin
	// approves a pending design.
	HalfPoint Points = 1
	// DownloadCost is debited from a non-admin balance per source-link reveal.
	DownloadCost Points = 2
)

// WholePoints converts n whole points to half-point units.
func WholePoints(n int64) Points {
	return Points(2 * n)
}

// PointsFromFloat converts an operator-entered amount to half-point units.
// Amounts must be non-negative and a multiple of 0.5.
func PointsFromFloat(f float64) (Points, error) {
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	units := f * 2
	if units != math.Trunc(units) {
		return 0, ErrInvalidAmount
	}
	return Points(units), nil
}

// Float renders the balance as whole/half points for display and JSON.
func (p Points) Float() float64 {
	return float64(p) / 2
}

const (
	// StartingBalance is granted to every fresh signup, in whole points.
	StartingBalance = 10
	// AdminBalance is the effectively unlimited balance provisioned for
	// the single admin profile, in whole points.
	AdminBalance = 999999
)

// User models one principal: a signed-up member or the provisioned admin.
// Guests (unauthenticated visitors) are represented by the absence of a User.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Handle         string    `json:"handle"`
	AccessCodeHash string    `json:"-"`
	Role           string    `json:"role"`
	Points         Points    `json:"-"`
	IsBanned       bool      `json:"is_banned"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role. Admins are exempt
// from ban enforcement and from point debits.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SessionBlocked reports whether session resolution must terminate this
// identity: banned non-admins never hold an active session.
func (u *User) SessionBlocked() bool {
	return u != nil && u.IsBanned && u.Role != RoleAdmin
}
